// Package connection provides the HTTP transport for wizcli.
package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/infra/buildinfo"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
	"github.com/yndnr/wizcli-go/internal/telemetry/metric"
)

// TokenHeader carries the session token alongside the token query parameter.
const TokenHeader = "X-Wiz-Token"

// DefaultTimeout bounds a single request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures an HTTPClient.
type Options struct {
	Timeout time.Duration
	// TLS overrides the default client TLS settings when set.
	TLS                *tls.Config
	InsecureSkipVerify bool
	UserAgent          string
	Logger             logger.Logger
	Metrics            *metric.Registry
}

// HTTPClient issues WizNote API requests and decodes their envelopes.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	log       logger.Logger
	metrics   *metric.Registry
}

// Request describes one API call.
type Request struct {
	// Command labels the call in logs and metrics (e.g. "login").
	Command string
	Method  string
	// URL is the fully built command URL.
	URL string
	// Params are appended after the query that URL already carries.
	Params url.Values
	// Token is sent as the X-Wiz-Token header when non-empty.
	Token string
	// Body is encoded as JSON when non-nil.
	Body any
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TLS != nil || opts.InsecureSkipVerify {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if opts.TLS != nil {
			tlsConfig = opts.TLS.Clone()
		}
		tlsConfig.InsecureSkipVerify = opts.InsecureSkipVerify
		transport.TLSClientConfig = tlsConfig
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
		log:       log,
		metrics:   opts.Metrics,
	}
}

// Do sends the request and returns the raw response.
// Failures before a response arrives are reported as domain.ErrTransport.
func (c *HTTPClient) Do(ctx context.Context, r *Request) (*http.Response, error) {
	target, err := requestURL(r)
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("build url").WithCause(err)
	}

	var bodyReader io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("create request").WithCause(err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if r.Token != "" {
		req.Header.Set(TokenHeader, r.Token)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logger.L(logger.WithCallID(logger.WithLogger(ctx, c.log), requestID))
	log.Debug("api request", "command", r.Command, "method", method, "url", target)

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = logger.RedactURL(urlErr.URL)
		}
		log.Debug("api request failed", "command", r.Command, "error", err.Error())
		return nil, domain.ErrTransport.WithDetails(fmt.Sprintf("%s: %v", r.Command, err)).WithCause(err)
	}
	log.Debug("api response", "command", r.Command, "status", resp.StatusCode)
	return resp, nil
}

// Call sends the request and decodes the envelope result into target.
// The outcome is recorded in the metrics registry under r.Command.
func (c *HTTPClient) Call(ctx context.Context, r *Request, target any) error {
	start := time.Now()

	resp, err := c.Do(ctx, r)
	if err != nil {
		c.metrics.Observe(r.Command, metric.OutcomeTransport, time.Since(start))
		return err
	}

	if err := ParseResponse(resp, target); err != nil {
		outcome := metric.OutcomeError
		if errors.Is(err, domain.ErrTransport) {
			outcome = metric.OutcomeTransport
		}
		c.metrics.Observe(r.Command, outcome, time.Since(start))
		return err
	}

	c.metrics.Observe(r.Command, metric.OutcomeOK, time.Since(start))
	return nil
}

// requestURL appends r.Params to the query of r.URL, keeping the existing
// parameters and their order untouched.
func requestURL(r *Request) (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", err
	}
	if len(r.Params) == 0 {
		return u.String(), nil
	}
	extra := r.Params.Encode()
	if u.RawQuery == "" {
		u.RawQuery = extra
	} else {
		u.RawQuery += "&" + extra
	}
	return u.String(), nil
}
