package wizapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/yndnr/wizcli-go/internal/cli/connection"
	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// DownloadOptions selects the parts of a document to download.
type DownloadOptions struct {
	Info bool
	Data bool
}

// DefaultDownloadOptions downloads both info and data.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{Info: true, Data: true}
}

func (o DownloadOptions) params() url.Values {
	return url.Values{
		"downloadInfo": {flag(o.Info)},
		"downloadData": {flag(o.Data)},
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// KnowledgeBaseClient issues content server commands for one knowledge base.
type KnowledgeBaseClient struct {
	server    *Server
	kbGUID    string
	transport Transport
}

// NewKnowledgeBaseClient creates a client bound to kbGUID on server.
func NewKnowledgeBaseClient(server *Server, kbGUID string, transport Transport) *KnowledgeBaseClient {
	return &KnowledgeBaseClient{server: server, kbGUID: kbGUID, transport: transport}
}

// KbGUID returns the knowledge base this client is bound to.
func (c *KnowledgeBaseClient) KbGUID() string {
	return c.kbGUID
}

// DownloadDocument fetches docGUID. The token is attached when non-empty.
func (c *KnowledgeBaseClient) DownloadDocument(ctx context.Context, token, docGUID string, opts DownloadOptions) (*domain.Document, error) {
	if c.kbGUID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("knowledge base guid")
	}
	if docGUID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("document guid")
	}

	path := "/ks/note/download/" + url.PathEscape(c.kbGUID) + "/" + url.PathEscape(docGUID)

	var body connection.Body
	err := c.transport.Call(ctx, &connection.Request{
		Command: "download",
		Method:  http.MethodGet,
		URL:     c.server.BuildURL(path, token),
		Token:   token,
		Params:  opts.params(),
	}, &body)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{KbGUID: c.kbGUID, DocGUID: docGUID}
	if payload := documentPayload(body); payload != nil {
		if doc, err = domain.ParseDocument(c.kbGUID, docGUID, payload); err != nil {
			return nil, err
		}
	}
	doc.Raw = json.RawMessage(body)
	return doc, nil
}

// documentPayload returns the part of a download body holding info, html
// and resources. Content servers send them beside returnCode; some wrap
// them in result.
func documentPayload(body []byte) []byte {
	var shape struct {
		Result    json.RawMessage `json:"result"`
		Info      json.RawMessage `json:"info"`
		HTML      json.RawMessage `json:"html"`
		Resources json.RawMessage `json:"resources"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return nil
	}
	if present(shape.Info) || present(shape.HTML) || present(shape.Resources) {
		return body
	}
	if present(shape.Result) {
		return shape.Result
	}
	return nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
