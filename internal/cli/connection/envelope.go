package connection

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// MaxBodySize caps the bytes read from one response.
const MaxBodySize = 64 << 20

// Envelope wraps the result of every WizNote API command.
type Envelope struct {
	ReturnCode    *int            `json:"returnCode"`
	ReturnMessage string          `json:"returnMessage"`
	ExternCode    string          `json:"externCode"`
	Result        json.RawMessage `json:"result"`
}

// Err maps a non-success return code to its error kind.
func (e *Envelope) Err() error {
	if e.ReturnCode == nil {
		return domain.ErrMalformedResponse.WithDetails("missing returnCode")
	}
	if *e.ReturnCode == domain.ReturnCodeOK {
		return nil
	}
	return domain.ErrorFromReturnCode(*e.ReturnCode, e.ReturnMessage)
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("read body").WithCause(err)
	}
	if len(data) > MaxBodySize {
		return nil, domain.ErrMalformedResponse.WithDetails(fmt.Sprintf("body exceeds %d bytes", MaxBodySize))
	}
	return data, nil
}

// Body receives the whole response body when used as a ParseResponse
// target. Commands whose payload sits beside returnCode use it.
type Body []byte

// ParseResponse decodes the envelope of resp and unmarshals its result
// into target. A nil target discards the result; a *json.RawMessage
// target receives it undecoded and a *Body target the entire body.
func ParseResponse(resp *http.Response, target any) error {
	data, err := ReadBody(resp)
	if err != nil {
		return err
	}

	var env Envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && env.ReturnCode != nil && *env.ReturnCode != domain.ReturnCodeOK {
			return env.Err()
		}
		return domain.ErrServer.WithDetails(fmt.Sprintf("request failed with status %d", resp.StatusCode))
	}

	if decodeErr != nil {
		return domain.ErrMalformedResponse.WithDetails("decode envelope").WithCause(decodeErr)
	}
	if err := env.Err(); err != nil {
		return err
	}

	if b, ok := target.(*Body); ok {
		*b = Body(data)
		return nil
	}
	if target == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, target); err != nil {
		return domain.ErrMalformedResponse.WithDetails("decode result").WithCause(err)
	}
	return nil
}
