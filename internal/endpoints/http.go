package endpoints

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mattjoyce/webshell/internal/config"
)

// Response types for HttpRequestOptions.ResponseType.
const (
	ResponseJSON   = 1
	ResponseText   = 2
	ResponseBinary = 3
)

// maxResponseBytes caps how much of a response body is returned to script.
const maxResponseBytes = 32 << 20

// HTTPBody is a request body. Type is Json, Text, Form or Bytes; Bytes
// payloads are base64.
type HTTPBody struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HTTPRequestOptions describes Http.httpRequest.
type HTTPRequestOptions struct {
	Method       string            `json:"method"`
	URL          string            `json:"url"`
	Headers      map[string]string `json:"headers,omitempty"`
	Query        map[string]string `json:"query,omitempty"`
	Body         *HTTPBody         `json:"body,omitempty"`
	Timeout      float64           `json:"timeout,omitempty"`
	ResponseType int               `json:"responseType,omitempty"`
}

// HTTPResponse is returned to script.
type HTTPResponse struct {
	URL     string            `json:"url"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
}

func (e *Endpoints) http(ctx context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleHTTP, msg)
	if err != nil {
		return nil, err
	}
	if err := allowed(host, config.CategoryHTTP); err != nil {
		return nil, err
	}
	switch cmd {
	case "httpRequest":
		var args struct {
			Options HTTPRequestOptions `json:"options"`
		}
		if err := decode(ModuleHTTP, cmd, msg, &args); err != nil {
			return nil, err
		}
		e.logger.Debug("http request", "window", caller.Label, "method", args.Options.Method, "url", args.Options.URL)
		return e.doRequest(ctx, args.Options)
	}
	return nil, unknownCommand(ModuleHTTP, cmd)
}

func (e *Endpoints) doRequest(ctx context.Context, opts HTTPRequestOptions) (*HTTPResponse, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid request url %q", opts.URL)
	}
	if len(opts.Query) > 0 {
		q := u.Query()
		for k, v := range opts.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.Timeout*float64(time.Second)))
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.deps.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u.Redacted(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	out := &HTTPResponse{
		URL:     resp.Request.URL.String(),
		Status:  resp.StatusCode,
		Headers: flattenHeaders(resp.Header),
	}
	switch opts.ResponseType {
	case ResponseText:
		out.Data = string(raw)
	case ResponseBinary:
		out.Data = byteArray(raw)
	default:
		if len(raw) == 0 {
			break
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("response is not JSON: %w", err)
		}
		out.Data = v
	}
	return out, nil
}

func encodeBody(b *HTTPBody) (io.Reader, string, error) {
	if b == nil || len(b.Payload) == 0 {
		return nil, "", nil
	}
	switch b.Type {
	case "Json":
		return bytes.NewReader(b.Payload), "application/json", nil
	case "Text":
		var s string
		if err := json.Unmarshal(b.Payload, &s); err != nil {
			return nil, "", fmt.Errorf("%w: text body must be a string", ErrInvalidMessage)
		}
		return strings.NewReader(s), "text/plain; charset=utf-8", nil
	case "Form":
		var fields map[string]string
		if err := json.Unmarshal(b.Payload, &fields); err != nil {
			return nil, "", fmt.Errorf("%w: form body must be an object of strings", ErrInvalidMessage)
		}
		form := url.Values{}
		for k, v := range fields {
			form.Set(k, v)
		}
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	case "Bytes":
		var s string
		if err := json.Unmarshal(b.Payload, &s); err != nil {
			return nil, "", fmt.Errorf("%w: bytes body must be base64", ErrInvalidMessage)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, "", fmt.Errorf("%w: bytes body must be base64: %v", ErrInvalidMessage, err)
		}
		return bytes.NewReader(raw), "application/octet-stream", nil
	}
	return nil, "", fmt.Errorf("%w: unknown body type %q", ErrInvalidMessage, b.Type)
}

func flattenHeaders(h http.Header) map[string]string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = strings.Join(h.Values(k), ", ")
	}
	return out
}
