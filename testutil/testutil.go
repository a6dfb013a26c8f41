// Package testutil builds requests against dataobject apps and checks their
// {"result": ...} and {"error": ...} envelopes. It only depends on net/http,
// so packages that serve the envelope without dataobject can use it too.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
)

const jsonContentType = "application/json; charset=utf-8"

// RequestBuilder assembles a test request. The zero path is "/" and the
// zero method is GET.
type RequestBuilder struct {
	method string
	path   string
	body   []byte
	header http.Header
	query  url.Values
}

func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method: http.MethodGet,
		path:   "/",
		header: make(http.Header),
		query:  make(url.Values),
	}
}

// GET targets a Query endpoint.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	return b.Method(http.MethodGet, path)
}

// POST targets an Exec endpoint.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	return b.Method(http.MethodPost, path)
}

func (b *RequestBuilder) Method(method, path string) *RequestBuilder {
	b.method, b.path = method, path
	return b
}

// WithJSON marshals v as the body. It panics if v cannot be marshaled.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		panic("testutil: " + err.Error())
	}
	b.body = body
	b.header.Set("Content-Type", "application/json")
	return b
}

// WithBody sets a raw body, e.g. malformed JSON.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.body = []byte(body)
	return b
}

func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.header.Set(key, value)
	return b
}

// WithQuery adds a query parameter. Repeated keys become lists.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.query.Add(key, value)
	return b
}

// Build returns the request and a recorder to serve it into.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	target := b.path
	if len(b.query) > 0 {
		target += "?" + b.query.Encode()
	}
	req := httptest.NewRequest(b.method, target, bytes.NewReader(b.body))
	for k, v := range b.header {
		req.Header[k] = append([]string(nil), v...)
	}
	return req, httptest.NewRecorder()
}

// Serve builds the request and serves it with h.
func (b *RequestBuilder) Serve(h http.Handler) *httptest.ResponseRecorder {
	req, w := b.Build()
	h.ServeHTTP(w, req)
	return w
}

func AssertStatus(t testing.TB, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Errorf("status = %d, want %d\nbody: %s", w.Code, want, w.Body.String())
	}
}

func AssertHeader(t testing.TB, w *httptest.ResponseRecorder, key, want string) {
	t.Helper()
	if got := w.Header().Get(key); got != want {
		t.Errorf("header %s = %q, want %q", key, got, want)
	}
}

// envelope is either a result or an error body.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *ErrorResponse  `json:"error"`
}

func decodeEnvelope(t testing.TB, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, w.Body.String())
	}
	return env
}

// AssertJSONResponse checks the content type and that the result envelope
// holds the JSON form of want. Key order is ignored.
func AssertJSONResponse(t testing.TB, w *httptest.ResponseRecorder, want any) {
	t.Helper()
	AssertHeader(t, w, "Content-Type", jsonContentType)

	env := decodeEnvelope(t, w)
	wantJSON, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal expected result: %v", err)
	}
	var got, expected any
	if err := json.Unmarshal(env.Result, &got); err != nil {
		t.Fatalf("decode result: %v\nbody: %s", err, w.Body.String())
	}
	if err := json.Unmarshal(wantJSON, &expected); err != nil {
		t.Fatalf("decode expected result: %v", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("result mismatch\n got: %s\nwant: %s", env.Result, wantJSON)
	}
}

// ErrorResponse is the body of an error envelope.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AssertJSONError checks that the response is an error envelope with code
// and returns it for further checks.
func AssertJSONError(t testing.TB, w *httptest.ResponseRecorder, code string) *ErrorResponse {
	t.Helper()
	env := decodeEnvelope(t, w)
	if env.Error == nil {
		t.Fatalf("expected an error envelope\nbody: %s", w.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %s, want %s (message: %s)", env.Error.Code, code, env.Error.Message)
	}
	return env.Error
}

// DecodeResult decodes the result envelope into v.
func DecodeResult(t testing.TB, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Result, v); err != nil {
		t.Fatalf("decode result: %v\nbody: %s", err, w.Body.String())
	}
}
