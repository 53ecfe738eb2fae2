// Package testutil provides shared helpers for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"bookshelf/internal/platform/crypto"
)

// Secret is the JWT signing secret used across handler tests.
const Secret = "test-secret"

// Token returns a signed access token for the given username and role.
func Token(username, role string) string {
	token, _ := crypto.GenerateToken(Secret, username, role, time.Hour)
	return token
}

// NewRequest builds a JSON request.
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth builds a JSON request with a bearer token.
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// Response captures the recorded status and decoded JSON body.
type Response struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// ErrorCode extracts the error code from an error envelope, or "" for
// a success body.
func (r Response) ErrorCode() string {
	e, ok := r.Body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := e["code"].(string)
	return code
}

// Record decodes a recorded response.
func Record(w *httptest.ResponseRecorder) Response {
	result := w.Result()
	defer result.Body.Close()

	b, _ := io.ReadAll(result.Body)
	var body map[string]interface{}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &body)
	}
	return Response{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   body,
	}
}
