package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/umami-pos/api/internal/auth"
	"github.com/umami-pos/api/internal/database"
)

const testJWTSecret = "test-secret-for-handlers"

// failingStore reads from an in-memory store but rejects every write,
// simulating an unreachable document store.
type failingStore struct {
	*database.MemoryStore
}

var errStoreDown = errors.New("connection refused")

func (failingStore) Create(context.Context, string, json.RawMessage) (string, error) {
	return "", errStoreDown
}

func (failingStore) Update(context.Context, string, string, json.RawMessage) error {
	return errStoreDown
}

func (failingStore) Delete(context.Context, string, string) error {
	return errStoreDown
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doAuthRequest(t, router, method, path, body, "")
}

// doAuthRequest sends a request carrying a bearer token when token is set.
func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func testToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, userID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func decodeObject(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}
