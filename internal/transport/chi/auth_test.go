package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(t *testing.T, creds []string, path, header string) *httptest.ResponseRecorder {
	t.Helper()
	handler := ProjectKeyAuthMiddleware(creds)(okHandler())
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_NoCredentials_PassThrough(t *testing.T) {
	for _, creds := range [][]string{nil, {"", ""}} {
		if rr := serveAuth(t, creds, "/datasets/list", ""); rr.Code != http.StatusOK {
			t.Errorf("creds %q: got %d, want 200", creds, rr.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	creds := []string{"proj:secret"}
	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid", "/datasets/list", "proj:secret", http.StatusOK},
		{"missing header", "/datasets/list", "", http.StatusUnauthorized},
		{"no separator", "/datasets/list", "secret", http.StatusUnauthorized},
		{"empty project", "/datasets/list", ":secret", http.StatusUnauthorized},
		{"wrong key", "/datasets/list", "proj:nope", http.StatusUnauthorized},
		{"wrong project", "/datasets/list", "other:secret", http.StatusUnauthorized},
		{"bearer scheme", "/datasets/list", "Bearer proj:secret", http.StatusUnauthorized},
		{"health exempt", "/health", "", http.StatusOK},
		{"metrics exempt", "/metrics", "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serveAuth(t, creds, tc.path, tc.header)
			if rr.Code != tc.want {
				t.Fatalf("got %d, want %d", rr.Code, tc.want)
			}
			if tc.want != http.StatusUnauthorized {
				return
			}
			var resp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != codeUnauthorized {
				t.Errorf("code = %q, want %q", resp.Code, codeUnauthorized)
			}
		})
	}
}
