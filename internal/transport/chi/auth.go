package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths bypass authentication.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// ProjectKeyAuthMiddleware validates "Authorization: <project>:<api_key>" against
// the given credentials, each in the same "<project>:<api_key>" form.
// If credentials is empty, authentication is disabled (pass-through).
func ProjectKeyAuthMiddleware(credentials []string) func(http.Handler) http.Handler {
	valid := make([][]byte, 0, len(credentials))
	for _, c := range credentials {
		if c != "" {
			valid = append(valid, []byte(c))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}
			project, key, ok := strings.Cut(auth, ":")
			if !ok || project == "" || key == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must be <project>:<api_key>")
				return
			}
			if !knownCredential(valid, []byte(auth)) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func knownCredential(valid [][]byte, got []byte) bool {
	for _, v := range valid {
		if subtle.ConstantTimeCompare(v, got) == 1 {
			return true
		}
	}
	return false
}
