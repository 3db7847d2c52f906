// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(context.Context, string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		upgrade bool
		query   string
		want    string
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "case insensitive scheme", header: "bearer  abc ", want: "abc"},
		{name: "wrong scheme", header: "Basic abc", want: ""},
		{name: "missing", want: ""},
		{name: "query ignored without upgrade", query: "abc", want: ""},
		{name: "query on websocket upgrade", query: "abc", upgrade: true, want: "abc"},
		{name: "header wins on upgrade", header: "Bearer hdr", query: "q", upgrade: true, want: "hdr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/realtime"
			if tt.query != "" {
				target += "?access_token=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				r.Header.Set("Upgrade", "websocket")
			}

			assert.Equal(t, tt.want, ExtractToken(r))
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestAuthenticator(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Authenticator(stubVerifier{})(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer x")
		rec := httptest.NewRecorder()
		Authenticator(stubVerifier{err: core.ErrTokenExpired})(next).ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, core.TokenExpiredError().Code, decodeError(t, rec))
	})

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer x")
		rec := httptest.NewRecorder()
		verifier := stubVerifier{claims: &AccessTokenClaims{UserID: "u1", Role: "user"}}
		Authenticator(verifier)(next).ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "u1", seen)
	})
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		role   string
		status int
	}{
		{name: "anonymous", role: "", status: http.StatusUnauthorized},
		{name: "user", role: "user", status: http.StatusForbidden},
		{name: "admin", role: "admin", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				r = r.WithContext(WithClaims(r.Context(), &AccessTokenClaims{UserID: "u", Role: tt.role}))
			}
			rec := httptest.NewRecorder()
			RequireAdmin(ok).ServeHTTP(rec, r)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
