package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var operator = UserClaims{UserID: "u1", Email: "operator@binroute.dev", Role: "operator"}

func TestIssueAndParseToken(t *testing.T) {
	auth := NewJWTAuth("test-secret")

	token, err := auth.IssueToken(operator)
	require.NoError(t, err)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, operator, claims)
}

func TestParseTokenRejects(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	token, err := auth.IssueToken(operator)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTAuth("other-secret").ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTAuth("test-secret")
		late.now = func() time.Time { return time.Now().Add(TokenTTL + time.Hour) }
		_, err := late.ParseToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("missing user id", func(t *testing.T) {
		anon, err := auth.IssueToken(UserClaims{Email: "x@y.z"})
		require.NoError(t, err)
		_, err = auth.ParseToken(anon)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ParseToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		_, err := NewJWTAuth("").ParseToken(token)
		assert.Error(t, err)
		_, err = NewJWTAuth("").IssueToken(operator)
		assert.Error(t, err)
	})
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := GetUserFromContext(r)
	w.Write([]byte(claims.UserID))
}

func TestMiddleware(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	token, err := auth.IssueToken(operator)
	require.NoError(t, err)

	handler := auth.Middleware(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bins", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u1", rec.Body.String())
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Unauthorized", body["error"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(echoUser))

	serve := func(claims *UserClaims) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		if claims != nil {
			req = req.WithContext(WithUser(req.Context(), *claims))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	admin := UserClaims{UserID: "u9", Role: "admin"}
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&operator))
	assert.Equal(t, http.StatusOK, serve(&admin))
}
