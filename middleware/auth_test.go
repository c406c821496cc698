package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"flappion-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthorizer struct {
	err       error
	seenToken string
}

func (f *fakeAuthorizer) Authorize(_ context.Context, token string) (services.AdminSession, error) {
	f.seenToken = token
	return services.AdminSession{}, f.err
}

func serve(t *testing.T, auth Authorizer, header string) (*httptest.ResponseRecorder, map[string]any, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.GET("/admin", RequireAdmin(auth), func(c *gin.Context) {
		_, reached = AdminFrom(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body, reached
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		err      error
		code     int
		redirect bool
	}{
		{"missing header", "", nil, http.StatusUnauthorized, true},
		{"not bearer", "Basic abc", nil, http.StatusUnauthorized, true},
		{"unauthenticated", "Bearer tok", services.ErrUnauthenticated, http.StatusUnauthorized, true},
		{"not an admin", "Bearer tok", services.ErrForbidden, http.StatusForbidden, true},
		{"store down", "Bearer tok", errors.New("db gone"), http.StatusInternalServerError, false},
		{"ok", "bearer tok", nil, http.StatusNoContent, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuthorizer{err: tc.err}
			rec, body, reached := serve(t, auth, tc.header)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.code == http.StatusNoContent, reached)
			if tc.redirect {
				assert.Equal(t, AdminAuthPath, body["redirect"])
				assert.NotEmpty(t, body["error"])
			}
			if tc.code == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "db gone")
			}
		})
	}
}

func TestBearerTokenPassedThrough(t *testing.T) {
	auth := &fakeAuthorizer{}
	serve(t, auth, "Bearer  abc.def.ghi ")
	assert.Equal(t, "abc.def.ghi", auth.seenToken)
}
