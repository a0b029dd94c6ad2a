package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clowee-erp/clowee-erp/internal/shared"
)

type staticSource struct {
	granted map[int64][]string
}

func (s *staticSource) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.granted[userID], nil
}

func requestWithUser(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	if userID == "" {
		return req
	}
	sess := &shared.Session{ID: "sess-1"}
	sess.SetUser(userID)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func runGuard(guard func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	called := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	res := httptest.NewRecorder()
	guard(called).ServeHTTP(res, req)
	return res
}

func TestRequireAny(t *testing.T) {
	mw := Middleware{Source: &staticSource{granted: map[int64][]string{
		7: {"sales.view", "reports.view"},
	}}}

	cases := []struct {
		name   string
		perms  []string
		user   string
		status int
	}{
		{"granted", []string{"sales.view"}, "7", http.StatusOK},
		{"one of several", []string{"sales.edit", "reports.view"}, "7", http.StatusOK},
		{"denied", []string{"sales.edit"}, "7", http.StatusForbidden},
		{"no session", []string{"sales.view"}, "", http.StatusForbidden},
		{"unknown user", []string{"sales.view"}, "99", http.StatusForbidden},
		{"case insensitive", []string{"SALES.VIEW"}, "7", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runGuard(mw.RequireAny(tc.perms...), requestWithUser(tc.user))
			require.Equal(t, tc.status, res.Code)
		})
	}
}

func TestRequireAll(t *testing.T) {
	mw := Middleware{Source: &staticSource{granted: map[int64][]string{
		7: {"sales.view", "sales.create"},
	}}}

	res := runGuard(mw.RequireAll("sales.view", "sales.create"), requestWithUser("7"))
	require.Equal(t, http.StatusOK, res.Code)

	res = runGuard(mw.RequireAll("sales.view", "sales.delete"), requestWithUser("7"))
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestEmptyPermissionListPasses(t *testing.T) {
	mw := Middleware{Source: &staticSource{}}

	res := runGuard(mw.RequireAny(), requestWithUser(""))
	require.Equal(t, http.StatusOK, res.Code)

	res = runGuard(mw.RequireAll("  ", ""), requestWithUser(""))
	require.Equal(t, http.StatusOK, res.Code)
}

func TestMalformedUserIDIsForbidden(t *testing.T) {
	mw := Middleware{Source: &staticSource{granted: map[int64][]string{7: {"sales.view"}}}}

	res := runGuard(mw.RequireAny("sales.view"), requestWithUser("not-a-number"))
	require.Equal(t, http.StatusForbidden, res.Code)
}
