package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicportal/clinicportal/internal/shared"
)

func requestAs(role string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/billing", nil)
	if role == "" {
		return req
	}
	ctx := shared.ContextWithUser(req.Context(), shared.UserProfile{Role: role, IdentificationNumber: "1"})
	return req.WithContext(ctx)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAny(t *testing.T) {
	mw := Middleware{}.RequireAny(shared.CapGenerateBilling, shared.CapManageUsers)

	cases := map[string]int{
		"ADMINISTRATIVE":  http.StatusNoContent,
		"HUMAN_RESOURCES": http.StatusNoContent,
		"DOCTOR":          http.StatusForbidden,
		"MYSTERY":         http.StatusForbidden,
		"":                http.StatusForbidden,
	}
	for role, want := range cases {
		rec := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rec, requestAs(role))
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequireAnyRejectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	Middleware{}.RequireAny(shared.CapAccessPatientData)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomForbiddenHandler(t *testing.T) {
	called := false
	m := Middleware{Forbidden: func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusForbidden)
	}}
	rec := httptest.NewRecorder()
	m.RequireAny(shared.CapManageInventory)(okHandler()).ServeHTTP(rec, requestAs("NURSE"))
	assert.True(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNoCapabilitiesPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Middleware{}.RequireAny(" ")(okHandler()).ServeHTTP(rec, requestAs(""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
