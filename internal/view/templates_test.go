package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinicportal/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLayoutShowsUserAndFlash(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/error.html", TemplateData{
		Title:     "Forbidden",
		Flash:     &shared.FlashMessage{Kind: shared.FlashWarning, Message: "Careful"},
		User:      &shared.UserProfile{FullName: "Luis Gómez", Role: "DOCTOR"},
		RoleLabel: "Doctor",
		Nav:       []NavItem{{Title: "Orders", Path: "/orders", Active: true}},
		Data:      map[string]any{"Status": 403, "Message": "No access"},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "Luis Gómez")
	assert.Contains(t, body, "flash-warning")
	assert.Contains(t, body, "Careful")
	assert.Contains(t, body, `href="/orders"`)
	assert.Contains(t, body, "No access")
}

func TestRenderNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/error.html", TemplateData{}))
}
