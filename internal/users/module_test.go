package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
)

func fixedNow() time.Time { return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC) }

func validValues() url.Values {
	return url.Values{
		"fullName":             {"Laura Méndez"},
		"identificationNumber": {"1032456789"},
		"email":                {"laura@clinic.test"},
		"phone":                {"3001234567"},
		"birthDate":            {"1988-04-12"},
		"address":              {"Calle 10 # 20-30"},
		"role":                 {"NURSE"},
		"username":             {"lmendez"},
		"password":             {"Secure#2026"},
	}
}

func TestSchemaAcceptsValidAccount(t *testing.T) {
	assert.Empty(t, Schema(fixedNow).Validate(validValues(), feature.ModeCreate))
}

func TestSchemaRules(t *testing.T) {
	cases := map[string]struct {
		field, value string
		want         string
	}{
		"identification letters": {"identificationNumber", "12AB", "Identification number must contain digits only (max 10)"},
		"identification long":    {"identificationNumber", "12345678901", "Identification number must be at most 10 characters"},
		"bad email":              {"email", "laura@", "E-mail must be a valid email address"},
		"phone long":             {"phone", "30012345678", "Phone must be at most 10 characters"},
		"future birth":           {"birthDate", "2026-02-01", "Birth date cannot be in the future"},
		"too old":                {"birthDate", "1870-01-01", "Birth date cannot be more than 150 years ago"},
		"address long":           {"address", "1234567890123456789012345678901", "Address must be at most 30 characters"},
		"unknown role":           {"role", "JANITOR", "Role must be one of the listed options"},
		"username symbols":       {"username", "l.mendez", "Username must contain letters and digits only"},
		"username long":          {"username", "abcdefghijklmnop", "Username must be at most 15 characters"},
		"weak password":          {"password", "password1", "Password must have at least 8 characters with one upper-case letter, one digit and one special character"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			values := validValues()
			values.Set(tc.field, tc.value)
			assert.Equal(t, []string{tc.want}, Schema(fixedNow).Validate(values, feature.ModeCreate))
		})
	}
}

func TestPasswordOptionalOnEdit(t *testing.T) {
	values := validValues()
	values.Del("password")
	assert.Empty(t, Schema(fixedNow).Validate(values, feature.ModeEdit))
	assert.Equal(t, []string{"Password is required"}, Schema(fixedNow).Validate(values, feature.ModeCreate))

	values.Set("password", "weak")
	assert.Len(t, Schema(fixedNow).Validate(values, feature.ModeEdit), 1)
}

func TestPrefillOmitsPassword(t *testing.T) {
	values := Prefill(Account{Username: "lmendez", Password: "secret"})
	assert.Equal(t, "lmendez", values.Get("username"))
	assert.False(t, values.Has("password"))
}

func TestUpdateAndRemoveUseAccountPath(t *testing.T) {
	var calls []string
	var body Account
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: time.Second})
	require.NoError(t, err)
	m := NewModule(api, fixedNow)
	creds := apiclient.Credentials{Token: "t"}

	values := validValues()
	values.Del("password")
	require.NoError(t, m.Update(context.Background(), creds, "1032456789", values))
	require.NoError(t, m.Remove(context.Background(), creds, "1032456789"))

	assert.Equal(t, []string{"PUT /api/users/1032456789", "DELETE /api/users/1032456789"}, calls)
	assert.Empty(t, body.Password)
	assert.Equal(t, "NURSE", body.Role)
}
