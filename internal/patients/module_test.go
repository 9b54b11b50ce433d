package patients

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
	"github.com/clinicportal/clinicportal/internal/rbac"
)

func fixedNow() time.Time { return time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC) }

func patientValues() url.Values {
	return url.Values{
		"identificationNumber": {"52123456"},
		"fullName":             {"Julián Pardo"},
		"birthDate":            {"1975-11-02"},
		"gender":               {"M"},
		"address":              {"Cra 7 # 45-10"},
		"phone":                {"3109876543"},
		"emergencyName":        {"Clara Pardo"},
		"emergencyPhone":       {"3101112233"},
		"insurer":              {"Salud Total"},
		"policyNumber":         {"ST12345"},
		"policyActive":         {"on"},
		"policyExpiry":         {"2027-01-01"},
	}
}

func TestSchema(t *testing.T) {
	schema := Schema(fixedNow)
	assert.Empty(t, schema.Validate(patientValues(), feature.ModeCreate))

	values := patientValues()
	values.Del("policyExpiry")
	assert.Equal(t, []string{"Policy expiry is required"}, schema.Validate(values, feature.ModeCreate))

	values = patientValues()
	values.Set("email", "not-an-email")
	values.Set("address", "a very long address that exceeds the limit")
	assert.Equal(t, []string{
		"Address must be at most 30 characters",
		"E-mail must be a valid email address",
	}, schema.Validate(values, feature.ModeCreate))

	values = patientValues()
	values.Del("identificationNumber")
	assert.Empty(t, schema.Validate(values, feature.ModeEdit))
}

func TestBuildAndPrefillRoundTrip(t *testing.T) {
	p := Build(patientValues())
	assert.Equal(t, "Clara Pardo", p.EmergencyContact.Name)
	assert.True(t, p.Insurance.Active)
	assert.Equal(t, p, Build(Prefill(p)))
}

func TestAge(t *testing.T) {
	assert.Equal(t, 50, Age("1975-11-02", fixedNow()))
	assert.Equal(t, 51, Age("1975-05-01", fixedNow()))
	assert.Equal(t, -1, Age("02/11/1975", fixedNow()))
}

func TestNurseCanViewButNotRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Patient{{IdentificationNumber: "1", FullName: "A"}})
	}))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	m := NewModule(api, fixedNow)

	snap, err := m.Load(context.Background(), rbac.RoleNurse, feature.NewWorkspaces(time.Hour).For("s"), apiclient.Credentials{Token: "t"}, "")
	require.NoError(t, err)
	assert.Len(t, snap.All, 1)
	assert.False(t, m.CanManage(rbac.RoleNurse))
	assert.True(t, m.CanManage(rbac.RoleAdministrative))
	assert.False(t, m.CanManage(rbac.RoleHumanResources))
}
