package nursing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/rbac"
)

func vitalValues() url.Values {
	return url.Values{
		"patientId":        {"1032456789"},
		"bloodPressure":    {"120/80"},
		"temperature":      {"36.5"},
		"heartRate":        {"72"},
		"respiratoryRate":  {"16"},
		"oxygenSaturation": {"98"},
		"weight":           {"64.5"},
	}
}

func TestTemperatureBoundsAreInclusive(t *testing.T) {
	schema := VitalsSchema()
	for _, ok := range []string{"30", "45", "36.6"} {
		values := vitalValues()
		values.Set("temperature", ok)
		assert.Empty(t, schema.Validate(values, feature.ModeCreate), ok)
	}
	for _, bad := range []string{"29.9", "45.1"} {
		values := vitalValues()
		values.Set("temperature", bad)
		assert.Equal(t, []string{"Temperature must be between 30 and 45 °C"}, schema.Validate(values, feature.ModeCreate), bad)
	}
}

func TestVitalRanges(t *testing.T) {
	cases := []struct {
		field string
		ok    []string
		bad   []string
		msg   string
	}{
		{"heartRate", []string{"30", "250"}, []string{"29", "251"}, "Heart rate must be between 30 and 250 bpm"},
		{"respiratoryRate", []string{"5", "60"}, []string{"4", "61"}, "Respiratory rate must be between 5 and 60 breaths/min"},
		{"oxygenSaturation", []string{"50", "100"}, []string{"49.9", "100.1"}, "Oxygen saturation must be between 50 and 100 %"},
		{"weight", []string{"0.5", "500"}, []string{"0.4", "500.1"}, "Weight must be between 0.5 and 500 kg"},
	}
	schema := VitalsSchema()
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			for _, v := range tc.ok {
				values := vitalValues()
				values.Set(tc.field, v)
				assert.Empty(t, schema.Validate(values, feature.ModeCreate), v)
			}
			for _, v := range tc.bad {
				values := vitalValues()
				values.Set(tc.field, v)
				assert.Equal(t, []string{tc.msg}, schema.Validate(values, feature.ModeCreate), v)
			}
		})
	}
}

func TestCountsMustBeWholeNumbers(t *testing.T) {
	schema := VitalsSchema()
	for field, msg := range map[string]string{
		"heartRate":       "Heart rate must be a whole number",
		"respiratoryRate": "Respiratory rate must be a whole number",
	} {
		values := vitalValues()
		values.Set(field, "72.5")
		assert.Equal(t, []string{msg}, schema.Validate(values, feature.ModeCreate), field)
	}

	values := vitalValues()
	values.Set("heartRate", "88")
	assert.Equal(t, 88, BuildVitals(values, "3000000003").HeartRate)
}

func TestBloodPressureFormat(t *testing.T) {
	schema := VitalsSchema()
	for _, ok := range []string{"120/80", "90/60", "140/100"} {
		values := vitalValues()
		values.Set("bloodPressure", ok)
		assert.Empty(t, schema.Validate(values, feature.ModeCreate), ok)
	}
	for _, bad := range []string{"120-80", "1200/80", "120/", "abc"} {
		values := vitalValues()
		values.Set("bloodPressure", bad)
		assert.Equal(t, []string{"Blood pressure must look like 120/80"}, schema.Validate(values, feature.ModeCreate), bad)
	}
}

func TestVitalsModuleIsScopedByPatient(t *testing.T) {
	var fetches atomic.Int32
	var posted VitalSigns
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/nurse/patients/1032456789":
			fetches.Add(1)
			_ = json.NewEncoder(w).Encode(Chart{PatientID: "1032456789", VitalSigns: []VitalSigns{{BloodPressure: "110/70", Temperature: 36.8}}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/nurse/vital-signs":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: time.Second})
	require.NoError(t, err)
	m := NewVitalsModule(api)
	ws := feature.NewWorkspaces(time.Hour).For("s")
	creds := apiclient.Credentials{Token: "t", UserID: "55"}
	ctx := context.Background()

	snap, err := m.Load(ctx, rbac.RoleNurse, ws, creds, "")
	require.NoError(t, err)
	assert.Empty(t, snap.All)
	assert.Zero(t, fetches.Load())

	_, err = m.Load(ctx, rbac.RoleNurse, ws, creds, "12ab")
	var valErr *feature.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, fetches.Load())

	snap, err = m.Load(ctx, rbac.RoleNurse, ws, creds, "1032456789")
	require.NoError(t, err)
	require.Len(t, snap.All, 1)
	assert.Equal(t, "1032456789", snap.Scope)

	_, err = m.Load(ctx, rbac.RoleDoctor, ws, creds, "1032456789")
	assert.ErrorIs(t, err, feature.ErrPermissionDenied)
	assert.EqualValues(t, 1, fetches.Load())

	require.NoError(t, m.Create(ctx, creds, vitalValues()))
	assert.Equal(t, "55", posted.NurseID)
	assert.InDelta(t, 36.5, posted.Temperature, 0.0001)
	assert.Equal(t, 72, posted.HeartRate)
	assert.Equal(t, url.Values{"patientId": {"9"}}, m.Defaults("9"))
}
