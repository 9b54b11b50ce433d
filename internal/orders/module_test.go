package orders

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

func TestSchemaValidatesActiveSectionOnly(t *testing.T) {
	values := url.Values{
		"orderNumber":  {"1234"},
		"patientId":    {"1032456789"},
		"type":         {TypeMedication},
		"medicationId": {"MED-1"},
		"dose":         {"500 mg"},
		"duration":     {"7 days"},
	}
	assert.Empty(t, Schema().Validate(values, feature.ModeCreate))
}

func TestSchemaRules(t *testing.T) {
	cases := map[string]struct {
		values url.Values
		want   []string
	}{
		"order number too long": {
			url.Values{"orderNumber": {"1234567"}, "patientId": {"1"}, "type": {TypeDiagnostic}, "diagnosticAidId": {"D1"}, "quantity": {"1"}},
			[]string{"Order number must be at most 6 characters"},
		},
		"patient id letters": {
			url.Values{"orderNumber": {"1"}, "patientId": {"12a"}, "type": {TypeDiagnostic}, "diagnosticAidId": {"D1"}, "quantity": {"1"}},
			[]string{"Patient ID must contain digits only (max 10)"},
		},
		"procedure times below one": {
			url.Values{"orderNumber": {"1"}, "patientId": {"1"}, "type": {TypeProcedure}, "procedureId": {"P1"}, "times": {"0"}, "frequency": {"daily"}},
			[]string{"Times must be at least 1"},
		},
		"fractional times": {
			url.Values{"orderNumber": {"1"}, "patientId": {"1"}, "type": {TypeProcedure}, "procedureId": {"P1"}, "times": {"2.5"}, "frequency": {"daily"}},
			[]string{"Times must be a whole number"},
		},
		"fractional quantity": {
			url.Values{"orderNumber": {"1"}, "patientId": {"1"}, "type": {TypeDiagnostic}, "diagnosticAidId": {"D1"}, "quantity": {"1.5"}},
			[]string{"Quantity must be a whole number"},
		},
		"specialist ticked without id": {
			url.Values{"orderNumber": {"1"}, "patientId": {"1"}, "type": {TypeDiagnostic}, "diagnosticAidId": {"D1"}, "quantity": {"2"}, "diagnosticSpecialist": {"on"}},
			[]string{"Specialist ID is required"},
		},
		"unknown type": {
			url.Values{"orderNumber": {"1"}, "patientId": {"1"}, "type": {"surgery"}},
			[]string{"Order type must be one of the listed options"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Schema().Validate(tc.values, feature.ModeCreate))
		})
	}
}

func TestBuildBranchesOnType(t *testing.T) {
	procedure := Build(url.Values{
		"orderNumber": {"77"}, "patientId": {"5"}, "type": {TypeProcedure},
		"procedureId": {"P9"}, "times": {"3"}, "frequency": {"weekly"},
		"procedureSpecialist": {"on"}, "procedureSpecialistId": {"88"},
		"medicationId": {"ignored"},
	}, "1001")
	assert.Equal(t, "1001", procedure.DoctorID)
	assert.Empty(t, procedure.Medications)
	require.Len(t, procedure.Procedures, 1)
	assert.Equal(t, ProcedureItem{Item: 1, ProcedureID: "P9", Times: 3, Frequency: "weekly", RequiresSpecialist: true, SpecialistID: "88"}, procedure.Procedures[0])
	assert.Equal(t, TypeProcedure, procedure.Type())

	diagnostic := Build(url.Values{"type": {TypeDiagnostic}, "diagnosticAidId": {"D1"}, "quantity": {"2"}, "diagnosticSpecialistId": {"99"}}, "1")
	require.Len(t, diagnostic.DiagnosticAids, 1)
	assert.False(t, diagnostic.DiagnosticAids[0].RequiresSpecialist)
	assert.Empty(t, diagnostic.DiagnosticAids[0].SpecialistID)
}

func TestModuleFetchAndCreate(t *testing.T) {
	var posted Order
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/medical/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodGet:
			fetches.Add(1)
			_ = json.NewEncoder(w).Encode([]Order{{OrderNumber: "1", PatientID: "9", Medications: []MedicationItem{{Item: 1, MedicationID: "M", Dose: "1g", Duration: "3d"}}}})
		case http.MethodPost:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			w.WriteHeader(http.StatusCreated)
		}
	}))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: time.Second})
	require.NoError(t, err)

	m := NewModule(api)
	ws := feature.NewWorkspaces(time.Hour).For("s")
	creds := apiclient.Credentials{Token: "tok", UserID: "1001"}

	snap, err := m.Load(context.Background(), rbac.RoleDoctor, ws, creds, "")
	require.NoError(t, err)
	require.Len(t, snap.All, 1)
	assert.Equal(t, "M · 1g · 3d", Order.Summary(snap.All[0]))

	_, err = m.Load(context.Background(), rbac.RoleNurse, ws, creds, "")
	assert.ErrorIs(t, err, feature.ErrPermissionDenied)
	assert.EqualValues(t, 1, fetches.Load())

	err = m.Create(context.Background(), creds, url.Values{"orderNumber": {"2"}, "patientId": {"9"}, "type": {TypeMedication}, "medicationId": {"M2"}, "dose": {"5ml"}, "duration": {"1d"}})
	require.NoError(t, err)
	assert.Equal(t, "1001", posted.DoctorID)
	require.Len(t, posted.Medications, 1)
	assert.Equal(t, "M2", posted.Medications[0].MedicationID)
}
