package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/rbac"
)

func TestMoneyFormat(t *testing.T) {
	m := NewMoney(language.AmericanEnglish)
	assert.Equal(t, "$1,234,567.50", m.Format(1234567.5))
	assert.Equal(t, "$0.00", m.Format(0))
	assert.Equal(t, "-$12.30", m.Format(-12.3))
}

func TestBillLines(t *testing.T) {
	bill := Bill{
		PatientName:      "Ana",
		Insurer:          "Sura",
		PolicyActive:     true,
		Items:            []Line{{Kind: "medication", Code: "M1", Amount: 100}, {Kind: "procedure", Code: "P1", Amount: 250}},
		Copay:            50,
		InsuranceCovered: 300,
		Total:            50,
	}
	lines := bill.Lines()
	require.Len(t, lines, 5)
	assert.InDelta(t, 350, bill.Subtotal(), 0.001)
	assert.Equal(t, KindCopay, lines[2].Kind)
	assert.Equal(t, "Sura covered", lines[3].Description)
	assert.Equal(t, KindTotal, lines[4].Kind)

	bill.PolicyActive = false
	assert.Equal(t, "Sura (policy inactive)", bill.Lines()[3].Description)
	bill.Insurer = ""
	assert.Equal(t, "Not insured", bill.Lines()[3].Description)
}

func TestBillingLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/billing/order/000123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Bill{OrderNumber: "000123", PatientName: "Ana", Items: []Line{{Kind: "diagnostic", Code: "D9", Quantity: 2, UnitCost: 40, Amount: 80}}, Total: 80})
	}))
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	m := NewModule(api, Money{})
	ws := feature.NewWorkspaces(time.Hour).For("s")
	creds := apiclient.Credentials{Token: "t"}

	_, err = m.Load(context.Background(), rbac.RoleAdministrative, ws, creds, "1234567")
	var valErr *feature.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"Order number must contain 1 to 6 digits"}, valErr.Messages)

	snap, err := m.Load(context.Background(), rbac.RoleAdministrative, ws, creds, "000123")
	require.NoError(t, err)
	require.Len(t, snap.All, 4)
	assert.Equal(t, "$40.00", m.Columns[4].Value(snap.All[0]))
	assert.Equal(t, "Diagnostic aid", m.Columns[0].Value(snap.All[0]))

	_, err = m.Load(context.Background(), rbac.RoleDoctor, ws, creds, "000123")
	assert.ErrorIs(t, err, feature.ErrPermissionDenied)
	assert.False(t, m.CanManage(rbac.RoleAdministrative))
}
