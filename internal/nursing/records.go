package nursing

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

func performedAt(now func() time.Time) func(string, url.Values) string {
	return feature.NotFutureDate("Date", 0, now)
}

// AdministrationSchema is the medication administration form.
func AdministrationSchema(now func() time.Time) *feature.Schema {
	return &feature.Schema{
		Title: "medication administration",
		Fields: []feature.Field{
			{Name: "patientId", Label: "Patient ID", Required: true, MaxLen: 10, Pattern: patientIDPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "orderNumber", Label: "Order number", Required: true, MaxLen: 6, Pattern: orderNumberPattern, PatternHint: "must contain 1 to 6 digits"},
			{Name: "item", Label: "Order item", Kind: feature.KindNumber, Integer: true, Required: true, Step: "1", Check: feature.AtLeast("Order item", 1)},
			{Name: "medicationId", Label: "Medication ID", Required: true},
			{Name: "dose", Label: "Dose given", Required: true},
			{Name: "date", Label: "Date", Kind: feature.KindDate, Required: true, Check: performedAt(now)},
			{Name: "observations", Label: "Observations", Kind: feature.KindTextarea, MaxLen: 500},
		},
	}
}

// RealizationSchema is the procedure realization form.
func RealizationSchema(now func() time.Time) *feature.Schema {
	return &feature.Schema{
		Title: "procedure realization",
		Fields: []feature.Field{
			{Name: "patientId", Label: "Patient ID", Required: true, MaxLen: 10, Pattern: patientIDPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "orderNumber", Label: "Order number", Required: true, MaxLen: 6, Pattern: orderNumberPattern, PatternHint: "must contain 1 to 6 digits"},
			{Name: "item", Label: "Order item", Kind: feature.KindNumber, Integer: true, Required: true, Step: "1", Check: feature.AtLeast("Order item", 1)},
			{Name: "procedureId", Label: "Procedure ID", Required: true},
			{Name: "date", Label: "Date", Kind: feature.KindDate, Required: true, Check: performedAt(now)},
			{Name: "observations", Label: "Observations", Kind: feature.KindTextarea, MaxLen: 500},
		},
	}
}

// NewAdministrationModule wires the medication administration module.
func NewAdministrationModule(api *apiclient.Client, now func() time.Time) *feature.Module[Administration] {
	if now == nil {
		now = time.Now
	}
	endpoint := "/nurse/medication-administration"
	return &feature.Module[Administration]{
		Name:        "administrations",
		Title:       "Medication administration",
		Description: "Register medications given against an order.",
		Path:        "/nursing/administrations",
		View:        shared.CapRecordVitalSigns,
		Manage:      shared.CapRecordVitalSigns,
		Columns: []feature.Column[Administration]{
			{Header: "Date", Value: func(a Administration) string { return a.AdministeredAt }},
			{Header: "Patient", Value: func(a Administration) string { return a.PatientID }},
			{Header: "Order", Value: func(a Administration) string { return a.OrderNumber }},
			{Header: "Item", Value: func(a Administration) string { return strconv.Itoa(a.Item) }},
			{Header: "Medication", Value: func(a Administration) string { return a.MedicationID }},
			{Header: "Dose", Value: func(a Administration) string { return a.Dose }},
			{Header: "Nurse", Value: func(a Administration) string { return a.NurseID }},
		},
		Match: func(a Administration, q string) bool {
			return feature.ContainsFold(q, a.PatientID, a.OrderNumber, a.MedicationID, a.NurseID)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, _ string) ([]Administration, error) {
			var out []Administration
			err := api.GetJSON(ctx, endpoint, creds, &out)
			return out, err
		},
		Schema: AdministrationSchema(now),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, endpoint, creds, Administration{
				PatientID:      feature.Text(values, "patientId"),
				OrderNumber:    feature.Text(values, "orderNumber"),
				Item:           feature.Int(values, "item"),
				MedicationID:   feature.Text(values, "medicationId"),
				Dose:           feature.Text(values, "dose"),
				AdministeredAt: feature.Text(values, "date"),
				NurseID:        creds.UserID,
				Observations:   feature.Text(values, "observations"),
			}, nil)
		},
		Defaults: func(string) url.Values {
			return url.Values{"date": {now().Format(feature.DateLayout)}, "item": {"1"}}
		},
		EmptyText:   "No administrations registered.",
		CreatedText: "Medication administration registered.",
	}
}

// NewRealizationModule wires the procedure realization module.
func NewRealizationModule(api *apiclient.Client, now func() time.Time) *feature.Module[Realization] {
	if now == nil {
		now = time.Now
	}
	endpoint := "/nurse/procedure-realization"
	return &feature.Module[Realization]{
		Name:        "realizations",
		Title:       "Procedure realization",
		Description: "Register procedures performed against an order.",
		Path:        "/nursing/procedures",
		View:        shared.CapRecordVitalSigns,
		Manage:      shared.CapRecordVitalSigns,
		Columns: []feature.Column[Realization]{
			{Header: "Date", Value: func(p Realization) string { return p.PerformedAt }},
			{Header: "Patient", Value: func(p Realization) string { return p.PatientID }},
			{Header: "Order", Value: func(p Realization) string { return p.OrderNumber }},
			{Header: "Item", Value: func(p Realization) string { return strconv.Itoa(p.Item) }},
			{Header: "Procedure", Value: func(p Realization) string { return p.ProcedureID }},
			{Header: "Nurse", Value: func(p Realization) string { return p.NurseID }},
			{Header: "Observations", Value: func(p Realization) string { return p.Observations }},
		},
		Match: func(p Realization, q string) bool {
			return feature.ContainsFold(q, p.PatientID, p.OrderNumber, p.ProcedureID, p.NurseID)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, _ string) ([]Realization, error) {
			var out []Realization
			err := api.GetJSON(ctx, endpoint, creds, &out)
			return out, err
		},
		Schema: RealizationSchema(now),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, endpoint, creds, Realization{
				PatientID:    feature.Text(values, "patientId"),
				OrderNumber:  feature.Text(values, "orderNumber"),
				Item:         feature.Int(values, "item"),
				ProcedureID:  feature.Text(values, "procedureId"),
				PerformedAt:  feature.Text(values, "date"),
				NurseID:      creds.UserID,
				Observations: feature.Text(values, "observations"),
			}, nil)
		},
		Defaults: func(string) url.Values {
			return url.Values{"date": {now().Format(feature.DateLayout)}, "item": {"1"}}
		},
		EmptyText:   "No procedures registered.",
		CreatedText: "Procedure realization registered.",
	}
}
