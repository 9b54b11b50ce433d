// Package history shows and extends the clinical history of a patient.
package history

import (
	"context"
	"net/url"
	"regexp"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// Entry is one visit in the clinical history.
type Entry struct {
	PatientID   string `json:"patientId"`
	Date        string `json:"date"`
	DoctorID    string `json:"doctorId"`
	Reason      string `json:"reason"`
	Symptoms    string `json:"symptoms"`
	Diagnosis   string `json:"diagnosis"`
	Treatment   string `json:"treatment,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

var (
	patientIDPattern   = regexp.MustCompile(`^\d{1,10}$`)
	orderNumberPattern = regexp.MustCompile(`^\d{1,6}$`)
)

// Schema is the history entry form.
func Schema() *feature.Schema {
	return &feature.Schema{
		Title: "history entry",
		Fields: []feature.Field{
			{Name: "patientId", Label: "Patient ID", Required: true, MaxLen: 10, Pattern: patientIDPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "reason", Label: "Reason for visit", Required: true, MaxLen: 200},
			{Name: "symptoms", Label: "Symptoms", Kind: feature.KindTextarea, Required: true, MaxLen: 1000},
			{Name: "diagnosis", Label: "Diagnosis", Kind: feature.KindTextarea, Required: true, MaxLen: 1000},
			{Name: "treatment", Label: "Treatment", Kind: feature.KindTextarea, MaxLen: 1000},
			{Name: "orderNumber", Label: "Related order", MaxLen: 6, Pattern: orderNumberPattern, PatternHint: "must contain 1 to 6 digits"},
		},
	}
}

// NewModule wires the clinical history module.
func NewModule(api *apiclient.Client) *feature.Module[Entry] {
	return &feature.Module[Entry]{
		Name:        "history",
		Title:       "Clinical history",
		Description: "Review visits of a patient and record new findings.",
		Path:        "/history",
		View:        shared.CapAccessPatientData,
		Manage:      shared.CapManageMedicalRecords,
		Lookup: &feature.Lookup{
			Param:       "patientId",
			Label:       "Patient ID",
			Placeholder: "Identification number",
			Pattern:     patientIDPattern,
			Hint:        "must contain digits only (max 10)",
		},
		Columns: []feature.Column[Entry]{
			{Header: "Date", Value: func(e Entry) string { return e.Date }},
			{Header: "Doctor", Value: func(e Entry) string { return e.DoctorID }},
			{Header: "Reason", Value: func(e Entry) string { return e.Reason }},
			{Header: "Symptoms", Value: func(e Entry) string { return e.Symptoms }},
			{Header: "Diagnosis", Value: func(e Entry) string { return e.Diagnosis }},
			{Header: "Treatment", Value: func(e Entry) string { return e.Treatment }},
			{Header: "Order", Value: func(e Entry) string { return e.OrderNumber }},
		},
		Match: func(e Entry, q string) bool {
			return feature.ContainsFold(q, e.Date, e.DoctorID, e.Reason, e.Symptoms, e.Diagnosis, e.OrderNumber)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, patientID string) ([]Entry, error) {
			var out []Entry
			err := api.GetJSON(ctx, apiclient.Path("/medical/records", patientID), creds, &out)
			return out, err
		},
		Schema: Schema(),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			patientID := feature.Text(values, "patientId")
			entry := Entry{
				PatientID:   patientID,
				DoctorID:    creds.UserID,
				Reason:      feature.Text(values, "reason"),
				Symptoms:    feature.Text(values, "symptoms"),
				Diagnosis:   feature.Text(values, "diagnosis"),
				Treatment:   feature.Text(values, "treatment"),
				OrderNumber: feature.Text(values, "orderNumber"),
			}
			return api.PostJSON(ctx, apiclient.Path("/medical/records", patientID), creds, entry, nil)
		},
		Defaults: func(patientID string) url.Values {
			return url.Values{"patientId": {patientID}}
		},
		EmptyText:   "No history entries for this patient.",
		CreatedText: "History entry saved.",
	}
}
