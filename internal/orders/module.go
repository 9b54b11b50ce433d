package orders

import (
	"context"
	"net/url"
	"regexp"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

var (
	orderNumberPattern = regexp.MustCompile(`^\d{1,6}$`)
	patientIDPattern   = regexp.MustCompile(`^\d{1,10}$`)
)

var typeLabels = map[string]string{
	TypeMedication: "Medication",
	TypeProcedure:  "Procedure",
	TypeDiagnostic: "Diagnostic aid",
}

// Schema is the order form.
func Schema() *feature.Schema {
	return &feature.Schema{
		Title:    "order",
		Selector: "type",
		Sections: []feature.Section{
			{Value: TypeMedication, Label: typeLabels[TypeMedication]},
			{Value: TypeProcedure, Label: typeLabels[TypeProcedure]},
			{Value: TypeDiagnostic, Label: typeLabels[TypeDiagnostic]},
		},
		Fields: []feature.Field{
			{Name: "orderNumber", Label: "Order number", Required: true, MaxLen: 6, Pattern: orderNumberPattern, PatternHint: "must contain 1 to 6 digits"},
			{Name: "patientId", Label: "Patient ID", Required: true, MaxLen: 10, Pattern: patientIDPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "type", Label: "Order type", Kind: feature.KindSelect, Required: true, Options: []feature.Option{
				{Value: TypeMedication, Label: typeLabels[TypeMedication]},
				{Value: TypeProcedure, Label: typeLabels[TypeProcedure]},
				{Value: TypeDiagnostic, Label: typeLabels[TypeDiagnostic]},
			}},

			{Name: "medicationId", Label: "Medication ID", Section: TypeMedication, Required: true},
			{Name: "dose", Label: "Dose", Section: TypeMedication, Required: true, Placeholder: "500 mg"},
			{Name: "duration", Label: "Treatment duration", Section: TypeMedication, Required: true, Placeholder: "7 days"},

			{Name: "procedureId", Label: "Procedure ID", Section: TypeProcedure, Required: true},
			{Name: "times", Label: "Times", Kind: feature.KindNumber, Integer: true, Section: TypeProcedure, Required: true, Step: "1", Check: feature.AtLeast("Times", 1)},
			{Name: "frequency", Label: "Frequency", Section: TypeProcedure, Required: true, Placeholder: "every 8 hours"},
			{Name: "procedureSpecialist", Label: "Requires specialist", Kind: feature.KindCheckbox, Section: TypeProcedure},
			{Name: "procedureSpecialistId", Label: "Specialist ID", Section: TypeProcedure, RequiredWhen: "procedureSpecialist"},

			{Name: "diagnosticAidId", Label: "Diagnostic aid ID", Section: TypeDiagnostic, Required: true},
			{Name: "quantity", Label: "Quantity", Kind: feature.KindNumber, Integer: true, Section: TypeDiagnostic, Required: true, Step: "1", Check: feature.AtLeast("Quantity", 1)},
			{Name: "diagnosticSpecialist", Label: "Requires specialist", Kind: feature.KindCheckbox, Section: TypeDiagnostic},
			{Name: "diagnosticSpecialistId", Label: "Specialist ID", Section: TypeDiagnostic, RequiredWhen: "diagnosticSpecialist"},
		},
	}
}

// Build assembles the nested order payload from a validated form.
func Build(values url.Values, doctorID string) Order {
	order := Order{
		OrderNumber: feature.Text(values, "orderNumber"),
		PatientID:   feature.Text(values, "patientId"),
		DoctorID:    doctorID,
	}
	switch feature.Text(values, "type") {
	case TypeMedication:
		order.Medications = []MedicationItem{{
			Item:         1,
			MedicationID: feature.Text(values, "medicationId"),
			Dose:         feature.Text(values, "dose"),
			Duration:     feature.Text(values, "duration"),
		}}
	case TypeProcedure:
		item := ProcedureItem{
			Item:               1,
			ProcedureID:        feature.Text(values, "procedureId"),
			Times:              feature.Int(values, "times"),
			Frequency:          feature.Text(values, "frequency"),
			RequiresSpecialist: feature.Checked(values, "procedureSpecialist"),
		}
		if item.RequiresSpecialist {
			item.SpecialistID = feature.Text(values, "procedureSpecialistId")
		}
		order.Procedures = []ProcedureItem{item}
	case TypeDiagnostic:
		item := DiagnosticItem{
			Item:               1,
			DiagnosticAidID:    feature.Text(values, "diagnosticAidId"),
			Quantity:           feature.Int(values, "quantity"),
			RequiresSpecialist: feature.Checked(values, "diagnosticSpecialist"),
		}
		if item.RequiresSpecialist {
			item.SpecialistID = feature.Text(values, "diagnosticSpecialistId")
		}
		order.DiagnosticAids = []DiagnosticItem{item}
	}
	return order
}

// NewModule wires the orders module to the backend.
func NewModule(api *apiclient.Client) *feature.Module[Order] {
	endpoint := "/medical/orders"
	return &feature.Module[Order]{
		Name:        "orders",
		Title:       "Medical orders",
		Description: "Prescribe medications, procedures and diagnostic aids.",
		Path:        "/orders",
		View:        shared.CapManageMedicalRecords,
		Manage:      shared.CapManageMedicalRecords,
		Columns: []feature.Column[Order]{
			{Header: "Order", Value: func(o Order) string { return o.OrderNumber }},
			{Header: "Patient", Value: func(o Order) string { return o.PatientID }},
			{Header: "Doctor", Value: func(o Order) string { return o.DoctorID }},
			{Header: "Type", Value: func(o Order) string { return typeLabels[o.Type()] }},
			{Header: "Detail", Value: Order.Summary},
			{Header: "Created", Value: func(o Order) string { return o.CreatedAt }},
		},
		Key: func(o Order) string { return o.OrderNumber },
		Match: func(o Order, q string) bool {
			return feature.ContainsFold(q, o.OrderNumber, o.PatientID, o.DoctorID, typeLabels[o.Type()], o.Summary())
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, _ string) ([]Order, error) {
			var out []Order
			err := api.GetJSON(ctx, endpoint, creds, &out)
			return out, err
		},
		Schema: Schema(),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, endpoint, creds, Build(values, creds.UserID), nil)
		},
		EmptyText:   "No orders registered yet.",
		CreatedText: "Order created successfully.",
	}
}
