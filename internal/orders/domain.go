// Package orders manages medical orders: medications, procedures and
// diagnostic aids prescribed by doctors.
package orders

import "strconv"

// Order types.
const (
	TypeMedication = "medication"
	TypeProcedure  = "procedure"
	TypeDiagnostic = "diagnostic"
)

// Order is a medical order as stored by the backend.
type Order struct {
	OrderNumber    string           `json:"orderNumber"`
	PatientID      string           `json:"patientId"`
	DoctorID       string           `json:"doctorId"`
	CreatedAt      string           `json:"createdAt,omitempty"`
	Medications    []MedicationItem `json:"medications,omitempty"`
	Procedures     []ProcedureItem  `json:"procedures,omitempty"`
	DiagnosticAids []DiagnosticItem `json:"diagnosticAids,omitempty"`
}

// MedicationItem prescribes a medication.
type MedicationItem struct {
	Item         int    `json:"item"`
	MedicationID string `json:"medicationId"`
	Dose         string `json:"dose"`
	Duration     string `json:"duration"`
}

// ProcedureItem prescribes a procedure.
type ProcedureItem struct {
	Item               int    `json:"item"`
	ProcedureID        string `json:"procedureId"`
	Times              int    `json:"times"`
	Frequency          string `json:"frequency"`
	RequiresSpecialist bool   `json:"requiresSpecialist"`
	SpecialistID       string `json:"specialistId,omitempty"`
}

// DiagnosticItem prescribes a diagnostic aid.
type DiagnosticItem struct {
	Item               int    `json:"item"`
	DiagnosticAidID    string `json:"diagnosticAidId"`
	Quantity           int    `json:"quantity"`
	RequiresSpecialist bool   `json:"requiresSpecialist"`
	SpecialistID       string `json:"specialistId,omitempty"`
}

// Type derives the order type from the populated section.
func (o Order) Type() string {
	switch {
	case len(o.Medications) > 0:
		return TypeMedication
	case len(o.Procedures) > 0:
		return TypeProcedure
	case len(o.DiagnosticAids) > 0:
		return TypeDiagnostic
	}
	return ""
}

// Summary describes the prescribed items in one line.
func (o Order) Summary() string {
	switch o.Type() {
	case TypeMedication:
		m := o.Medications[0]
		return m.MedicationID + " · " + m.Dose + " · " + m.Duration + more(len(o.Medications))
	case TypeProcedure:
		p := o.Procedures[0]
		return p.ProcedureID + " ×" + strconv.Itoa(p.Times) + " · " + p.Frequency + more(len(o.Procedures))
	case TypeDiagnostic:
		d := o.DiagnosticAids[0]
		return d.DiagnosticAidID + " ×" + strconv.Itoa(d.Quantity) + more(len(o.DiagnosticAids))
	}
	return ""
}

func more(n int) string {
	if n <= 1 {
		return ""
	}
	return " (+" + strconv.Itoa(n-1) + ")"
}
