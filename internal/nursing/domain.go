// Package nursing covers the nurse workflows: vital signs, medication
// administration and procedure realization.
package nursing

// VitalSigns is one set of measurements taken by a nurse.
type VitalSigns struct {
	PatientID        string  `json:"patientId"`
	NurseID          string  `json:"nurseId,omitempty"`
	BloodPressure    string  `json:"bloodPressure"`
	Temperature      float64 `json:"temperature"`
	HeartRate        int     `json:"heartRate"`
	RespiratoryRate  int     `json:"respiratoryRate"`
	OxygenSaturation float64 `json:"oxygenSaturation"`
	Weight           float64 `json:"weight,omitempty"`
	Observations     string  `json:"observations,omitempty"`
	RecordedAt       string  `json:"recordedAt,omitempty"`
}

// Chart is the reply of GET /nurse/patients/:id.
type Chart struct {
	PatientID  string       `json:"patientId"`
	FullName   string       `json:"fullName,omitempty"`
	VitalSigns []VitalSigns `json:"vitalSigns"`
}

// Administration records a medication given to a patient.
type Administration struct {
	PatientID      string `json:"patientId"`
	OrderNumber    string `json:"orderNumber"`
	Item           int    `json:"item"`
	MedicationID   string `json:"medicationId"`
	Dose           string `json:"dose"`
	AdministeredAt string `json:"administeredAt"`
	NurseID        string `json:"nurseId,omitempty"`
	Observations   string `json:"observations,omitempty"`
}

// Realization records a procedure performed on a patient.
type Realization struct {
	PatientID    string `json:"patientId"`
	OrderNumber  string `json:"orderNumber"`
	Item         int    `json:"item"`
	ProcedureID  string `json:"procedureId"`
	PerformedAt  string `json:"performedAt"`
	NurseID      string `json:"nurseId,omitempty"`
	Observations string `json:"observations,omitempty"`
}
