// Package patients registers patients and keeps their contact and insurance
// data current.
package patients

// Patient is a registered patient.
type Patient struct {
	IdentificationNumber string           `json:"identificationNumber"`
	FullName             string           `json:"fullName"`
	BirthDate            string           `json:"birthDate"`
	Gender               string           `json:"gender"`
	Address              string           `json:"address"`
	Phone                string           `json:"phone"`
	Email                string           `json:"email,omitempty"`
	EmergencyContact     EmergencyContact `json:"emergencyContact"`
	Insurance            Insurance        `json:"insurance"`
}

// EmergencyContact is who to call about the patient.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
}

// Insurance is the patient's health policy.
type Insurance struct {
	Company      string `json:"company"`
	PolicyNumber string `json:"policyNumber"`
	Active       bool   `json:"active"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
}
