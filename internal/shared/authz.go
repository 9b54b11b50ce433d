package shared

// Clinical capabilities granted by role.
const (
	CapAccessPatientData    = "patients.access"
	CapManageUsers          = "users.manage"
	CapRegisterPatients     = "patients.register"
	CapManageInventory      = "inventory.manage"
	CapRecordVitalSigns     = "nursing.vitals"
	CapManageMedicalRecords = "medical.records"
	CapGenerateBilling      = "billing.generate"
)

// ClinicalScopes lists every capability the portal checks.
func ClinicalScopes() []string {
	return []string{
		CapAccessPatientData,
		CapManageUsers,
		CapRegisterPatients,
		CapManageInventory,
		CapRecordVitalSigns,
		CapManageMedicalRecords,
		CapGenerateBilling,
	}
}
