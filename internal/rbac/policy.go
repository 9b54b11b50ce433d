// Package rbac maps clinical staff roles to the capabilities and landing
// pages the portal grants them.
package rbac

import (
	"sort"
	"strings"

	"github.com/clinicportal/clinicportal/internal/shared"
)

// Role is the staff role reported by the clinical backend.
type Role string

// Known roles.
const (
	RoleAdministrative Role = "ADMINISTRATIVE"
	RoleDoctor         Role = "DOCTOR"
	RoleNurse          Role = "NURSE"
	RoleHumanResources Role = "HUMAN_RESOURCES"
	RoleSupport        Role = "SUPPORT"
)

// DefaultDashboard is the landing page for roles outside the table.
const DefaultDashboard = "/dashboard"

// Profile is the single source of truth for what a role can do and where it
// lands after login.
type Profile struct {
	Role         Role
	Label        string
	Slug         string
	Capabilities []string
}

var profiles = map[Role]Profile{
	RoleAdministrative: {
		Role:  RoleAdministrative,
		Label: "Administrative staff",
		Slug:  "administrative",
		Capabilities: []string{
			shared.CapAccessPatientData,
			shared.CapRegisterPatients,
			shared.CapGenerateBilling,
		},
	},
	RoleDoctor: {
		Role:  RoleDoctor,
		Label: "Doctor",
		Slug:  "doctor",
		Capabilities: []string{
			shared.CapAccessPatientData,
			shared.CapManageMedicalRecords,
		},
	},
	RoleNurse: {
		Role:  RoleNurse,
		Label: "Nurse",
		Slug:  "nurse",
		Capabilities: []string{
			shared.CapAccessPatientData,
			shared.CapRecordVitalSigns,
		},
	},
	RoleHumanResources: {
		Role:         RoleHumanResources,
		Label:        "Human resources",
		Slug:         "human-resources",
		Capabilities: []string{shared.CapManageUsers},
	},
	RoleSupport: {
		Role:         RoleSupport,
		Label:        "IT support",
		Slug:         "support",
		Capabilities: []string{shared.CapManageInventory},
	},
}

var roleOrder = []Role{RoleAdministrative, RoleDoctor, RoleNurse, RoleHumanResources, RoleSupport}

// ParseRole normalises a backend role string. Unknown values are kept so they
// can be logged, but carry no capabilities.
func ParseRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

// Roles returns the known roles in display order.
func Roles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// Known reports whether the role is in the table.
func (r Role) Known() bool {
	_, ok := profiles[r]
	return ok
}

// Profile returns the table entry for the role.
func (r Role) Profile() (Profile, bool) {
	p, ok := profiles[r]
	return p, ok
}

// Label returns a display name for the role.
func (r Role) Label() string {
	if p, ok := profiles[r]; ok {
		return p.Label
	}
	if r == "" {
		return "Unassigned"
	}
	return string(r)
}

// Has reports whether the role grants the capability.
func (r Role) Has(capability string) bool {
	p, ok := profiles[r]
	if !ok {
		return false
	}
	capability = strings.ToLower(strings.TrimSpace(capability))
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns a sorted copy of the role's capability set.
func (r Role) Capabilities() []string {
	p, ok := profiles[r]
	if !ok {
		return nil
	}
	out := append([]string(nil), p.Capabilities...)
	sort.Strings(out)
	return out
}

// DashboardPath returns the landing route for the role.
func (r Role) DashboardPath() string {
	if p, ok := profiles[r]; ok {
		return DefaultDashboard + "/" + p.Slug
	}
	return DefaultDashboard
}

// RoleForSlug resolves a dashboard slug back to its role.
func RoleForSlug(slug string) (Role, bool) {
	for role, p := range profiles {
		if p.Slug == slug {
			return role, true
		}
	}
	return "", false
}

// CanAccessPatientData reports whether the role may read patient records.
func CanAccessPatientData(r Role) bool { return r.Has(shared.CapAccessPatientData) }

// CanManageUsers reports whether the role may administer staff accounts.
func CanManageUsers(r Role) bool { return r.Has(shared.CapManageUsers) }

// CanRegisterPatients reports whether the role may register patients.
func CanRegisterPatients(r Role) bool { return r.Has(shared.CapRegisterPatients) }

// CanManageInventory reports whether the role may edit the catalogs.
func CanManageInventory(r Role) bool { return r.Has(shared.CapManageInventory) }

// CanRecordVitalSigns reports whether the role may chart vital signs.
func CanRecordVitalSigns(r Role) bool { return r.Has(shared.CapRecordVitalSigns) }

// CanManageMedicalRecords reports whether the role may write clinical records.
func CanManageMedicalRecords(r Role) bool { return r.Has(shared.CapManageMedicalRecords) }

// CanGenerateBilling reports whether the role may produce bills.
func CanGenerateBilling(r Role) bool { return r.Has(shared.CapGenerateBilling) }
