package patients

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

var (
	identificationPattern = regexp.MustCompile(`^\d{1,10}$`)
	phonePattern          = regexp.MustCompile(`^\d{1,10}$`)
)

var genderLabels = map[string]string{
	"M": "Male",
	"F": "Female",
	"O": "Other",
}

// Schema is the patient registration form.
func Schema(now func() time.Time) *feature.Schema {
	return &feature.Schema{
		Title: "patient",
		Fields: []feature.Field{
			{Name: "identificationNumber", Label: "Identification number", Required: true, CreateOnly: true, MaxLen: 10, Pattern: identificationPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "fullName", Label: "Full name", Required: true, MaxLen: 80},
			{Name: "birthDate", Label: "Birth date", Kind: feature.KindDate, Required: true, Check: feature.NotFutureDate("Birth date", 150, now)},
			{Name: "gender", Label: "Gender", Kind: feature.KindSelect, Required: true, Options: []feature.Option{
				{Value: "M", Label: genderLabels["M"]},
				{Value: "F", Label: genderLabels["F"]},
				{Value: "O", Label: genderLabels["O"]},
			}},
			{Name: "address", Label: "Address", Required: true, MaxLen: 30},
			{Name: "phone", Label: "Phone", Kind: feature.KindTel, Required: true, MaxLen: 10, Pattern: phonePattern, PatternHint: "must contain 1 to 10 digits"},
			{Name: "email", Label: "E-mail", Kind: feature.KindEmail},
			{Name: "emergencyName", Label: "Emergency contact", Required: true, MaxLen: 80},
			{Name: "emergencyRelationship", Label: "Relationship", MaxLen: 30},
			{Name: "emergencyPhone", Label: "Emergency phone", Kind: feature.KindTel, Required: true, MaxLen: 10, Pattern: phonePattern, PatternHint: "must contain 1 to 10 digits"},
			{Name: "insurer", Label: "Insurance company", Required: true},
			{Name: "policyNumber", Label: "Policy number", Required: true, Tag: "alphanum"},
			{Name: "policyActive", Label: "Policy active", Kind: feature.KindCheckbox},
			{Name: "policyExpiry", Label: "Policy expiry", Kind: feature.KindDate, RequiredWhen: "policyActive"},
		},
	}
}

// Build assembles the nested patient payload.
func Build(values url.Values) Patient {
	return Patient{
		IdentificationNumber: feature.Text(values, "identificationNumber"),
		FullName:             feature.Text(values, "fullName"),
		BirthDate:            feature.Text(values, "birthDate"),
		Gender:               feature.Text(values, "gender"),
		Address:              feature.Text(values, "address"),
		Phone:                feature.Text(values, "phone"),
		Email:                feature.Text(values, "email"),
		EmergencyContact: EmergencyContact{
			Name:         feature.Text(values, "emergencyName"),
			Relationship: feature.Text(values, "emergencyRelationship"),
			Phone:        feature.Text(values, "emergencyPhone"),
		},
		Insurance: Insurance{
			Company:      feature.Text(values, "insurer"),
			PolicyNumber: feature.Text(values, "policyNumber"),
			Active:       feature.Checked(values, "policyActive"),
			ExpiryDate:   feature.Text(values, "policyExpiry"),
		},
	}
}

// Prefill maps a patient to form values.
func Prefill(p Patient) url.Values {
	values := url.Values{
		"identificationNumber":  {p.IdentificationNumber},
		"fullName":              {p.FullName},
		"birthDate":             {p.BirthDate},
		"gender":                {p.Gender},
		"address":               {p.Address},
		"phone":                 {p.Phone},
		"email":                 {p.Email},
		"emergencyName":         {p.EmergencyContact.Name},
		"emergencyRelationship": {p.EmergencyContact.Relationship},
		"emergencyPhone":        {p.EmergencyContact.Phone},
		"insurer":               {p.Insurance.Company},
		"policyNumber":          {p.Insurance.PolicyNumber},
		"policyExpiry":          {p.Insurance.ExpiryDate},
	}
	if p.Insurance.Active {
		values.Set("policyActive", "on")
	}
	return values
}

// Age returns completed years at now, or -1 when the birth date is invalid.
func Age(birthDate string, now time.Time) int {
	born, err := time.Parse(feature.DateLayout, birthDate)
	if err != nil {
		return -1
	}
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years
}

// NewModule wires the patients module to the backend.
func NewModule(api *apiclient.Client, now func() time.Time) *feature.Module[Patient] {
	if now == nil {
		now = time.Now
	}
	age := func(p Patient) string {
		if n := Age(p.BirthDate, now()); n >= 0 {
			return strconv.Itoa(n)
		}
		return ""
	}
	return &feature.Module[Patient]{
		Name:        "patients",
		Title:       "Patients",
		Description: "Register patients and update their contact and insurance data.",
		Path:        "/patients",
		View:        shared.CapAccessPatientData,
		Manage:      shared.CapRegisterPatients,
		Columns: []feature.Column[Patient]{
			{Header: "Identification", Value: func(p Patient) string { return p.IdentificationNumber }},
			{Header: "Name", Value: func(p Patient) string { return p.FullName }},
			{Header: "Age", Value: age},
			{Header: "Gender", Value: func(p Patient) string { return genderLabels[p.Gender] }},
			{Header: "Phone", Value: func(p Patient) string { return p.Phone }},
			{Header: "Insurer", Value: func(p Patient) string { return p.Insurance.Company }},
			{Header: "Policy", Value: func(p Patient) string {
				if p.Insurance.Active {
					return "Active"
				}
				return "Inactive"
			}},
		},
		Key: func(p Patient) string { return p.IdentificationNumber },
		Match: func(p Patient, q string) bool {
			return feature.ContainsFold(q, p.IdentificationNumber, p.FullName, p.Phone, p.Insurance.Company)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, _ string) ([]Patient, error) {
			var out []Patient
			err := api.GetJSON(ctx, "/patients", creds, &out)
			return out, err
		},
		Schema: Schema(now),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, "/patients", creds, Build(values), nil)
		},
		Update: func(ctx context.Context, creds apiclient.Credentials, key string, values url.Values) error {
			p := Build(values)
			p.IdentificationNumber = key
			return api.PutJSON(ctx, apiclient.Path("/patients", key), creds, p, nil)
		},
		Prefill:     Prefill,
		EmptyText:   "No patients registered.",
		CreatedText: "Patient registered successfully.",
		UpdatedText: "Patient updated successfully.",
	}
}
