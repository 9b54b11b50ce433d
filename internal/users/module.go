package users

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
)

var (
	identificationPattern = regexp.MustCompile(`^\d{1,10}$`)
	phonePattern          = regexp.MustCompile(`^\d{1,10}$`)
	upperPattern          = regexp.MustCompile(`[A-Z]`)
	digitPattern          = regexp.MustCompile(`\d`)
	specialPattern        = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// CheckPassword enforces the account password policy.
func CheckPassword(value string, _ url.Values) string {
	if len(value) < 8 || !upperPattern.MatchString(value) || !digitPattern.MatchString(value) || !specialPattern.MatchString(value) {
		return "Password must have at least 8 characters with one upper-case letter, one digit and one special character"
	}
	return ""
}

func roleOptions() []feature.Option {
	roles := rbac.Roles()
	out := make([]feature.Option, 0, len(roles))
	for _, r := range roles {
		out = append(out, feature.Option{Value: string(r), Label: r.Label()})
	}
	return out
}

// Schema is the account form.
func Schema(now func() time.Time) *feature.Schema {
	return &feature.Schema{
		Title: "user",
		Fields: []feature.Field{
			{Name: "fullName", Label: "Full name", Required: true, MaxLen: 80},
			{Name: "identificationNumber", Label: "Identification number", Required: true, MaxLen: 10, Pattern: identificationPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "email", Label: "E-mail", Kind: feature.KindEmail, Required: true},
			{Name: "phone", Label: "Phone", Kind: feature.KindTel, Required: true, MaxLen: 10, Pattern: phonePattern, PatternHint: "must contain 1 to 10 digits"},
			{Name: "birthDate", Label: "Birth date", Kind: feature.KindDate, Required: true, Check: feature.NotFutureDate("Birth date", 150, now)},
			{Name: "address", Label: "Address", Required: true, MaxLen: 30},
			{Name: "role", Label: "Role", Kind: feature.KindSelect, Required: true, Options: roleOptions()},
			{Name: "username", Label: "Username", Required: true, MaxLen: 15, Tag: "alphanum"},
			{Name: "password", Label: "Password", Kind: feature.KindPassword, Required: true, CreateOnly: true, Check: CheckPassword, Help: "Leave empty to keep the current password."},
		},
	}
}

// Build assembles the account payload.
func Build(values url.Values) Account {
	return Account{
		FullName:             feature.Text(values, "fullName"),
		IdentificationNumber: feature.Text(values, "identificationNumber"),
		Email:                feature.Text(values, "email"),
		Phone:                feature.Text(values, "phone"),
		BirthDate:            feature.Text(values, "birthDate"),
		Address:              feature.Text(values, "address"),
		Role:                 feature.Text(values, "role"),
		Username:             feature.Text(values, "username"),
		Password:             values.Get("password"),
	}
}

// Prefill maps an account to form values. The password is never echoed.
func Prefill(a Account) url.Values {
	return url.Values{
		"fullName":             {a.FullName},
		"identificationNumber": {a.IdentificationNumber},
		"email":                {a.Email},
		"phone":                {a.Phone},
		"birthDate":            {a.BirthDate},
		"address":              {a.Address},
		"role":                 {a.Role},
		"username":             {a.Username},
	}
}

// NewModule wires the users module to the backend.
func NewModule(api *apiclient.Client, now func() time.Time) *feature.Module[Account] {
	if now == nil {
		now = time.Now
	}
	return &feature.Module[Account]{
		Name:        "users",
		Title:       "Users",
		Description: "Create, update and deactivate staff accounts.",
		Path:        "/users",
		View:        shared.CapManageUsers,
		Manage:      shared.CapManageUsers,
		Columns: []feature.Column[Account]{
			{Header: "Name", Value: func(a Account) string { return a.FullName }},
			{Header: "Identification", Value: func(a Account) string { return a.IdentificationNumber }},
			{Header: "Username", Value: func(a Account) string { return a.Username }},
			{Header: "Role", Value: func(a Account) string { return rbac.ParseRole(a.Role).Label() }},
			{Header: "E-mail", Value: func(a Account) string { return a.Email }},
			{Header: "Phone", Value: func(a Account) string { return a.Phone }},
		},
		Key: func(a Account) string { return a.IdentificationNumber },
		Match: func(a Account, q string) bool {
			return feature.ContainsFold(q, a.FullName, a.IdentificationNumber, a.Username, a.Email, a.Role)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, _ string) ([]Account, error) {
			var out []Account
			err := api.GetJSON(ctx, "/users", creds, &out)
			return out, err
		},
		Schema: Schema(now),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, "/users", creds, Build(values), nil)
		},
		Update: func(ctx context.Context, creds apiclient.Credentials, key string, values url.Values) error {
			return api.PutJSON(ctx, apiclient.Path("/users", key), creds, Build(values), nil)
		},
		Remove: func(ctx context.Context, creds apiclient.Credentials, key string) error {
			return api.Delete(ctx, apiclient.Path("/users", key), creds)
		},
		Prefill:     Prefill,
		EmptyText:   "No users found.",
		CreatedText: "User created successfully.",
		UpdatedText: "User updated successfully.",
		RemovedText: "User deleted.",
	}
}
