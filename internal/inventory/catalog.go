// Package inventory maintains the catalogs of medications, procedures and
// diagnostic aids that orders reference.
package inventory

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// Item is one catalog entry.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Cost        float64 `json:"cost"`
}

// Catalog describes one inventory resource.
type Catalog struct {
	Name     string
	Title    string
	Noun     string
	Path     string
	Endpoint string
}

// Catalogs served by the backend under /inventory.
var (
	Medications    = Catalog{Name: "medications", Title: "Medications", Noun: "medication", Path: "/inventory/medications", Endpoint: "/inventory/medications"}
	Procedures     = Catalog{Name: "procedures", Title: "Procedures", Noun: "procedure", Path: "/inventory/procedures", Endpoint: "/inventory/procedures"}
	DiagnosticAids = Catalog{Name: "diagnostic_aids", Title: "Diagnostic aids", Noun: "diagnostic aid", Path: "/inventory/diagnostic-aids", Endpoint: "/inventory/diagnostic-aids"}
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,20}$`)

// Schema is the catalog item form.
func Schema(noun string) *feature.Schema {
	return &feature.Schema{
		Title: noun,
		Fields: []feature.Field{
			{Name: "id", Label: "Code", Required: true, CreateOnly: true, Pattern: idPattern, PatternHint: "must contain letters, digits or dashes (max 20)"},
			{Name: "name", Label: "Name", Required: true, MaxLen: 100},
			{Name: "description", Label: "Description", Kind: feature.KindTextarea, MaxLen: 300},
			{Name: "cost", Label: "Cost", Kind: feature.KindNumber, Required: true, Step: "0.01", Check: feature.AtLeast("Cost", 0)},
		},
	}
}

// Build assembles the catalog payload.
func Build(values url.Values) Item {
	return Item{
		ID:          feature.Text(values, "id"),
		Name:        feature.Text(values, "name"),
		Description: feature.Text(values, "description"),
		Cost:        feature.Float(values, "cost"),
	}
}

// NewModule wires one catalog to the backend.
func NewModule(api *apiclient.Client, c Catalog) *feature.Module[Item] {
	return &feature.Module[Item]{
		Name:        c.Name,
		Title:       c.Title,
		Description: "Maintain the " + c.Noun + " catalog and its costs.",
		Path:        c.Path,
		View:        shared.CapManageInventory,
		Manage:      shared.CapManageInventory,
		Columns: []feature.Column[Item]{
			{Header: "Code", Value: func(i Item) string { return i.ID }},
			{Header: "Name", Value: func(i Item) string { return i.Name }},
			{Header: "Description", Value: func(i Item) string { return i.Description }},
			{Header: "Cost", Value: func(i Item) string { return strconv.FormatFloat(i.Cost, 'f', 2, 64) }},
		},
		Key: func(i Item) string { return i.ID },
		Match: func(i Item, q string) bool {
			return feature.ContainsFold(q, i.ID, i.Name, i.Description)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, _ string) ([]Item, error) {
			var out []Item
			err := api.GetJSON(ctx, c.Endpoint, creds, &out)
			return out, err
		},
		Schema: Schema(c.Noun),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, c.Endpoint, creds, Build(values), nil)
		},
		EmptyText:   "The " + c.Noun + " catalog is empty.",
		CreatedText: "Catalog item saved.",
	}
}

// NewModules returns the three catalog modules in menu order.
func NewModules(api *apiclient.Client) []*feature.Module[Item] {
	return []*feature.Module[Item]{
		NewModule(api, Medications),
		NewModule(api, Procedures),
		NewModule(api, DiagnosticAids),
	}
}
