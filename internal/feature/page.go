package feature

import (
	"net/url"
	"time"
)

// ListPage is the template model of pages/module.html.
type ListPage struct {
	Module    Entry
	Denied    string
	ErrorText string
	State     string
	Lookup    *LookupView
	Query     string
	Columns   []string
	Rows      []RowView
	Total     int
	Shown     int
	EmptyText string
	CanManage bool
	CanEdit   bool
	CanDelete bool
	NewURL    string
	ExportURL string
	PrintURL  string
	FilterURL string
	LoadedAt  time.Time
	Form      *FormView
}

// LookupView renders the scope prompt.
type LookupView struct {
	Param       string
	Label       string
	Placeholder string
	Value       string
}

// RowView is one table row.
type RowView struct {
	Key       string
	Cells     []string
	EditURL   string
	DeleteURL string
}

// FormView is the modal form.
type FormView struct {
	Title     string
	Action    string
	Token     string
	Edit      bool
	CancelURL string
	Errors    []string
	Selector  string
	Fields    []FieldView
}

// FieldView is one rendered input.
type FieldView struct {
	Name        string
	Label       string
	Kind        string
	Value       string
	Placeholder string
	Help        string
	Section     string
	Min         string
	Max         string
	Step        string
	MaxLen      int
	Required    bool
	Checked     bool
	IsSelector  bool
	Options     []OptionView
}

// OptionView is one select choice.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

func buildForm(schema *Schema, values url.Values, mode Mode) *FormView {
	form := &FormView{Title: schema.Title, Selector: schema.Selector, Edit: mode == ModeEdit}
	for _, f := range schema.Fields {
		fv := FieldView{
			Name:        f.Name,
			Label:       f.Label,
			Kind:        string(f.Kind),
			Value:       values.Get(f.Name),
			Placeholder: f.Placeholder,
			Help:        f.Help,
			Section:     f.Section,
			Step:        f.Step,
			MaxLen:      f.MaxLen,
			Required:    f.Required && !(f.CreateOnly && mode == ModeEdit),
			IsSelector:  f.Name == schema.Selector,
		}
		if fv.Kind == "" {
			fv.Kind = string(KindText)
		}
		if f.Kind == KindCheckbox {
			fv.Checked = Checked(values, f.Name)
		}
		if f.Range != nil {
			fv.Min = formatNumber(f.Range.Min)
			fv.Max = formatNumber(f.Range.Max)
		}
		if f.Kind == KindPassword {
			fv.Value = ""
		}
		for _, o := range f.Options {
			fv.Options = append(fv.Options, OptionView{Value: o.Value, Label: o.Label, Selected: o.Value == fv.Value})
		}
		form.Fields = append(form.Fields, fv)
	}
	return form
}
