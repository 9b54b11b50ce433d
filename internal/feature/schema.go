package feature

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind selects the input widget and parsing rules of a field.
type Kind string

// Field kinds.
const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindEmail    Kind = "email"
	KindTel      Kind = "tel"
	KindPassword Kind = "password"
	KindSelect   Kind = "select"
	KindTextarea Kind = "textarea"
	KindCheckbox Kind = "checkbox"
)

// DateLayout is the wire and input format for dates.
const DateLayout = "2006-01-02"

// Mode distinguishes create from edit validation.
type Mode int

// Form modes.
const (
	ModeCreate Mode = iota
	ModeEdit
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Range is an inclusive numeric bound.
type Range struct {
	Min  float64
	Max  float64
	Unit string
}

// Field declares one form input and its rules.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Required    bool
	CreateOnly  bool
	Range       *Range
	Integer     bool
	Step        string
	MinLen      int
	MaxLen      int
	Pattern     *regexp.Regexp
	PatternHint string
	// Tag is a go-playground/validator tag applied to non-empty values.
	Tag     string
	Options []Option
	// Section limits the field to one value of the schema selector.
	Section string
	// RequiredWhen names a checkbox that makes the field required when ticked.
	RequiredWhen string
	Placeholder  string
	Help         string
	// Check returns a message when value is invalid.
	Check func(value string, values url.Values) string
}

// Section is a type-dependent group of fields.
type Section struct {
	Value string
	Label string
}

// Schema describes a module form.
type Schema struct {
	Title    string
	Selector string
	Sections []Section
	Fields   []Field
}

var validate = validator.New()

// Validate returns human messages for every rule values break. Fields of
// inactive sections are skipped. An empty result means valid.
func (s *Schema) Validate(values url.Values, mode Mode) []string {
	if s == nil {
		return nil
	}
	active := strings.TrimSpace(values.Get(s.Selector))
	var msgs []string
	for _, f := range s.Fields {
		if f.Section != "" && f.Section != active {
			continue
		}
		if msg := f.validate(values, mode); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// ActiveSection returns the selector value in values.
func (s *Schema) ActiveSection(values url.Values) string {
	if s == nil || s.Selector == "" {
		return ""
	}
	return strings.TrimSpace(values.Get(s.Selector))
}

func (f Field) validate(values url.Values, mode Mode) string {
	value := strings.TrimSpace(values.Get(f.Name))
	if f.Kind == KindCheckbox {
		return ""
	}
	required := f.Required
	if f.CreateOnly && mode == ModeEdit {
		required = false
	}
	if f.RequiredWhen != "" && Checked(values, f.RequiredWhen) {
		required = true
	}
	if value == "" {
		if required {
			return f.Label + " is required"
		}
		return ""
	}

	switch f.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return f.Label + " must be a number"
		}
		if _, err := strconv.Atoi(value); f.Integer && err != nil {
			return f.Label + " must be a whole number"
		}
		if f.Range != nil {
			bounds := fmt.Sprintf("gte=%s,lte=%s", formatNumber(f.Range.Min), formatNumber(f.Range.Max))
			if err := validate.Var(n, bounds); err != nil {
				return f.rangeMessage()
			}
		}
	case KindDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return f.Label + " must be a valid date"
		}
	case KindEmail:
		if err := validate.Var(value, "email"); err != nil {
			return f.Label + " must be a valid email address"
		}
	case KindSelect:
		if len(f.Options) > 0 && !f.hasOption(value) {
			return f.Label + " must be one of the listed options"
		}
	}

	length := len([]rune(value))
	if f.MinLen > 0 && length < f.MinLen {
		return fmt.Sprintf("%s must be at least %d characters", f.Label, f.MinLen)
	}
	if f.MaxLen > 0 && length > f.MaxLen {
		return fmt.Sprintf("%s must be at most %d characters", f.Label, f.MaxLen)
	}
	if f.Tag != "" {
		if err := validate.Var(value, f.Tag); err != nil {
			return tagMessage(f, err)
		}
	}
	if f.Pattern != nil && !f.Pattern.MatchString(value) {
		if f.PatternHint != "" {
			return f.Label + " " + f.PatternHint
		}
		return f.Label + " has an invalid format"
	}
	if f.Check != nil {
		return f.Check(value, values)
	}
	return ""
}

func (f Field) rangeMessage() string {
	msg := fmt.Sprintf("%s must be between %s and %s", f.Label, formatNumber(f.Range.Min), formatNumber(f.Range.Max))
	if f.Range.Unit != "" {
		msg += " " + f.Range.Unit
	}
	return msg
}

func (f Field) hasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func tagMessage(f Field, err error) string {
	var fieldErr validator.FieldError
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fieldErr = errs[0]
	}
	if fieldErr == nil {
		return f.Label + " is invalid"
	}
	switch fieldErr.Tag() {
	case "numeric", "number":
		return f.Label + " must contain digits only"
	case "alphanum":
		return f.Label + " must contain letters and digits only"
	case "email":
		return f.Label + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", f.Label, fieldErr.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", f.Label, fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", f.Label, fieldErr.Tag())
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Checked reports whether a checkbox field was ticked.
func Checked(values url.Values, name string) bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(name))) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Float parses a numeric form value; empty or invalid values yield 0.
func Float(values url.Values, name string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimSpace(values.Get(name)), 64)
	return n
}

// Int parses an integer form value; empty or invalid values yield 0.
func Int(values url.Values, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(values.Get(name)))
	return n
}

// Text returns the trimmed value of a form field.
func Text(values url.Values, name string) string {
	return strings.TrimSpace(values.Get(name))
}

// NotFutureDate rejects dates after today and ages above maxYears.
func NotFutureDate(label string, maxYears int, now func() time.Time) func(string, url.Values) string {
	return func(value string, _ url.Values) string {
		date, err := time.Parse(DateLayout, value)
		if err != nil {
			return label + " must be a valid date"
		}
		today := now()
		if date.After(today) {
			return label + " cannot be in the future"
		}
		if maxYears > 0 && date.Before(today.AddDate(-maxYears, 0, 0)) {
			return fmt.Sprintf("%s cannot be more than %d years ago", label, maxYears)
		}
		return ""
	}
}

// AtLeast rejects numbers below min.
func AtLeast(label string, min float64) func(string, url.Values) string {
	return func(value string, _ url.Values) string {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < min {
			return fmt.Sprintf("%s must be at least %s", label, formatNumber(min))
		}
		return ""
	}
}
