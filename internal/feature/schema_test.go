package feature

import (
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSchema() *Schema {
	return &Schema{
		Title:    "Order",
		Selector: "type",
		Fields: []Field{
			{Name: "type", Label: "Order type", Kind: KindSelect, Required: true, Options: []Option{{"medication", "Medication"}, {"procedure", "Procedure"}}},
			{Name: "patientId", Label: "Patient ID", Required: true, Tag: "numeric", MaxLen: 10},
			{Name: "dose", Label: "Dose", Required: true, Section: "medication"},
			{Name: "times", Label: "Times", Kind: KindNumber, Required: true, Section: "procedure", Range: &Range{Min: 1, Max: 99}},
			{Name: "withSpecialist", Label: "Requires specialist", Kind: KindCheckbox, Section: "procedure"},
			{Name: "specialistId", Label: "Specialist ID", Section: "procedure", RequiredWhen: "withSpecialist"},
			{Name: "email", Label: "Email", Kind: KindEmail},
			{Name: "password", Label: "Password", Kind: KindPassword, Required: true, CreateOnly: true, MinLen: 8},
			{Name: "code", Label: "Code", Pattern: regexp.MustCompile(`^[A-Z]{3}$`), PatternHint: "must be three capital letters"},
		},
	}
}

func TestSchemaValidatesActiveSectionOnly(t *testing.T) {
	values := url.Values{"type": {"medication"}, "patientId": {"123"}, "password": {"Secret1!x"}}
	msgs := testSchema().Validate(values, ModeCreate)
	assert.Equal(t, []string{"Dose is required"}, msgs)

	values.Set("type", "procedure")
	msgs = testSchema().Validate(values, ModeCreate)
	assert.Equal(t, []string{"Times is required"}, msgs)
}

func TestSchemaRequiredWhen(t *testing.T) {
	values := url.Values{"type": {"procedure"}, "patientId": {"1"}, "times": {"2"}, "withSpecialist": {"on"}, "password": {"12345678"}}
	assert.Equal(t, []string{"Specialist ID is required"}, testSchema().Validate(values, ModeCreate))
	values.Set("specialistId", "55")
	assert.Empty(t, testSchema().Validate(values, ModeCreate))
}

func TestSchemaRulesMessages(t *testing.T) {
	values := url.Values{
		"type":      {"other"},
		"patientId": {"12ab"},
		"email":     {"not-an-email"},
		"password":  {"short"},
		"code":      {"abc"},
	}
	msgs := testSchema().Validate(values, ModeCreate)
	assert.Equal(t, []string{
		"Order type must be one of the listed options",
		"Patient ID must contain digits only",
		"Email must be a valid email address",
		"Password must be at least 8 characters",
		"Code must be three capital letters",
	}, msgs)
}

func TestSchemaMaxLenAndNumber(t *testing.T) {
	values := url.Values{"type": {"procedure"}, "patientId": {"12345678901"}, "times": {"abc"}, "password": {"12345678"}}
	msgs := testSchema().Validate(values, ModeCreate)
	assert.Equal(t, []string{"Patient ID must be at most 10 characters", "Times must be a number"}, msgs)

	values.Set("patientId", "1")
	values.Set("times", "100")
	assert.Equal(t, []string{"Times must be between 1 and 99"}, testSchema().Validate(values, ModeCreate))
}

func TestSchemaCreateOnlyRelaxedOnEdit(t *testing.T) {
	values := url.Values{"type": {"medication"}, "patientId": {"1"}, "dose": {"5mg"}}
	assert.Equal(t, []string{"Password is required"}, testSchema().Validate(values, ModeCreate))
	assert.Empty(t, testSchema().Validate(values, ModeEdit))
}

func TestRangeBoundsAreInclusive(t *testing.T) {
	schema := &Schema{Fields: []Field{{Name: "weight", Label: "Weight", Kind: KindNumber, Range: &Range{Min: 0.5, Max: 500, Unit: "kg"}}}}
	assert.Empty(t, schema.Validate(url.Values{"weight": {"0.5"}}, ModeCreate))
	assert.Empty(t, schema.Validate(url.Values{"weight": {"500"}}, ModeCreate))
	assert.Equal(t, []string{"Weight must be between 0.5 and 500 kg"}, schema.Validate(url.Values{"weight": {"0.4"}}, ModeCreate))
}

func TestIntegerFieldRejectsFractions(t *testing.T) {
	schema := &Schema{Fields: []Field{{Name: "times", Label: "Times", Kind: KindNumber, Integer: true, Range: &Range{Min: 1, Max: 99}}}}
	assert.Empty(t, schema.Validate(url.Values{"times": {"3"}}, ModeCreate))
	assert.Equal(t, []string{"Times must be a whole number"}, schema.Validate(url.Values{"times": {"2.5"}}, ModeCreate))
	assert.Equal(t, []string{"Times must be a number"}, schema.Validate(url.Values{"times": {"two"}}, ModeCreate))
}

func TestNotFutureDate(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	check := NotFutureDate("Birth date", 150, now)
	assert.Empty(t, check("1990-05-04", nil))
	assert.Equal(t, "Birth date cannot be in the future", check("2024-06-02", nil))
	assert.Equal(t, "Birth date cannot be more than 150 years ago", check("1870-01-01", nil))
}

func TestAtLeast(t *testing.T) {
	check := AtLeast("Quantity", 1)
	assert.Empty(t, check("1", nil))
	assert.Empty(t, check("12", nil))
	assert.Equal(t, "Quantity must be at least 1", check("0", nil))
	assert.Equal(t, "Quantity must be at least 1", check("x", nil))
}

func TestValueHelpers(t *testing.T) {
	values := url.Values{"n": {" 36.6 "}, "i": {"7"}, "c": {"on"}, "t": {"  x "}}
	assert.InDelta(t, 36.6, Float(values, "n"), 0.0001)
	assert.Equal(t, 7, Int(values, "i"))
	assert.True(t, Checked(values, "c"))
	assert.False(t, Checked(values, "missing"))
	assert.Equal(t, "x", Text(values, "t"))
}

func TestBuildFormMarksSelectionAndSelector(t *testing.T) {
	form := buildForm(testSchema(), url.Values{"type": {"procedure"}, "withSpecialist": {"on"}, "password": {"secret"}}, ModeEdit)
	assert.True(t, form.Edit)
	assert.Equal(t, "type", form.Selector)
	assert.True(t, form.Fields[0].IsSelector)
	assert.True(t, form.Fields[0].Options[1].Selected)
	assert.True(t, form.Fields[4].Checked)
	assert.Empty(t, form.Fields[7].Value, "passwords are never echoed")
	assert.False(t, form.Fields[7].Required)
	assert.Equal(t, "1", form.Fields[3].Min)
}
