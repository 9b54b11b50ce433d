package nursing

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

var (
	patientIDPattern     = regexp.MustCompile(`^\d{1,10}$`)
	bloodPressurePattern = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)
	orderNumberPattern   = regexp.MustCompile(`^\d{1,6}$`)
)

// Vital sign bounds, inclusive.
var (
	TemperatureRange      = feature.Range{Min: 30, Max: 45, Unit: "°C"}
	HeartRateRange        = feature.Range{Min: 30, Max: 250, Unit: "bpm"}
	RespiratoryRateRange  = feature.Range{Min: 5, Max: 60, Unit: "breaths/min"}
	OxygenSaturationRange = feature.Range{Min: 50, Max: 100, Unit: "%"}
	WeightRange           = feature.Range{Min: 0.5, Max: 500, Unit: "kg"}
)

func patientLookup() *feature.Lookup {
	return &feature.Lookup{
		Param:       "patientId",
		Label:       "Patient ID",
		Placeholder: "Identification number",
		Pattern:     patientIDPattern,
		Hint:        "must contain digits only (max 10)",
	}
}

// VitalsSchema is the vital signs form.
func VitalsSchema() *feature.Schema {
	return &feature.Schema{
		Title: "vital signs",
		Fields: []feature.Field{
			{Name: "patientId", Label: "Patient ID", Required: true, MaxLen: 10, Pattern: patientIDPattern, PatternHint: "must contain digits only (max 10)"},
			{Name: "bloodPressure", Label: "Blood pressure", Required: true, Pattern: bloodPressurePattern, PatternHint: "must look like 120/80", Placeholder: "120/80"},
			{Name: "temperature", Label: "Temperature", Kind: feature.KindNumber, Required: true, Range: rangeOf(TemperatureRange), Step: "0.1"},
			{Name: "heartRate", Label: "Heart rate", Kind: feature.KindNumber, Integer: true, Required: true, Range: rangeOf(HeartRateRange), Step: "1"},
			{Name: "respiratoryRate", Label: "Respiratory rate", Kind: feature.KindNumber, Integer: true, Required: true, Range: rangeOf(RespiratoryRateRange), Step: "1"},
			{Name: "oxygenSaturation", Label: "Oxygen saturation", Kind: feature.KindNumber, Required: true, Range: rangeOf(OxygenSaturationRange), Step: "0.1"},
			{Name: "weight", Label: "Weight", Kind: feature.KindNumber, Range: rangeOf(WeightRange), Step: "0.1"},
			{Name: "observations", Label: "Observations", Kind: feature.KindTextarea, MaxLen: 500},
		},
	}
}

func rangeOf(r feature.Range) *feature.Range {
	return &r
}

// BuildVitals assembles the vital signs payload.
func BuildVitals(values url.Values, nurseID string) VitalSigns {
	return VitalSigns{
		PatientID:        feature.Text(values, "patientId"),
		NurseID:          nurseID,
		BloodPressure:    feature.Text(values, "bloodPressure"),
		Temperature:      feature.Float(values, "temperature"),
		HeartRate:        feature.Int(values, "heartRate"),
		RespiratoryRate:  feature.Int(values, "respiratoryRate"),
		OxygenSaturation: feature.Float(values, "oxygenSaturation"),
		Weight:           feature.Float(values, "weight"),
		Observations:     feature.Text(values, "observations"),
	}
}

func number(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewVitalsModule wires the vital signs module.
func NewVitalsModule(api *apiclient.Client) *feature.Module[VitalSigns] {
	return &feature.Module[VitalSigns]{
		Name:        "vitals",
		Title:       "Vital signs",
		Description: "Record and review patient vital signs.",
		Path:        "/nursing/vitals",
		View:        shared.CapRecordVitalSigns,
		Manage:      shared.CapRecordVitalSigns,
		Lookup:      patientLookup(),
		Columns: []feature.Column[VitalSigns]{
			{Header: "Recorded", Value: func(v VitalSigns) string { return v.RecordedAt }},
			{Header: "Blood pressure", Value: func(v VitalSigns) string { return v.BloodPressure }},
			{Header: "Temperature (°C)", Value: func(v VitalSigns) string { return number(v.Temperature) }},
			{Header: "Heart rate (bpm)", Value: func(v VitalSigns) string { return strconv.Itoa(v.HeartRate) }},
			{Header: "Respiratory rate", Value: func(v VitalSigns) string { return strconv.Itoa(v.RespiratoryRate) }},
			{Header: "SpO2 (%)", Value: func(v VitalSigns) string { return number(v.OxygenSaturation) }},
			{Header: "Weight (kg)", Value: func(v VitalSigns) string { return number(v.Weight) }},
			{Header: "Nurse", Value: func(v VitalSigns) string { return v.NurseID }},
			{Header: "Observations", Value: func(v VitalSigns) string { return v.Observations }},
		},
		Match: func(v VitalSigns, q string) bool {
			return feature.ContainsFold(q, v.RecordedAt, v.BloodPressure, v.NurseID, v.Observations)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, patientID string) ([]VitalSigns, error) {
			var chart Chart
			if err := api.GetJSON(ctx, apiclient.Path("/nurse/patients", patientID), creds, &chart); err != nil {
				return nil, err
			}
			return chart.VitalSigns, nil
		},
		Schema: VitalsSchema(),
		Create: func(ctx context.Context, creds apiclient.Credentials, values url.Values) error {
			return api.PostJSON(ctx, "/nurse/vital-signs", creds, BuildVitals(values, creds.UserID), nil)
		},
		Defaults: func(patientID string) url.Values {
			return url.Values{"patientId": {patientID}}
		},
		EmptyText:   "No vital signs recorded for this patient.",
		CreatedText: "Vital signs recorded successfully.",
	}
}
