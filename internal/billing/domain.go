// Package billing shows the invoice generated for a medical order.
package billing

// Bill is the backend invoice of one order.
type Bill struct {
	OrderNumber      string  `json:"orderNumber"`
	PatientID        string  `json:"patientId"`
	PatientName      string  `json:"patientName"`
	PatientAge       int     `json:"patientAge,omitempty"`
	DoctorName       string  `json:"doctorName,omitempty"`
	Insurer          string  `json:"insurer,omitempty"`
	PolicyNumber     string  `json:"policyNumber,omitempty"`
	PolicyActive     bool    `json:"policyActive"`
	PolicyExpiry     string  `json:"policyExpiry,omitempty"`
	Items            []Line  `json:"items"`
	Copay            float64 `json:"copay"`
	InsuranceCovered float64 `json:"insuranceCovered"`
	Total            float64 `json:"total"`
}

// Line is one billed item.
type Line struct {
	Kind        string  `json:"kind"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unitCost"`
	Amount      float64 `json:"amount"`
}

// Summary line kinds appended after the billed items.
const (
	KindCopay     = "copay"
	KindInsurance = "insurance"
	KindTotal     = "total"
)

// Subtotal sums the billed items.
func (b Bill) Subtotal() float64 {
	var sum float64
	for _, l := range b.Items {
		sum += l.Amount
	}
	return sum
}

// Lines returns the table rows: the billed items followed by copay,
// insurance coverage and total.
func (b Bill) Lines() []Line {
	out := make([]Line, 0, len(b.Items)+3)
	out = append(out, b.Items...)
	out = append(out,
		Line{Kind: KindCopay, Description: "Patient copay", Amount: b.Copay},
		Line{Kind: KindInsurance, Description: insurerText(b), Amount: b.InsuranceCovered},
		Line{Kind: KindTotal, Description: "Total for " + b.PatientName, Amount: b.Total},
	)
	return out
}

func insurerText(b Bill) string {
	if b.Insurer == "" {
		return "Not insured"
	}
	if !b.PolicyActive {
		return b.Insurer + " (policy inactive)"
	}
	return b.Insurer + " covered"
}
