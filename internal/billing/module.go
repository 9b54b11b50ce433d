package billing

import (
	"context"
	"regexp"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/shared"
)

var orderNumberPattern = regexp.MustCompile(`^\d{1,6}$`)

var kindLabels = map[string]string{
	"medication":  "Medication",
	"procedure":   "Procedure",
	"diagnostic":  "Diagnostic aid",
	KindCopay:     "Copay",
	KindInsurance: "Insurance",
	KindTotal:     "Total",
}

// Money formats an amount with thousands separators and two decimals.
type Money struct {
	printer *message.Printer
}

// NewMoney returns a formatter for tag.
func NewMoney(tag language.Tag) Money {
	return Money{printer: message.NewPrinter(tag)}
}

// Format renders v as currency.
func (m Money) Format(v float64) string {
	if v < 0 {
		return m.printer.Sprintf("-$%.2f", -v)
	}
	return m.printer.Sprintf("$%.2f", v)
}

func kindLabel(kind string) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return kind
}

// NewModule wires the billing lookup. Bills are generated by the backend;
// the portal only reads them.
func NewModule(api *apiclient.Client, money Money) *feature.Module[Line] {
	if money.printer == nil {
		money = NewMoney(language.AmericanEnglish)
	}
	quantity := func(l Line) string {
		if l.Quantity == 0 {
			return ""
		}
		return strconv.Itoa(l.Quantity)
	}
	unit := func(l Line) string {
		if l.UnitCost == 0 {
			return ""
		}
		return money.Format(l.UnitCost)
	}
	return &feature.Module[Line]{
		Name:        "billing",
		Title:       "Billing",
		Description: "Look up the invoice of an order.",
		Path:        "/billing",
		View:        shared.CapGenerateBilling,
		Lookup: &feature.Lookup{
			Param:       "orderNumber",
			Label:       "Order number",
			Placeholder: "1 to 6 digits",
			Pattern:     orderNumberPattern,
			Hint:        "must contain 1 to 6 digits",
		},
		Columns: []feature.Column[Line]{
			{Header: "Type", Value: func(l Line) string { return kindLabel(l.Kind) }},
			{Header: "Code", Value: func(l Line) string { return l.Code }},
			{Header: "Description", Value: func(l Line) string { return l.Description }},
			{Header: "Quantity", Value: quantity},
			{Header: "Unit cost", Value: unit},
			{Header: "Amount", Value: func(l Line) string { return money.Format(l.Amount) }},
		},
		Match: func(l Line, q string) bool {
			return feature.ContainsFold(q, kindLabel(l.Kind), l.Code, l.Description)
		},
		Fetch: func(ctx context.Context, creds apiclient.Credentials, orderNumber string) ([]Line, error) {
			var bill Bill
			if err := api.GetJSON(ctx, apiclient.Path("/billing/order", orderNumber), creds, &bill); err != nil {
				return nil, err
			}
			return bill.Lines(), nil
		},
		EmptyText: "No invoice found for this order.",
	}
}
