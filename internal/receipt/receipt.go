// Package receipt renders completed tickets as self-contained HTML documents.
package receipt

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"pos/internal/domain"
)

const (
	Filename    = "receipt.html"
	ContentType = "text/html; charset=utf-8"
)

// Line одна строка чека
type Line struct {
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Receipt входные данные для печати
type Receipt struct {
	TicketID    int64
	Customer    string
	Salesperson string
	Lines       []Line
	Total       decimal.Decimal
}

// FromTicket maps a stored ticket onto receipt input.
func FromTicket(t domain.Ticket) Receipt {
	r := Receipt{
		TicketID:    t.ID,
		Customer:    t.CustomerName,
		Salesperson: t.SalespersonName,
		Lines:       make([]Line, 0, len(t.Items)),
		Total:       t.Total,
	}
	for _, it := range t.Items {
		r.Lines = append(r.Lines, Line{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return r
}

var page = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": money,
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Receipt</title><style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { padding: 8px; border: 1px solid #ddd; text-align: left; }
th { background-color: #f2f2f2; }
</style></head><body>
<h1>------ POS RECEIPT ------</h1>
{{- if .TicketID}}
<p><strong>Ticket:</strong> #{{.TicketID}}</p>
{{- end}}
<p><strong>Customer:</strong> {{.Customer}}</p>
<p><strong>Salesperson:</strong> {{.Salesperson}}</p>
<h3>Items Purchased:</h3>
<table><tr><th>Item</th><th>Quantity</th><th>Price</th><th>Total</th></tr>
{{- range .Lines}}
<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice}}</td><td>{{money .LineTotal}}</td></tr>
{{- end}}
</table>
<p><strong>Total Price:</strong> {{money .Total}}</p>
<hr><p style="text-align:center;">------ Thank you for your purchase! ------</p>
</body></html>
`))

// money rounds half-up to cents.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

// Render is pure: the same receipt always yields the same bytes.
func Render(r Receipt) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
