package receipt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"pos/internal/domain"
)

func sample() Receipt {
	items := []domain.TicketItem{
		domain.NewTicketItem(domain.Product{ID: 1, Name: "ProductA", Price: decimal.RequireFromString("10.00")}, 2),
		domain.NewTicketItem(domain.Product{ID: 2, Name: "ProductB", Price: decimal.RequireFromString("3.50")}, 1),
	}
	return FromTicket(domain.Ticket{
		ID:              7,
		CustomerName:    "Alice",
		SalespersonName: "Bob",
		Items:           items,
		Total:           domain.SumItems(items),
	})
}

func TestRender_Contents(t *testing.T) {
	out, err := Render(sample())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := string(out)
	for _, want := range []string{
		"POS RECEIPT", "Alice", "Bob", "ProductA", "ProductB",
		"<td>10.00</td>", "<td>20.00</td>", "<td>3.50</td>", "23.50", "Thank you for your purchase",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("receipt missing %q:\n%s", want, doc)
		}
	}
	if n := strings.Count(doc, "<tr><td>"); n != 2 {
		t.Fatalf("expected 2 line items, got %d", n)
	}
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render(sample())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(sample())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("render is not deterministic")
	}
}

func TestRender_RoundsHalfUp(t *testing.T) {
	r := Receipt{
		Customer:    "C",
		Salesperson: "S",
		Lines:       []Line{{Name: "X", Quantity: 1, UnitPrice: decimal.RequireFromString("0.125"), LineTotal: decimal.RequireFromString("0.125")}},
		Total:       decimal.RequireFromString("0.125"),
	}
	out, err := Render(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "<strong>Total Price:</strong> 0.13") {
		t.Fatalf("expected half-up rounding to 0.13:\n%s", out)
	}
}

func TestRender_EscapesNames(t *testing.T) {
	r := sample()
	r.Customer = "<script>alert(1)</script>"
	out, err := Render(r)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatalf("customer name not escaped")
	}
}
