package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInventory() Inventory {
	return NewInventory([]Product{
		{ID: "A", Name: "E-Rickshaw Deluxe", UnitPrice: d("1000"), Stock: 4},
		{ID: "B", Name: "Battery Pack", UnitPrice: d("249.99"), Stock: 10},
	})
}

func TestComputeTotals(t *testing.T) {
	inv := sampleInventory()
	tests := []struct {
		name     string
		items    []LineItem
		charges  Surcharges
		subtotal string
		tax      string
		grand    string
	}{
		{
			name:     "unresolved line is skipped",
			items:    []LineItem{{ProductID: "A", Quantity: 2}, {ProductID: "missing", Quantity: 1}},
			charges:  Surcharges{Hypothecation: d("50"), Registration: d("30")},
			subtotal: "2000", tax: "240", grand: "2320",
		},
		{
			name:     "empty list with zero surcharges",
			subtotal: "0", tax: "0", grand: "0",
		},
		{
			name:     "fractional price keeps full precision",
			items:    []LineItem{{ProductID: "B", Quantity: 3}},
			subtotal: "749.97", tax: "89.9964", grand: "839.9664",
		},
		{
			name:     "surcharges only",
			items:    []LineItem{{ProductID: "nope", Quantity: 5}},
			charges:  Surcharges{Hypothecation: d("12.5"), Registration: d("7.25")},
			subtotal: "0", tax: "0", grand: "19.75",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, inv, tt.charges)
			assert.True(t, got.Subtotal.Equal(d(tt.subtotal)), "subtotal = %s, want %s", got.Subtotal, tt.subtotal)
			assert.True(t, got.Tax.Equal(d(tt.tax)), "tax = %s, want %s", got.Tax, tt.tax)
			assert.True(t, got.GrandTotal.Equal(d(tt.grand)), "grand = %s, want %s", got.GrandTotal, tt.grand)
		})
	}
}

func TestComputeTotals_Properties(t *testing.T) {
	inv := sampleInventory()
	items := []LineItem{{ProductID: "A", Quantity: 1}, {ProductID: "B", Quantity: 7}}
	charges := Surcharges{Hypothecation: d("100"), Registration: d("0.5")}

	got := ComputeTotals(items, inv, charges)

	want := d("1000").Add(d("249.99").Mul(decimal.NewFromInt(7)))
	assert.True(t, got.Subtotal.Equal(want))
	assert.True(t, got.Tax.Equal(got.Subtotal.Mul(GSTRate)))
	assert.True(t, got.GrandTotal.Equal(got.Subtotal.Add(got.Tax).Add(d("100")).Add(d("0.5"))))
	assert.True(t, got.CGST().Equal(got.SGST()))
	assert.True(t, got.CGST().Add(got.SGST()).Equal(got.Tax))

	again := ComputeTotals(items, inv, charges)
	assert.Equal(t, got, again)
}

func TestComputeTotals_UnresolvedDoesNotChangeGrandTotal(t *testing.T) {
	inv := sampleInventory()
	charges := Surcharges{Hypothecation: d("50"), Registration: d("30")}
	base := []LineItem{{ProductID: "A", Quantity: 2}}
	withGap := append([]LineItem{{ProductID: "ghost", Quantity: 9}}, base...)

	a := ComputeTotals(base, inv, charges)
	b := ComputeTotals(withGap, inv, charges)
	assert.True(t, a.GrandTotal.Equal(b.GrandTotal))
	assert.True(t, a.Subtotal.Equal(b.Subtotal))
}

func TestDraftFreeze(t *testing.T) {
	draft := Draft{
		Items:   []LineItem{{ProductID: "A", Quantity: 2}},
		Buyer:   Party{Name: "Ravi Kumar"},
		Charges: Surcharges{Hypothecation: d("50"), Registration: d("30")},
	}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := draft.Freeze(7, sampleInventory(), now)

	require.Len(t, rec.Items, 1)
	assert.Equal(t, uint(7), rec.OwnerID)
	assert.Equal(t, now, rec.CreatedAt)
	assert.True(t, rec.Totals.GrandTotal.Equal(d("2320")))

	// The record owns its items.
	draft.Items[0].Quantity = 99
	assert.Equal(t, 2, rec.Items[0].Quantity)
}

func TestDraftValidate(t *testing.T) {
	draft := Draft{
		Items:   []LineItem{{ProductID: "A", Quantity: 1}, {ProductID: "B", Quantity: 0}},
		Charges: Surcharges{Hypothecation: d("-1")},
	}
	v := draft.Validate()
	assert.Equal(t, "out_of_range", v["items[1].quantity"])
	assert.Equal(t, "must_not_be_negative", v["charges.hypothecation"])
	assert.NotContains(t, v, "items[0].quantity")
	assert.NotContains(t, v, "charges.rto")

	draft.Charges = Surcharges{Hypothecation: d("1e300000000"), Registration: d("-1e300000000")}
	v = draft.Validate()
	assert.Equal(t, "out_of_range", v["charges.hypothecation"])
	assert.Equal(t, "out_of_range", v["charges.rto"])
}
