package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	records := []Record{
		{ID: "3f2a-aa01", Buyer: Party{Name: "Ravi Kumar", GSTIN: "09ABCDE1234F1Z5"}},
		{ID: "77bc-bb02", Buyer: Party{Name: "Sita Devi", GSTIN: ""}},
		{ID: "91de-cc03", Buyer: Party{Name: "Mohan Lal", GSTIN: "07XYZAB9876K1Z2"}},
	}
	ids := func(rs []Record) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"3f2a-aa01", "77bc-bb02", "91de-cc03"}},
		{"   ", []string{"3f2a-aa01", "77bc-bb02", "91de-cc03"}},
		{"ravi", []string{"3f2a-aa01"}},
		{"DEVI", []string{"77bc-bb02"}},
		{"09abcde", []string{"3f2a-aa01"}},
		{"BB02", []string{"77bc-bb02"}},
		{"l", []string{"91de-cc03"}},
		{"nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(records, tt.term)))
		})
	}
}
