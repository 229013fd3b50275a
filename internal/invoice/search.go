package invoice

import (
	"strings"

	"github.com/samber/lo"
)

// Filter keeps records whose buyer name, buyer GSTIN or ID contains term,
// ignoring case. A blank term matches everything.
func Filter(records []Record, term string) []Record {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return records
	}
	return lo.Filter(records, func(r Record, _ int) bool {
		return contains(r.Buyer.Name, needle) ||
			contains(r.Buyer.GSTIN, needle) ||
			contains(r.ID, needle)
	})
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}
