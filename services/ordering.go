// services/ordering.go
package services

import (
	"sort"

	"github.com/gewnthar/fundscout/models"
)

// SortByEndDate orders records by ascending end date. Records whose end date
// is a sentinel or unparsed text go last and keep their relative order.
func SortByEndDate(records []models.ProposalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, okI := records[i].EndTime()
		tj, okJ := records[j].EndTime()
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}
