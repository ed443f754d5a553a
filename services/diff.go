// services/diff.go
package services

import "github.com/gewnthar/fundscout/models"

// Diff returns the candidates whose identity key is absent from existing,
// in candidate order. A nil snapshot treats every candidate as new.
func Diff(candidates []models.ProposalRecord, existing *models.KeyedSet[string]) []models.ProposalRecord {
	fresh := make([]models.ProposalRecord, 0, len(candidates))
	for _, c := range candidates {
		if existing != nil && existing.Has(c.Key()) {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}
