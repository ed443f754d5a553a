// scraper/agency.go
package scraper

import (
	"strings"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
)

// AgencyTable resolves a source URL to an agency code. Rules are tested in
// order and the first substring match wins.
type AgencyTable struct {
	rules []config.AgencyRule
}

func NewAgencyTable(rules []config.AgencyRule) *AgencyTable {
	return &AgencyTable{rules: rules}
}

// Lookup returns the agency code for sourceURL, or models.UnknownAgency.
func (a *AgencyTable) Lookup(sourceURL string) string {
	lower := strings.ToLower(sourceURL)
	for _, r := range a.rules {
		if r.Match != "" && strings.Contains(lower, strings.ToLower(r.Match)) {
			return r.Code
		}
	}
	return models.UnknownAgency
}
