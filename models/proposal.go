// models/proposal.go
package models

import (
	"strings"
	"time"
)

// Sentinel values stored in place of a canonical date or a missing field.
const (
	NotSpecified       = "Not specified"
	RollingDeadline    = "Rolling Deadline"
	UnknownAgency      = "Unknown Agency"
	Untitled           = "Untitled"
	LinkNotAvailable   = "Link Not Available"
	CanonicalDateStyle = "2006-01-02"
)

// ProposalRecord is one funding call observed on a source page.
// Identity is the (Title, Link) pair, see IdentityKey.
type ProposalRecord struct {
	Title       string    `db:"title" json:"title" csv:"title"`
	Agency      string    `db:"agency" json:"agency" csv:"agency"`
	StartDate   string    `db:"from_date" json:"from_date" csv:"from_date"`
	EndDate     string    `db:"deadline" json:"deadline" csv:"deadline"`
	Link        string    `db:"link" json:"link" csv:"link"`
	ExtractedAt time.Time `db:"-" json:"extracted_at,omitempty" csv:"extracted_at"`
	Source      string    `db:"-" json:"source,omitempty" csv:"source"`
}

// StoredProposal is a ProposalRecord as read back from the proposals table.
type StoredProposal struct {
	Title     string    `db:"title" json:"title" csv:"title"`
	Agency    string    `db:"agency" json:"agency" csv:"agency"`
	FromDate  string    `db:"from_date" json:"from_date" csv:"from_date"`
	Deadline  string    `db:"deadline" json:"deadline" csv:"deadline"`
	Link      string    `db:"link" json:"link" csv:"link"`
	CreatedAt time.Time `db:"created_at" json:"created_at" csv:"created_at"`
}

// IdentityKey builds the "title|link" key shared by extraction, diff and storage.
func IdentityKey(title, link string) string {
	return strings.TrimSpace(title) + "|" + strings.TrimSpace(link)
}

// Key returns the record's identity key.
func (p ProposalRecord) Key() string {
	return IdentityKey(p.Title, p.Link)
}

// EndTime parses EndDate as a canonical date. ok is false for sentinels
// and text the date normalizer could not parse.
func (p ProposalRecord) EndTime() (t time.Time, ok bool) {
	t, err := time.Parse(CanonicalDateStyle, p.EndDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
