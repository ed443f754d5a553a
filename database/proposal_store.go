// database/proposal_store.go
package database

import (
	"context"
	"fmt"

	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/models"
)

// ProposalStore is the persistence gateway for the proposals table.
// Rows are append-only; only ResetTable removes them.
type ProposalStore struct {
	db  *DB
	d   dialect
	log logger.Logger
}

func NewProposalStore(db *DB) *ProposalStore {
	return &ProposalStore{
		db:  db,
		d:   dialectFor(db.DriverName()),
		log: db.log,
	}
}

// EnsureSchema creates the proposals table when it does not exist.
func (s *ProposalStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.createTable); err != nil {
		return fmt.Errorf("failed to create proposals table: %w", err)
	}
	return nil
}

// LoadExistingKeys reads every stored identity key in one query.
func (s *ProposalStore) LoadExistingKeys(ctx context.Context) (*models.KeyedSet[string], error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, link FROM proposals`)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing proposals: %w", err)
	}
	defer rows.Close()

	keys := models.NewKeySet()
	for rows.Next() {
		var title, link string
		if err := rows.Scan(&title, &link); err != nil {
			return nil, fmt.Errorf("failed to scan proposal key: %w", err)
		}
		keys.Add(models.IdentityKey(title, link))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposal keys: %w", err)
	}

	s.log.Debug("Loaded existing proposal keys", logger.Int("count", keys.Len()))
	return keys, nil
}

// Insert writes one record. A duplicate (title, link) is not an error: it
// reports false and leaves the stored row untouched.
func (s *ProposalStore) Insert(ctx context.Context, rec models.ProposalRecord) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(s.d.insert),
		rec.Title, rec.Agency, rec.StartDate, rec.EndDate, rec.Link)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert proposal %q: %w", rec.Key(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %q: %w", rec.Key(), err)
	}
	return n > 0, nil
}

// UpsertAll inserts records one at a time and returns how many were new.
// The first non-conflict failure stops the batch; rows already written stay.
func (s *ProposalStore) UpsertAll(ctx context.Context, records []models.ProposalRecord) (int, error) {
	inserted := 0
	for _, rec := range records {
		ok, err := s.Insert(ctx, rec)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		} else {
			s.log.Debug("Proposal already stored", logger.String("key", rec.Key()))
		}
	}
	return inserted, nil
}

// List returns every stored proposal, latest deadline first.
func (s *ProposalStore) List(ctx context.Context) ([]models.StoredProposal, error) {
	proposals := []models.StoredProposal{}
	err := s.db.SelectContext(ctx, &proposals, `
		SELECT title,
			COALESCE(agency, '') AS agency,
			COALESCE(from_date, '') AS from_date,
			COALESCE(deadline, '') AS deadline,
			link,
			created_at
		FROM proposals
		ORDER BY deadline DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, nil
}

// ResetTable drops and recreates the proposals table. It deletes every row
// and is never called by an ingest run.
func (s *ProposalStore) ResetTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.dropTable); err != nil {
		return fmt.Errorf("failed to drop proposals table: %w", err)
	}
	s.log.Warn("Proposals table dropped")
	return s.EnsureSchema(ctx)
}

// Ping reports whether the store is reachable.
func (s *ProposalStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying pool.
func (s *ProposalStore) Close() error {
	return s.db.Close()
}
