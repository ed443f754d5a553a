// services/proposal_service.go
package services

import (
	"context"
	"fmt"

	"github.com/gewnthar/fundscout/models"
)

// ProposalLister reads stored proposals.
type ProposalLister interface {
	List(ctx context.Context) ([]models.StoredProposal, error)
}

// ProposalService serves stored proposals to the API and the export command.
type ProposalService struct {
	store ProposalLister
}

func NewProposalService(store ProposalLister) *ProposalService {
	return &ProposalService{store: store}
}

// ListProposals returns every stored proposal, latest deadline first.
func (s *ProposalService) ListProposals(ctx context.Context) ([]models.StoredProposal, error) {
	proposals, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	if proposals == nil {
		proposals = []models.StoredProposal{}
	}
	return proposals, nil
}
