// handlers/proposal_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/models"
)

// ProposalSource is what the read API needs from the proposal service.
type ProposalSource interface {
	ListProposals(ctx context.Context) ([]models.StoredProposal, error)
}

type ProposalHandler struct {
	proposals ProposalSource
	log       logger.Logger
}

func NewProposalHandler(proposals ProposalSource, log logger.Logger) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, log: log}
}

// GetProposals handles GET /api/proposals: every stored proposal as a JSON
// array, latest deadline first.
func (h *ProposalHandler) GetProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.proposals.ListProposals(r.Context())
	if err != nil {
		h.log.Error("Failed to list proposals", logger.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch proposals")
		return
	}
	respondWithJSON(w, http.StatusOK, proposals)
}
