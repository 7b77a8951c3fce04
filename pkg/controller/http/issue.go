package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// IssueHandler serves issue statuses
type IssueHandler struct {
	issueUC interfaces.IssueUseCase
}

// NewIssueHandler creates an IssueHandler
func NewIssueHandler(issueUC interfaces.IssueUseCase) *IssueHandler {
	return &IssueHandler{issueUC: issueUC}
}

// Get handles GET /api/issues/{owner}/{repo}/{number}
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref, err := model.ParseIssueRef(chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo") + "/issues/" + chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, err, http.StatusBadRequest)
		return
	}

	status, err := h.issueUC.FetchStatus(r.Context(), ref)
	if err != nil {
		if errors.Is(err, types.ErrIssueNotFound) {
			writeError(w, r, err, http.StatusNotFound)
			return
		}
		writeError(w, r, err, http.StatusBadGateway)
		return
	}

	writeJSON(w, r, http.StatusOK, status)
}
