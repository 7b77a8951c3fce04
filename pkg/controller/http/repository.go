package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// RepositoryHandler serves the repository registry and reconciliation API
type RepositoryHandler struct {
	tagUC  interfaces.TagUseCase
	repoUC interfaces.RepositoryUseCase
}

// NewRepositoryHandler creates a RepositoryHandler
func NewRepositoryHandler(tagUC interfaces.TagUseCase, repoUC interfaces.RepositoryUseCase) *RepositoryHandler {
	return &RepositoryHandler{
		tagUC:  tagUC,
		repoUC: repoUC,
	}
}

type addRepositoryRequest struct {
	Repository string `json:"repository"`
}

type addRepositoryData struct {
	Repository types.RepoKey `json:"repository"`
	Added      bool          `json:"added"`
}

type addRepositoryResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    addRepositoryData `json:"data"`
}

type listRepositoriesResponse struct {
	Repositories []types.RepoKey `json:"repositories"`
}

type refreshResponse struct {
	PassID       types.PassID        `json:"pass_id"`
	Repositories model.ChangeRecords `json:"repositories"`
	Warnings     []*model.Warning    `json:"warnings"`
}

type tagResponse struct {
	Repository types.RepoKey `json:"repository"`
	Tag        string        `json:"tag"`
	URL        string        `json:"url"`
}

type historyResponse struct {
	Repositories []*model.TagRecord `json:"repositories"`
}

// Add handles POST /api/repositories
func (h *RepositoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	repo, added, err := h.repoUC.Add(r.Context(), req.Repository)
	if err != nil {
		if errors.Is(err, types.ErrInvalidRepoKey) {
			writeError(w, r, err, http.StatusBadRequest)
			return
		}
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	msg := "Repository added"
	if !added {
		msg = "Repository already tracked"
	}
	writeJSON(w, r, http.StatusOK, &addRepositoryResponse{
		Success: true,
		Message: msg,
		Data: addRepositoryData{
			Repository: repo,
			Added:      added,
		},
	})
}

// List handles GET /api/repositories
func (h *RepositoryHandler) List(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoUC.List(r.Context())
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	if repos == nil {
		repos = []types.RepoKey{}
	}
	writeJSON(w, r, http.StatusOK, &listRepositoriesResponse{Repositories: repos})
}

// Refresh handles POST /api/repositories/refresh
func (h *RepositoryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var updatedOnly bool
	if v := r.URL.Query().Get("updated_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, goerr.Wrap(err, "invalid updated_only parameter", goerr.V("value", v)), http.StatusBadRequest)
			return
		}
		updatedOnly = b
	}

	result, err := h.tagUC.Refresh(r.Context())
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	changes := result.Changes
	if updatedOnly {
		changes = changes.Changed()
	}
	writeJSON(w, r, http.StatusOK, &refreshResponse{
		PassID:       result.PassID,
		Repositories: changes,
		Warnings:     result.Warnings,
	})
}

// LatestTag handles GET /api/repositories/{owner}/{repo}/tag
func (h *RepositoryHandler) LatestTag(w http.ResponseWriter, r *http.Request) {
	repo, err := types.NewRepoKey(chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		writeError(w, r, err, http.StatusBadRequest)
		return
	}

	rec, err := h.tagUC.LatestTag(r.Context(), repo)
	if err != nil {
		if errors.Is(err, types.ErrReleaseNotFound) {
			writeError(w, r, err, http.StatusNotFound)
			return
		}
		writeError(w, r, err, http.StatusBadGateway)
		return
	}

	writeJSON(w, r, http.StatusOK, &tagResponse{
		Repository: rec.Repository,
		Tag:        rec.Tag,
		URL:        rec.URL,
	})
}

// History handles GET /api/repositories/history
func (h *RepositoryHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.tagUC.History(r.Context())
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*model.TagRecord{}
	}
	writeJSON(w, r, http.StatusOK, &historyResponse{Repositories: records})
}
