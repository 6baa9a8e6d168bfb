// Package api implements the planner REST API using chi.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/planservice"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/reformat"
)

// Handler holds API route handlers.
type Handler struct {
	svc *planservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *planservice.Service) *Handler {
	return &Handler{svc: svc}
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// Overview handles GET /api/overview.
//
//	@Summary		Gap overview across all goals
//	@Tags			gaps
//	@Produce		json
//	@Success		200	{object}	planservice.Overview
//	@Router			/overview [get]
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Overview(r.Context()))
}

// Goals handles GET /api/goals.
//
//	@Summary		List strategy goals
//	@Tags			gaps
//	@Produce		json
//	@Success		200	{array}	models.Goal
//	@Router			/goals [get]
func (h *Handler) Goals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"goals": h.svc.Goals(r.Context()),
	})
}

// Candidates handles GET /api/candidates/{capID}/{skillID}.
//
//	@Summary		Ranked candidates for one goal requirement
//	@Tags			gaps
//	@Produce		json
//	@Param			capID	path		string	true	"Goal id"
//	@Param			skillID	path		string	true	"Skill id"
//	@Success		200		{object}	planservice.CandidateList
//	@Failure		404		{object}	errResponse
//	@Router			/candidates/{capID}/{skillID} [get]
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Candidates(r.Context(), chi.URLParam(r, "capID"), chi.URLParam(r, "skillID"))
	if err != nil {
		writeError(w, "candidates", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Roadmap handles GET /api/roadmap/{capID}/{skillID}/{empID}.
//
//	@Summary		Remediation roadmap for one employee
//	@Tags			gaps
//	@Produce		json
//	@Param			capID	path		string	true	"Goal id"
//	@Param			skillID	path		string	true	"Skill id"
//	@Param			empID	path		string	true	"Employee id"
//	@Success		200		{object}	planservice.RoadmapView
//	@Failure		404		{object}	errResponse
//	@Router			/roadmap/{capID}/{skillID}/{empID} [get]
func (h *Handler) Roadmap(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Roadmap(r.Context(), chi.URLParam(r, "capID"), chi.URLParam(r, "skillID"), chi.URLParam(r, "empID"))
	if err != nil {
		writeError(w, "roadmap", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Coverage handles GET /api/coverage/{skillID}?level=Advanced.
//
//	@Summary		Count employees at or above a level in a skill
//	@Tags			gaps
//	@Produce		json
//	@Param			skillID	path		string	true	"Skill id"
//	@Param			level	query		string	false	"Novice, Practitioner, Advanced or Expert"
//	@Success		200		{object}	CoverageResponse
//	@Router			/coverage/{skillID} [get]
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	skillID := chi.URLParam(r, "skillID")
	lvl := level.Parse(r.URL.Query().Get("level"))
	writeJSON(w, http.StatusOK, CoverageResponse{
		SkillID: skillID,
		Level:   lvl.String(),
		Count:   h.svc.Coverage(r.Context(), skillID, lvl.String()),
	})
}

// ReformatStrategy handles POST /api/strategy/reformat.
//
//	@Summary		Reformat free text into a strategy document
//	@Description	Returns the proposal. With apply set, an accepted proposal replaces the strategy.
//	@Tags			strategy
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReformatRequest	true	"Raw strategy text"
//	@Success		200		{object}	ReformatResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	ReformatResponse
//	@Router			/strategy/reformat [post]
func (h *Handler) ReformatStrategy(w http.ResponseWriter, r *http.Request) {
	var req ReformatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	p, err := h.svc.ApplyStrategy(r.Context(), req.Text, req.Apply)
	if err != nil {
		writeError(w, "reformat strategy", err)
		return
	}
	if p.State == reformat.StateRejected {
		writeJSON(w, http.StatusUnprocessableEntity, ReformatResponse{Error: p.Reason, Proposal: p})
		return
	}
	writeJSON(w, http.StatusOK, ReformatResponse{Proposal: p})
}

// Pool handles GET /api/ranking/pool?size=50.
//
//	@Summary		Pre-scored candidate pool for the ranking step
//	@Tags			ranking
//	@Produce		json
//	@Param			size	query		int	false	"Pool size"
//	@Success		200		{object}	matching.Pool
//	@Router			/ranking/pool [get]
func (h *Handler) Pool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.MatchPool(r.Context(), queryInt(r, "size")))
}

// Rank handles POST /api/ranking.
//
//	@Summary		Select the best employees across all goals
//	@Tags			ranking
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RankRequest	false	"Best-N"
//	@Success		200		{object}	ranking.Result
//	@Failure		422		{object}	rejectedResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/ranking [post]
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := validation.Validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	res, err := h.svc.RankOverall(r.Context(), req.TopN)
	if err != nil {
		writeError(w, "ranking", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Mapping handles POST /api/mapping.
//
//	@Summary		Generate the strategy-code to internal-skill mapping
//	@Tags			ranking
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MappingRequest	false	"Save the mapping"
//	@Success		200		{object}	matching.MappingDocument
//	@Failure		422		{object}	rejectedResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/mapping [post]
func (h *Handler) Mapping(w http.ResponseWriter, r *http.Request) {
	var req MappingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	doc, err := h.svc.GenerateMapping(r.Context(), req.Save)
	if err != nil {
		writeError(w, "mapping", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CoverageHistory handles GET /api/history/coverage/{capID}/{skillID}.
//
//	@Summary		Recorded coverage for one goal requirement
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Max rows"
//	@Success		200		{object}	CoverageHistoryResponse
//	@Failure		404		{object}	errResponse
//	@Router			/history/coverage/{capID}/{skillID} [get]
func (h *Handler) CoverageHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.CoverageHistory(r.Context(), chi.URLParam(r, "capID"), chi.URLParam(r, "skillID"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "coverage history", err)
		return
	}
	writeJSON(w, http.StatusOK, CoverageHistoryResponse{Rows: rows})
}

// Revisions handles GET /api/history/revisions.
//
//	@Summary		Recorded strategy proposals
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Max rows"
//	@Success		200		{object}	RevisionsResponse
//	@Router			/history/revisions [get]
func (h *Handler) Revisions(w http.ResponseWriter, r *http.Request) {
	revs, err := h.svc.Revisions(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "revisions", err)
		return
	}
	writeJSON(w, http.StatusOK, RevisionsResponse{Revisions: revs})
}

// Calls handles GET /api/history/calls.
//
//	@Summary		Recorded reasoning-service calls
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Max rows"
//	@Success		200		{object}	CallsResponse
//	@Router			/history/calls [get]
func (h *Handler) Calls(w http.ResponseWriter, r *http.Request) {
	calls, err := h.svc.Calls(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, "calls", err)
		return
	}
	writeJSON(w, http.StatusOK, CallsResponse{Calls: calls})
}

// Files handles GET /api/files.
//
//	@Summary		Data files with checksums
//	@Tags			data
//	@Produce		json
//	@Success		200	{object}	FilesResponse
//	@Router			/files [get]
func (h *Handler) Files(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Files(r.Context())
	if err != nil {
		writeError(w, "files", err)
		return
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: files})
}

// Reload handles POST /api/reload.
//
//	@Summary		Reload the data directory
//	@Tags			data
//	@Produce		json
//	@Success		200	{object}	ReloadResponse
//	@Failure		500	{object}	errResponse
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, changed, err := h.svc.Reload(r.Context())
	if err != nil {
		writeError(w, "reload", err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	slog.Info("manual reload", slog.Int("changed", len(changed)))
	writeJSON(w, http.StatusOK, ReloadResponse{
		Changed:   changed,
		Employees: len(snap.Employees),
		Goals:     len(snap.Goals()),
	})
}
