package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/history"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/reformat"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
)

// maxTopN bounds the best-N a caller may request.
const maxTopN = 50

// ReformatRequest is the request body for reformatting a strategy.
type ReformatRequest struct {
	Text  string `json:"text" example:"We need two more MLOps engineers by Q4." validate:"required"`
	Apply bool   `json:"apply" example:"false"`
}

// Validate implements validation.Validatable.
func (r ReformatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

// ReformatResponse is a strategy proposal. Error is set when the proposal
// was rejected.
type ReformatResponse struct {
	Error string `json:"error,omitempty"`
	*reformat.Proposal
}

// RankRequest is the request body for the overall ranking step.
type RankRequest struct {
	TopN int `json:"top_n" example:"10"`
}

// Validate implements validation.Validatable.
func (r RankRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TopN, validation.Min(0), validation.Max(maxTopN)),
	)
}

// MappingRequest is the request body for skill-mapping generation.
type MappingRequest struct {
	Save bool `json:"save" example:"true"`
}

// CoverageResponse is the coverage count for one skill and level.
type CoverageResponse struct {
	SkillID string `json:"skill_id" example:"skill.mlops" validate:"required"`
	Level   string `json:"level" example:"Advanced" validate:"required"`
	Count   int    `json:"count" example:"3" validate:"required"`
}

// CoverageHistoryResponse wraps recorded coverage rows.
type CoverageHistoryResponse struct {
	Rows []history.CoverageRow `json:"rows" validate:"required"`
}

// RevisionsResponse wraps recorded strategy proposals.
type RevisionsResponse struct {
	Revisions []history.Revision `json:"revisions" validate:"required"`
}

// CallsResponse wraps recorded reasoning-service calls.
type CallsResponse struct {
	Calls []history.Call `json:"calls" validate:"required"`
}

// FilesResponse lists the data files.
type FilesResponse struct {
	Files []storage.FileInfo `json:"files" validate:"required"`
}

// ReloadResponse reports a manual reload.
type ReloadResponse struct {
	Changed   []string `json:"changed" validate:"required"`
	Employees int      `json:"employees" example:"120"`
	Goals     int      `json:"goals" example:"4"`
}
