package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cradoe/verime/internal/context"
	"github.com/cradoe/verime/internal/errHandler"
	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/request"
	"github.com/cradoe/verime/internal/response"
	"github.com/cradoe/verime/internal/risk"
	"github.com/cradoe/verime/internal/validator"
)

type ScreeningResponseData struct {
	ID             string          `json:"id"`
	VerificationID string          `json:"verification_id"`
	Type           string          `json:"type"`
	MatchFound     bool            `json:"match_found"`
	RiskScore      int             `json:"risk_score"`
	Details        json.RawMessage `json:"details,omitempty"`
	ScreenedAt     time.Time       `json:"screened_at"`
}

type ScreeningHandler struct {
	Assessor   *risk.Assessor
	ErrHandler *errHandler.ErrorHandler
}

func NewScreeningHandler(handler *ScreeningHandler) *ScreeningHandler {
	return &ScreeningHandler{
		Assessor:   handler.Assessor,
		ErrHandler: handler.ErrHandler,
	}
}

func (h *ScreeningHandler) HandleRecordScreening(w http.ResponseWriter, r *http.Request) {
	verificationID := r.PathValue("id")

	var input struct {
		Type       string              `json:"type"`
		MatchFound bool                `json:"match_found"`
		RiskScore  int                 `json:"risk_score"`
		Details    json.RawMessage     `json:"details"`
		Validator  validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Type), "Type is required")
	input.Validator.Check(validator.In(models.ScreeningType(input.Type),
		models.ScreeningTypeSanctions,
		models.ScreeningTypePep,
		models.ScreeningTypeAdverseMedia,
	), "Type must be one of: sanctions, pep, adverse_media")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := context.ContextGetAuthenticatedUser(r)

	result, err := h.Assessor.RecordScreening(
		verificationID,
		user.ID,
		models.ScreeningType(input.Type),
		input.MatchFound,
		input.RiskScore,
		input.Details,
	)
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrScoreOutOfRange):
			h.ErrHandler.FailedValidation(w, r, []string{"Risk score must be between 0 and 100"})
		case errors.Is(err, risk.ErrVerificationNotFound):
			h.ErrHandler.NotFound(w, r)
		default:
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	message := "Screening result recorded successfully"

	err = response.JSONCreatedResponse(w, screeningResponseData(result), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleCorrectScreening is the administrative amendment path for a
// recorded screening result.
func (h *ScreeningHandler) HandleCorrectScreening(w http.ResponseWriter, r *http.Request) {
	screeningID := r.PathValue("id")

	var input struct {
		MatchFound bool            `json:"match_found"`
		RiskScore  int             `json:"risk_score"`
		Details    json.RawMessage `json:"details"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	result, err := h.Assessor.CorrectScreening(screeningID, input.MatchFound, input.RiskScore, input.Details)
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrScoreOutOfRange):
			h.ErrHandler.FailedValidation(w, r, []string{"Risk score must be between 0 and 100"})
		case errors.Is(err, risk.ErrScreeningNotFound):
			h.ErrHandler.NotFound(w, r)
		default:
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	message := "Screening result corrected successfully"

	err = response.JSONOkResponse(w, screeningResponseData(result), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *ScreeningHandler) HandleVerificationRisk(w http.ResponseWriter, r *http.Request) {
	verificationID := r.PathValue("id")

	level, err := h.Assessor.Assess(verificationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"risk_level": string(level),
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func screeningResponseData(s *models.ScreeningResult) *ScreeningResponseData {
	return &ScreeningResponseData{
		ID:             s.ID,
		VerificationID: s.VerificationID,
		Type:           string(s.Type),
		MatchFound:     s.MatchFound,
		RiskScore:      s.RiskScore,
		Details:        s.Details,
		ScreenedAt:     s.ScreenedAt,
	}
}
