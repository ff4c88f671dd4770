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
	"github.com/cradoe/verime/internal/validator"
	"github.com/cradoe/verime/internal/verification"
)

type VerificationResponseData struct {
	ID           string          `json:"id"`
	Level        string          `json:"level"`
	Status       string          `json:"status"`
	RiskLevel    string          `json:"risk_level"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	RejectedAt   *time.Time      `json:"rejected_at,omitempty"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	ReviewResult json.RawMessage `json:"review_result,omitempty"`
}

type VerificationHandler struct {
	Lifecycle  *verification.Lifecycle
	ErrHandler *errHandler.ErrorHandler
}

func NewVerificationHandler(handler *VerificationHandler) *VerificationHandler {
	return &VerificationHandler{
		Lifecycle:  handler.Lifecycle,
		ErrHandler: handler.ErrHandler,
	}
}

func (h *VerificationHandler) HandleSubmitVerification(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Level     string              `json:"level"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Level), "Level is required")
	input.Validator.Check(validator.In(models.VerificationLevel(input.Level),
		models.VerificationLevelBasic,
		models.VerificationLevelFull,
		models.VerificationLevelAmlEnhanced,
	), "Level must be one of: basic, full, aml_enhanced")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := context.ContextGetAuthenticatedUser(r)

	created, err := h.Lifecycle.Submit(user.ID, models.VerificationLevel(input.Level))
	if err != nil {
		if errors.Is(err, verification.ErrPendingExists) {
			h.ErrHandler.Conflict(w, r, "A verification is already pending review")
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Verification submitted successfully"

	err = response.JSONCreatedResponse(w, verificationResponseData(created), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *VerificationHandler) HandleReviewVerification(w http.ResponseWriter, r *http.Request) {
	verificationID := r.PathValue("id")

	var input struct {
		Decision  string              `json:"decision"`
		Result    json.RawMessage     `json:"result"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Decision), "Decision is required")
	input.Validator.Check(validator.In(verification.Decision(input.Decision),
		verification.DecisionApprove,
		verification.DecisionReject,
	), "Decision must be either approve or reject")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	reviewer := context.ContextGetAuthenticatedUser(r)

	reviewed, err := h.Lifecycle.Review(verificationID, reviewer.ID, verification.Decision(input.Decision), input.Result)
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			h.ErrHandler.NotFound(w, r)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Verification reviewed successfully"

	err = response.JSONOkResponse(w, verificationResponseData(reviewed), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *VerificationHandler) HandleSingleVerification(w http.ResponseWriter, r *http.Request) {
	verificationID := r.PathValue("id")

	result, found, err := h.Lifecycle.VerificationRepo.GetOne(verificationID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, verificationResponseData(result), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *VerificationHandler) HandleMyVerifications(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	results, err := h.Lifecycle.VerificationRepo.GetAllByUserID(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if len(results) == 0 {
		message := "No verification found"
		err = response.JSONOkResponse(w, []VerificationResponseData{}, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	data := make([]*VerificationResponseData, len(results))
	for i := range results {
		data[i] = verificationResponseData(&results[i])
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleApprovalStatus answers whether the authenticated subject currently
// holds a valid approval, evaluating expiry at read time.
func (h *VerificationHandler) HandleApprovalStatus(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	valid, err := h.Lifecycle.HasValidApproval(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]bool{
		"approved": valid,
	}

	message := "Data retrieved successfully"

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func verificationResponseData(v *models.Verification) *VerificationResponseData {
	data := &VerificationResponseData{
		ID:           v.ID,
		Level:        string(v.Level),
		Status:       string(v.Status),
		RiskLevel:    string(v.RiskLevel),
		SubmittedAt:  v.SubmittedAt,
		ReviewResult: v.ReviewResult,
	}

	if v.ReviewedAt.Valid {
		data.ReviewedAt = &v.ReviewedAt.Time
	}
	if v.ApprovedAt.Valid {
		data.ApprovedAt = &v.ApprovedAt.Time
	}
	if v.RejectedAt.Valid {
		data.RejectedAt = &v.RejectedAt.Time
	}
	if v.ExpiresAt.Valid {
		data.ExpiresAt = &v.ExpiresAt.Time
	}

	return data
}
