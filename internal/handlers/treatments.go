package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/metrics"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/middleware"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/treatment"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/utils"
)

// TreatmentHandler exposes the treatment execution engine over HTTP.
type TreatmentHandler struct {
	Engine *treatment.Engine
}

// NewTreatmentHandler creates a new TreatmentHandler.
func NewTreatmentHandler(engine *treatment.Engine) *TreatmentHandler {
	return &TreatmentHandler{Engine: engine}
}

// StartTreatmentRequest represents the request body for starting a treatment.
type StartTreatmentRequest struct {
	SchemeID string `json:"schemeId" binding:"required,uuid"`
	AnimalID string `json:"animalId" binding:"required,uuid"`
}

// StartTreatment handles putting an animal on a treatment scheme.
func (h *TreatmentHandler) StartTreatment(c *gin.Context) {
	var req StartTreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	instance, err := h.Engine.StartTreatment(c.Request.Context(), req.SchemeID, req.AnimalID)
	metrics.TreatmentCommandTotals.WithLabelValues("start_treatment", outcomeLabel(err)).Inc()
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.Created(c, "Treatment started successfully", instance)
}

// CompleteStepRequest represents the request body for recording a step.
type CompleteStepRequest struct {
	StepID string `json:"stepId" binding:"required,uuid"`
	Result string `json:"result" binding:"required"`
}

// CompleteStep records the execution of the treatment's current step. The
// executor is the authenticated user.
func (h *TreatmentHandler) CompleteStep(c *gin.Context) {
	instanceIDStr := c.Param("id")
	if _, err := uuid.Parse(instanceIDStr); err != nil {
		utils.BadRequest(c, "Invalid treatment ID format")
		return
	}

	var req CompleteStepRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	executorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Executor ID not found in token")
		return
	}

	err := h.Engine.CompleteStep(c.Request.Context(), instanceIDStr, req.StepID, req.Result, executorID)
	metrics.TreatmentCommandTotals.WithLabelValues("complete_step", outcomeLabel(err)).Inc()
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.Success(c, "Treatment step recorded successfully", nil)
}

// CompleteTreatmentRequest represents the request body for terminating a
// treatment before (or regardless of) protocol exhaustion.
type CompleteTreatmentRequest struct {
	Type    string `json:"type" binding:"required,oneof=discharge disposal"`
	Comment string `json:"comment"`
}

// CompleteTreatment terminates a treatment as a discharge or a disposal.
func (h *TreatmentHandler) CompleteTreatment(c *gin.Context) {
	instanceIDStr := c.Param("id")
	if _, err := uuid.Parse(instanceIDStr); err != nil {
		utils.BadRequest(c, "Invalid treatment ID format")
		return
	}

	var req CompleteTreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	executorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Executor ID not found in token")
		return
	}

	err := h.Engine.CompleteTreatment(c.Request.Context(), instanceIDStr, models.CompletionType(req.Type), req.Comment, executorID)
	metrics.TreatmentCommandTotals.WithLabelValues("complete_treatment", outcomeLabel(err)).Inc()
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.Success(c, "Treatment completed successfully", nil)
}

// GetTreatmentByID handles fetching a single treatment instance.
func (h *TreatmentHandler) GetTreatmentByID(c *gin.Context) {
	instanceIDStr := c.Param("id")
	if _, err := uuid.Parse(instanceIDStr); err != nil {
		utils.BadRequest(c, "Invalid treatment ID format")
		return
	}

	instance, err := h.Engine.Instance(c.Request.Context(), instanceIDStr)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.Success(c, "Treatment fetched successfully", instance)
}

// GetActiveTreatments lists treatments still in progress.
func (h *TreatmentHandler) GetActiveTreatments(c *gin.Context) {
	instances, err := h.Engine.ActiveInstances(c.Request.Context())
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Active treatments fetched successfully", instances)
}

// GetCompletedTreatments lists treatments in a terminal state.
func (h *TreatmentHandler) GetCompletedTreatments(c *gin.Context) {
	instances, err := h.Engine.CompletedInstances(c.Request.Context())
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Completed treatments fetched successfully", instances)
}

// GetMissedSteps reports overdue steps across all active treatments.
func (h *TreatmentHandler) GetMissedSteps(c *gin.Context) {
	missed, err := h.Engine.MissedSteps(c.Request.Context())
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Missed treatment steps fetched successfully", missed)
}

// GetTreatmentHistory lists the completed-treatment reporting projection.
func (h *TreatmentHandler) GetTreatmentHistory(c *gin.Context) {
	history, err := h.Engine.History(c.Request.Context())
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Treatment history fetched successfully", history)
}

// outcomeLabel is the metric label for a command result.
func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case treatment.IsNotFound(err):
		utils.NotFound(c, err.Error())
	case treatment.IsInvalidState(err):
		utils.Conflict(c, err.Error())
	default:
		var pe treatment.ErrPersistence
		if errors.As(err, &pe) {
			utils.InternalServerError(c, "Failed to persist treatment change: "+err.Error())
			return
		}
		utils.InternalServerError(c, err.Error())
	}
}
