package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/utils"
)

// SchemeHandler handles treatment scheme catalog requests.
type SchemeHandler struct {
	DB *gorm.DB
}

// NewSchemeHandler creates a new SchemeHandler.
func NewSchemeHandler(db *gorm.DB) *SchemeHandler {
	return &SchemeHandler{DB: db}
}

// SchemeStepRequest describes one step of a scheme being created.
type SchemeStepRequest struct {
	DayOffset            int                         `json:"dayOffset" binding:"required,min=1"`
	ProcedureDescription string                      `json:"procedureDescription" binding:"required"`
	Medications          []SchemeStepMedicationInput `json:"medications" binding:"omitempty,dive"`
}

// SchemeStepMedicationInput declares medication usage for a step.
type SchemeStepMedicationInput struct {
	MedicationID string  `json:"medicationId" binding:"required,uuid"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
}

// CreateSchemeRequest represents the request body for creating a scheme.
type CreateSchemeRequest struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	SupervisorID string              `json:"supervisorId" binding:"required,uuid"`
	Steps        []SchemeStepRequest `json:"steps" binding:"required,min=1,dive"`
}

// CreateScheme handles creating a new treatment scheme with its steps.
// Day offsets must be strictly increasing in declaration order.
func (h *SchemeHandler) CreateScheme(c *gin.Context) {
	var req CreateSchemeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	for i := 1; i < len(req.Steps); i++ {
		if req.Steps[i].DayOffset <= req.Steps[i-1].DayOffset {
			utils.BadRequest(c, fmt.Sprintf("step %d day offset %d must be greater than step %d day offset %d",
				i+1, req.Steps[i].DayOffset, i, req.Steps[i-1].DayOffset))
			return
		}
	}

	// Verify supervisor exists
	var supervisor models.User
	if err := h.DB.First(&supervisor, "id = ?", req.SupervisorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Supervisor not found")
		} else {
			utils.InternalServerError(c, "Database error verifying supervisor: "+err.Error())
		}
		return
	}

	scheme := models.TreatmentScheme{
		Name:         req.Name,
		Description:  req.Description,
		SupervisorID: req.SupervisorID,
		IsActive:     true,
	}
	for i, stepReq := range req.Steps {
		step := models.TreatmentStep{
			StepOrder:            i,
			DayOffset:            stepReq.DayOffset,
			ProcedureDescription: stepReq.ProcedureDescription,
		}
		for _, medReq := range stepReq.Medications {
			var medication models.Medication
			if err := h.DB.First(&medication, "id = ?", medReq.MedicationID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					utils.NotFound(c, "Medication not found: "+medReq.MedicationID)
				} else {
					utils.InternalServerError(c, "Database error verifying medication: "+err.Error())
				}
				return
			}
			step.Medications = append(step.Medications, models.StepMedication{
				MedicationID: medReq.MedicationID,
				Quantity:     medReq.Quantity,
				TotalCost:    medReq.Quantity * medication.UnitCost,
			})
		}
		scheme.Steps = append(scheme.Steps, step)
	}

	if err := h.DB.Create(&scheme).Error; err != nil {
		utils.InternalServerError(c, "Failed to create scheme: "+err.Error())
		return
	}

	utils.Created(c, "Treatment scheme created successfully", scheme)
}

// GetSchemes handles fetching all schemes. Pass ?active=true to restrict
// to schemes that can still be started.
func (h *SchemeHandler) GetSchemes(c *gin.Context) {
	query := h.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order asc")
	}).Preload("Steps.Medications").Order("name asc")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var schemes []models.TreatmentScheme
	if err := query.Find(&schemes).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schemes: "+err.Error())
		return
	}

	utils.Success(c, "Treatment schemes fetched successfully", schemes)
}

// GetSchemeByID handles fetching a single scheme with its steps.
func (h *SchemeHandler) GetSchemeByID(c *gin.Context) {
	schemeIDStr := c.Param("id")
	if _, err := uuid.Parse(schemeIDStr); err != nil {
		utils.BadRequest(c, "Invalid scheme ID format")
		return
	}

	var scheme models.TreatmentScheme
	err := h.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order asc")
	}).Preload("Steps.Medications").First(&scheme, "id = ?", schemeIDStr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Treatment scheme not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Treatment scheme fetched successfully", scheme)
}

// DeactivateScheme retires a scheme so no new treatments can be started
// from it. Already-started instances keep their recorded history.
func (h *SchemeHandler) DeactivateScheme(c *gin.Context) {
	schemeIDStr := c.Param("id")
	if _, err := uuid.Parse(schemeIDStr); err != nil {
		utils.BadRequest(c, "Invalid scheme ID format")
		return
	}

	var scheme models.TreatmentScheme
	if err := h.DB.First(&scheme, "id = ?", schemeIDStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Treatment scheme not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	scheme.IsActive = false
	if err := h.DB.Save(&scheme).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate scheme: "+err.Error())
		return
	}

	utils.Success(c, "Treatment scheme deactivated", scheme)
}
