package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/utils"
)

// MedicationHandler handles medication catalog requests. Stock bookkeeping
// lives in the inventory workflow; this handler only maintains the catalog
// that scheme steps reference.
type MedicationHandler struct {
	DB *gorm.DB
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(db *gorm.DB) *MedicationHandler {
	return &MedicationHandler{DB: db}
}

// CreateMedicationRequest represents the request body for adding a medication.
type CreateMedicationRequest struct {
	Name          string  `json:"name" binding:"required"`
	Unit          string  `json:"unit" binding:"required"`
	UnitCost      float64 `json:"unitCost" binding:"omitempty,gte=0"`
	StockQuantity float64 `json:"stockQuantity" binding:"omitempty,gte=0"`
}

// CreateMedication handles adding a medication to the catalog. Admin only.
func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	var req CreateMedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	medication := models.Medication{
		Name:          req.Name,
		Unit:          req.Unit,
		UnitCost:      req.UnitCost,
		StockQuantity: req.StockQuantity,
	}
	if err := h.DB.Create(&medication).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medication: "+err.Error())
		return
	}

	utils.Created(c, "Medication created successfully", medication)
}

// GetMedications handles fetching the medication catalog.
func (h *MedicationHandler) GetMedications(c *gin.Context) {
	var medications []models.Medication
	if err := h.DB.Order("name asc").Find(&medications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medications: "+err.Error())
		return
	}

	utils.Success(c, "Medications fetched successfully", medications)
}

// GetMedicationByID handles fetching a single medication.
func (h *MedicationHandler) GetMedicationByID(c *gin.Context) {
	medicationIDStr := c.Param("id")
	if _, err := uuid.Parse(medicationIDStr); err != nil {
		utils.BadRequest(c, "Invalid medication ID format")
		return
	}

	var medication models.Medication
	if err := h.DB.First(&medication, "id = ?", medicationIDStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medication not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Medication fetched successfully", medication)
}
