package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/models"
	"github.com/Doroffeev/vtasisiBeta01-sub001/internal/utils"
)

// AnimalHandler handles herd registry requests.
type AnimalHandler struct {
	DB *gorm.DB
}

// NewAnimalHandler creates a new AnimalHandler.
func NewAnimalHandler(db *gorm.DB) *AnimalHandler {
	return &AnimalHandler{DB: db}
}

// CreateAnimalRequest represents the request body for registering an animal.
type CreateAnimalRequest struct {
	TagNumber string  `json:"tagNumber" binding:"required"`
	Breed     string  `json:"breed"`
	BirthDate string  `json:"birthDate"`
	Gender    string  `json:"gender" binding:"omitempty,oneof=male female"`
	Weight    float64 `json:"weight"`
}

// CreateAnimal handles registering a new animal.
func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	var req CreateAnimalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Animal
	if err := h.DB.Where("tag_number = ?", req.TagNumber).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Animal with this tag number already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	animal := models.Animal{
		TagNumber: req.TagNumber,
		Breed:     req.Breed,
		Gender:    req.Gender,
		Weight:    req.Weight,
		Status:    models.AnimalStatusHealthy,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			utils.BadRequest(c, "Invalid birthDate format. Please use YYYY-MM-DD")
			return
		}
		animal.BirthDate = &birthDate
	}

	if err := h.DB.Create(&animal).Error; err != nil {
		utils.InternalServerError(c, "Failed to create animal: "+err.Error())
		return
	}

	utils.Created(c, "Animal registered successfully", animal)
}

// GetAnimals handles fetching the herd, optionally filtered by status.
func (h *AnimalHandler) GetAnimals(c *gin.Context) {
	query := h.DB.Order("tag_number asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var animals []models.Animal
	if err := query.Find(&animals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch animals: "+err.Error())
		return
	}

	utils.Success(c, "Animals fetched successfully", animals)
}

// GetAnimalByID handles fetching a single animal.
func (h *AnimalHandler) GetAnimalByID(c *gin.Context) {
	animalIDStr := c.Param("id")
	if _, err := uuid.Parse(animalIDStr); err != nil {
		utils.BadRequest(c, "Invalid animal ID format")
		return
	}

	var animal models.Animal
	if err := h.DB.First(&animal, "id = ?", animalIDStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Animal not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Animal fetched successfully", animal)
}

// DisposeAnimal marks the animal as removed from the herd. The treatment
// engine intentionally does not do this on a disposal completion; the
// archival status change is the caller's decision.
func (h *AnimalHandler) DisposeAnimal(c *gin.Context) {
	animalIDStr := c.Param("id")
	if _, err := uuid.Parse(animalIDStr); err != nil {
		utils.BadRequest(c, "Invalid animal ID format")
		return
	}

	var animal models.Animal
	if err := h.DB.First(&animal, "id = ?", animalIDStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Animal not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	animal.Status = models.AnimalStatusDisposed
	if err := h.DB.Save(&animal).Error; err != nil {
		utils.InternalServerError(c, "Failed to update animal status: "+err.Error())
		return
	}

	utils.Success(c, "Animal marked as disposed", animal)
}
