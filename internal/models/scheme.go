package models

// TreatmentScheme represents a named, ordered protocol of dated steps
// applied to an animal. Edits to a scheme never rewrite the recorded
// history of instances that were started from it.
type TreatmentScheme struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	SupervisorID string `gorm:"size:36;index" json:"supervisorId"`
	IsActive     bool   `gorm:"default:true" json:"isActive"`

	Steps []TreatmentStep `gorm:"foreignKey:SchemeID" json:"steps,omitempty"`

	// Relations
	Supervisor User `gorm:"foreignKey:SupervisorID" json:"-"`
}

// TreatmentStep is one day-offset procedure within a scheme.
// DayOffset is 1-based: a step with DayOffset 1 is expected on the
// treatment's start day.
type TreatmentStep struct {
	BaseModel
	SchemeID             string `gorm:"size:36;index" json:"schemeId"`
	StepOrder            int    `gorm:"not null" json:"stepOrder"`
	DayOffset            int    `gorm:"not null" json:"dayOffset"`
	ProcedureDescription string `gorm:"type:text" json:"procedureDescription"`

	Medications []StepMedication `gorm:"foreignKey:StepID" json:"medications,omitempty"`
}

// StepMedication declares the medication usage of a single step
type StepMedication struct {
	BaseModel
	StepID       string  `gorm:"size:36;index" json:"stepId"`
	MedicationID string  `gorm:"size:36;index" json:"medicationId"`
	Quantity     float64 `json:"quantity"`
	TotalCost    float64 `json:"totalCost"`

	// Relations
	Medication Medication `gorm:"foreignKey:MedicationID" json:"-"`
}
