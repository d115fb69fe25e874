package models

import (
	"time"
)

// CompletionType tells how a treatment ended
type CompletionType string

const (
	// CompletionDischarge means the protocol succeeded and the animal
	// returned to normal status.
	CompletionDischarge CompletionType = "discharge"
	// CompletionDisposal means the treatment ended with the animal
	// removed from the herd.
	CompletionDisposal CompletionType = "disposal"
)

// TreatmentInstance is the execution record of one animal going through
// one treatment scheme. Instances are append-only history: they are never
// deleted, only transitioned to a terminal completed state.
type TreatmentInstance struct {
	BaseModel
	SchemeID          string         `gorm:"size:36;index" json:"schemeId"`
	AnimalID          string         `gorm:"size:36;index" json:"animalId"`
	StartDate         time.Time      `json:"startDate"`
	CurrentStepIndex  int            `gorm:"default:0" json:"currentStepIndex"`
	IsCompleted       bool           `gorm:"default:false;index" json:"isCompleted"`
	CompletionType    CompletionType `gorm:"size:20" json:"completionType,omitempty"`
	CompletionDate    *time.Time     `json:"completionDate,omitempty"`
	CompletionComment string         `gorm:"type:text" json:"completionComment,omitempty"`

	CompletedSteps []CompletedStep `gorm:"foreignKey:InstanceID" json:"completedSteps"`

	// Relations
	Scheme TreatmentScheme `gorm:"foreignKey:SchemeID" json:"-"`
	Animal Animal          `gorm:"foreignKey:AnimalID" json:"-"`
}

// CompletedStep records one executed step of a treatment instance.
// StepID keeps referencing the scheme step even if the step is later
// removed from the scheme.
type CompletedStep struct {
	BaseModel
	InstanceID string    `gorm:"size:36;index" json:"instanceId"`
	StepID     string    `gorm:"size:36;index" json:"stepId"`
	Date       time.Time `json:"date"`
	Result     string    `gorm:"type:text" json:"result"`
	ExecutorID string    `gorm:"size:36;index" json:"executorId"`
}

// TreatmentHistoryRecord is the read-side projection appended whenever an
// instance reaches a terminal state. It denormalizes the scheme name so
// reports survive later scheme edits.
type TreatmentHistoryRecord struct {
	BaseModel
	InstanceID     string         `gorm:"size:36;index" json:"instanceId"`
	AnimalID       string         `gorm:"size:36;index" json:"animalId"`
	SchemeID       string         `gorm:"size:36;index" json:"schemeId"`
	SchemeName     string         `gorm:"size:255" json:"schemeName"`
	Date           time.Time      `json:"date"`
	CompletionType CompletionType `gorm:"size:20" json:"completionType"`
	Comment        string         `gorm:"type:text" json:"comment,omitempty"`
}

// MissedStep reports a step whose expected date has passed without a
// matching completed-step record. It is computed, never persisted.
type MissedStep struct {
	TreatmentID  string    `json:"treatmentId"`
	AnimalID     string    `json:"animalId"`
	SchemeID     string    `json:"schemeId"`
	StepID       string    `json:"stepId"`
	ExpectedDate time.Time `json:"expectedDate"`
}
