package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestTreatmentInstanceJSONRoundTrip(t *testing.T) {
	completionDate := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		instance TreatmentInstance
	}{
		{
			name: "active with empty completed steps",
			instance: TreatmentInstance{
				BaseModel:        BaseModel{ID: "treatment-1", CreatedAt: completionDate, UpdatedAt: completionDate},
				SchemeID:         "scheme-1",
				AnimalID:         "animal-1",
				StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				CurrentStepIndex: 0,
				CompletedSteps:   []CompletedStep{},
			},
		},
		{
			name: "completed by disposal",
			instance: TreatmentInstance{
				BaseModel:         BaseModel{ID: "treatment-2", CreatedAt: completionDate, UpdatedAt: completionDate},
				SchemeID:          "scheme-1",
				AnimalID:          "animal-2",
				StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				CurrentStepIndex:  1,
				IsCompleted:       true,
				CompletionType:    CompletionDisposal,
				CompletionDate:    &completionDate,
				CompletionComment: "culled",
				CompletedSteps: []CompletedStep{
					{
						BaseModel:  BaseModel{ID: "cs-1", CreatedAt: completionDate, UpdatedAt: completionDate},
						InstanceID: "treatment-2",
						StepID:     "step-1",
						Date:       time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
						Result:     "ok",
						ExecutorID: "vet-a",
					},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.instance)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var decoded TreatmentInstance
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if !reflect.DeepEqual(tc.instance, decoded) {
				t.Errorf("round trip changed the instance:\nbefore: %+v\nafter:  %+v", tc.instance, decoded)
			}
		})
	}
}
