package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Recommendation is written once per persisted BUY and never updated.
type Recommendation struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	RunID               string                      `gorm:"index;not null" json:"run_id"`
	Symbol              string                      `gorm:"index;not null" json:"symbol"`
	RecommendedPrice    float64                     `json:"recommended_price"`
	TargetPrice         float64                     `json:"target_price"`
	StopLoss            float64                     `json:"stop_loss"`
	Confidence          int                         `json:"confidence"`
	TechnicalScore      float64                     `json:"technical_score"`
	FundamentalScore    float64                     `json:"fundamental_score"`
	TechnicalAnalysis   datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"technical_analysis"`
	FundamentalAnalysis datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"fundamental_analysis"`
	Risks               datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"risks"`
	Opportunities       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"opportunities"`
	Narrative           string                      `json:"narrative,omitempty"`
	CreatedAt           time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
