package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun is the execution history of one recommendation run.
type PipelineRun struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Trigger        string         `json:"trigger"`
	Status         RunStatus      `gorm:"type:varchar(16)" json:"status"`
	Candidates     int            `json:"candidates"`
	Classified     int            `json:"classified"`
	PersistedCount int            `json:"persisted_count"`
	FailedCount    int            `json:"failed_count"`
	Report         datatypes.JSON `gorm:"type:jsonb" json:"report,omitempty"`
	ErrorMessage   sql.NullString `json:"error_message"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    sql.NullTime   `json:"completed_at"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
