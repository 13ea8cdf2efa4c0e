package repository

import (
	"context"
	"errors"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"

	"gorm.io/gorm"
)

// PipelineRunRepository defines the interface for pipeline run history data operations.
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entity.PipelineRun) error
	FindByID(ctx context.Context, id string) (*entity.PipelineRun, error)
	Update(ctx context.Context, run *entity.PipelineRun) error
}

// NewPipelineRunRepository creates a new GORM-based pipeline run repository.
func NewPipelineRunRepository(db *gorm.DB) PipelineRunRepository {
	return &pipelineRunRepository{db: db}
}

type pipelineRunRepository struct {
	db *gorm.DB
}

func (r *pipelineRunRepository) Create(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// FindByID retrieves a pipeline run by its ID.
func (r *pipelineRunRepository) FindByID(ctx context.Context, id string) (*entity.PipelineRun, error) {
	var run entity.PipelineRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dto.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// Update updates an existing pipeline run record.
func (r *pipelineRunRepository) Update(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}
