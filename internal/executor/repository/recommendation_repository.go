package repository

import (
	"context"
	"errors"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *entity.Recommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recommendationRepository) FindByID(ctx context.Context, id string) (*entity.Recommendation, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, dto.ErrNotFound
	}

	var rec entity.Recommendation
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", parsed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dto.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) List(ctx context.Context, filter RecommendationFilter) ([]entity.Recommendation, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}

	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if filter.Symbol != "" {
		q = q.Where("symbol = ?", filter.Symbol)
	}
	if filter.RunID != "" {
		q = q.Where("run_id = ?", filter.RunID)
	}

	var recs []entity.Recommendation
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
