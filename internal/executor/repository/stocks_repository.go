package repository

import (
	"context"
	"strings"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"

	"gorm.io/gorm"
)

// StocksRepository serves the watch-list from the stocks table, highest priority first.
type StocksRepository interface {
	WatchlistRepository
	GetStocks(ctx context.Context) ([]entity.Stock, error)
}

type stocksRepository struct {
	db *gorm.DB
}

func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (s *stocksRepository) GetStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("priority DESC, id ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (s *stocksRepository) GetCandidates(ctx context.Context, limit int) ([]dto.WatchlistCandidate, error) {
	q := s.db.WithContext(ctx).Where("active = ?", true).Order("priority DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var stocks []entity.Stock
	if err := q.Find(&stocks).Error; err != nil {
		return nil, err
	}

	candidates := make([]dto.WatchlistCandidate, 0, len(stocks))
	for _, st := range stocks {
		candidates = append(candidates, dto.WatchlistCandidate{
			Symbol: strings.ToUpper(strings.TrimSpace(st.Code)),
			Rating: float64(st.Priority),
		})
	}
	return candidates, nil
}
