package repository

import (
	"context"

	"github.com/timmy/sentencebot/internal/domain"
	"gorm.io/gorm"
)

// ReplyRepository stores the reply history.
type ReplyRepository struct {
	db *gorm.DB
}

// NewReplyRepository creates a new ReplyRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ReplyRepository: repository instance bound to db.
func NewReplyRepository(db *gorm.DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

// Create inserts a new reply record.
func (r *ReplyRepository) Create(ctx context.Context, record *domain.ReplyRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListRecent returns the newest records first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.ReplyRecord: matching records.
//   - error: non-nil if the query fails.
func (r *ReplyRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.ReplyRecord, error) {
	var records []domain.ReplyRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListBySender returns the newest records of one sender.
func (r *ReplyRepository) ListBySender(ctx context.Context, senderID string, limit int) ([]domain.ReplyRecord, error) {
	var records []domain.ReplyRecord
	if err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Stats counts records per status.
func (r *ReplyRepository) Stats(ctx context.Context) (*domain.ReplyStats, error) {
	var rows []struct {
		Status domain.ReplyStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.ReplyRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &domain.ReplyStats{ByStatus: make(map[domain.ReplyStatus]int64, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}
