package repository

import (
	"context"

	"github.com/smallbiznis/billdesk/internal/bill/domain"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, bills []*domain.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(bills, insertBatchSize).Error
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, name string, page pagination.Pagination) ([]*domain.Bill, error) {
	stmt, err := pagination.Apply(
		db.WithContext(ctx).Model(&domain.Bill{}).Where("name = ?", name),
		page,
	)
	if err != nil {
		return nil, err
	}

	var bills []*domain.Bill
	if err := stmt.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}
