package domain

import (
	"context"

	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, bills []*Bill) error
	ListByCustomer(ctx context.Context, db *gorm.DB, name string, page pagination.Pagination) ([]*Bill, error)
}
