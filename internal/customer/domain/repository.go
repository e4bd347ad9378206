package domain

import (
	"context"

	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent stores customer unless its name is taken and reports
	// whether a row was written.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, customer *Customer) (bool, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Customer, error)
}
