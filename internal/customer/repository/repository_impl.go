package repository

import (
	"context"

	"github.com/smallbiznis/billdesk/internal/customer/domain"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, conn *gorm.DB, customer *domain.Customer) (bool, error) {
	res := conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(customer)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByName(ctx context.Context, conn *gorm.DB, name string) (*domain.Customer, error) {
	var customer domain.Customer
	err := conn.WithContext(ctx).Raw(
		`SELECT id, name, address, phone FROM customers WHERE name = ?`,
		name,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, page pagination.Pagination) ([]*domain.Customer, error) {
	stmt, err := pagination.Apply(conn.WithContext(ctx).Model(&domain.Customer{}), page)
	if err != nil {
		return nil, err
	}

	var customers []*domain.Customer
	if err := stmt.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
