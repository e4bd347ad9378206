package domain

import (
	"context"
	"errors"

	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListCustomerRequest struct {
	PageToken string
	PageSize  int
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	// Remember stores the customer if the name is new. A non-nil tx runs the
	// insert inside the caller's transaction.
	Remember(ctx context.Context, tx *gorm.DB, record invoicedomain.CustomerRecord) (bool, error)
	// Resolve fills a blank address or phone from the stored customer.
	Resolve(context.Context, invoicedomain.CustomerRecord) (invoicedomain.CustomerRecord, error)
	GetByName(context.Context, string) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("not_found")
)
