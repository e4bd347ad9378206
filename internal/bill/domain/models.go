package domain

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
)

// Bill is one row of the bills table: a single line item of a submitted
// invoice with the customer details copied in.
type Bill struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"type:varchar(255);index;not null" json:"name"`
	Address       string          `gorm:"type:text" json:"address"`
	Phone         string          `gorm:"type:varchar(64)" json:"phone"`
	ItemName      string          `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"item_price"`
	Quantity      decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Unit          string          `gorm:"type:varchar(32)" json:"unit"`
	WeightingRate decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"weighting_rate"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Date          string          `gorm:"type:varchar(10);not null" json:"date"`
}

func (Bill) TableName() string {
	return "bills"
}

// FromInvoice returns one row per line item, in item order.
func FromInvoice(inv invoicedomain.Invoice) []*Bill {
	rows := make([]*Bill, 0, len(inv.Items))
	for _, item := range inv.Items {
		rows = append(rows, &Bill{
			Name:          inv.Customer.Name,
			Address:       inv.Customer.Address,
			Phone:         inv.Customer.Phone,
			ItemName:      item.ItemName,
			ItemPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			WeightingRate: item.WeightingRate,
			TotalAmount:   item.LineTotal().Round(invoicedomain.AmountPlaces),
			Date:          inv.IssueDate(),
		})
	}
	return rows
}

// LineItem converts the row back into the item it was stored from.
func (b Bill) LineItem() invoicedomain.LineItem {
	return invoicedomain.LineItem{
		ItemName:      b.ItemName,
		UnitPrice:     b.ItemPrice,
		Quantity:      b.Quantity,
		Unit:          b.Unit,
		WeightingRate: b.WeightingRate,
	}
}
