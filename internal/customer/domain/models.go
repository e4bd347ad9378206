package domain

// Customer is one row of the customers table. Name is unique; the first
// stored address and phone for a name win.
type Customer struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Address string `gorm:"type:text" json:"address"`
	Phone   string `gorm:"type:varchar(64)" json:"phone"`
}

func (Customer) TableName() string {
	return "customers"
}
