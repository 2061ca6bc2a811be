package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer carries the running outstanding balance: positive means the customer
// owes money, negative means they hold advance credit.
type Customer struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name               string    `gorm:"column:name;not null"`
	Phone              *string   `gorm:"column:phone"`
	Address            *string   `gorm:"column:address"`
	OutstandingBalance float64   `gorm:"column:outstanding_balance;type:numeric(14,2);not null;default:0"`
	IsDeleted          bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
