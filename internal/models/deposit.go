package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DepositStatusActive = "active"

type Deposit struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	DailyRate   decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"daily_rate"`
	TotalEarned decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_earned"`
	Status      string          `gorm:"size:32;not null;default:'active';index" json:"status"`
	LastAccrual time.Time       `gorm:"not null" json:"last_accrual"`
	CreatedAt   time.Time       `json:"created_at"`
}
