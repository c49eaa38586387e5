package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxTypeDeposit  = "deposit"
	TxTypeWithdraw = "withdraw"
	TxTypeBonus    = "bonus"
	TxTypeReferral = "referral"
	TxTypeProfit   = "profit"

	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusRejected  = "rejected"

	DefaultCurrency = "RUB"
)

// Amount is always positive; the direction is implied by Type.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	Type        string          `gorm:"size:16;not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Status      string          `gorm:"size:16;not null;default:'pending';index" json:"status"`
	Currency    string          `gorm:"size:8;default:'RUB'" json:"currency"`
	CardNumber  string          `gorm:"size:32" json:"card_number,omitempty"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}
