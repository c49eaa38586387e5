package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referral is the edge from a referrer to a user they invited.
// It is created once at registration and never re-pointed.
type Referral struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	ReferrerID  int64           `gorm:"not null;index;uniqueIndex:idx_referral_pair" json:"referrer_id"`
	ReferredID  int64           `gorm:"not null;index;uniqueIndex:idx_referral_pair" json:"referred_id"`
	BonusEarned decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"bonus_earned"`
	CreatedAt   time.Time       `json:"created_at"`
}
