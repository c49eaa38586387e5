package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                   uint            `gorm:"primaryKey" json:"-"`
	TelegramID           int64           `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username             string          `gorm:"size:255" json:"username"`
	FirstName            string          `gorm:"size:255" json:"first_name"`
	Balance              decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	TotalEarned          decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_earned"`
	ReferralCode         string          `gorm:"size:64;uniqueIndex" json:"referral_code"`
	ReferrerID           *int64          `gorm:"index" json:"referrer_id,omitempty"` // telegram_id of the referrer
	ChatBonusClaimed     bool            `gorm:"default:false" json:"chat_bonus_claimed"`
	ReferralBonusClaimed bool            `gorm:"default:false" json:"referral_bonus_claimed"`
	IsAdmin              bool            `gorm:"default:false" json:"is_admin"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"-"`
}
