package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investa-backend/internal/models"
)

const transactionListLimit = 50

type UserView struct {
	models.User
	ReferralCount    int64           `json:"referral_count"`
	ActiveDeposits   decimal.Decimal `json:"active_deposits"`
	ReferralEarnings decimal.Decimal `json:"referral_earnings"`
}

type ReferralView struct {
	TelegramID    int64           `json:"telegram_id"`
	Username      string          `json:"username"`
	FirstName     string          `json:"first_name"`
	BonusEarned   decimal.Decimal `json:"bonus_earned"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalDeposits decimal.Decimal `json:"total_deposits"`
}

// AdminPendingView is a pending transaction joined with the display fields of
// the user who filed it.
type AdminPendingView struct {
	ID          uint            `json:"id"`
	UserID      int64           `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency"`
	CardNumber  string          `json:"card_number,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name"`
}

func (s *Service) GetUser(telegramID int64) (*UserView, error) {
	var user models.User
	if err := s.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", telegramID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", telegramID, err)
	}

	view := &UserView{User: user}

	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ?", telegramID).
		Count(&view.ReferralCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count referrals for %d: %w", telegramID, err)
	}

	err := s.DB.Model(&models.Deposit{}).
		Where("user_id = ? AND status = ?", telegramID, models.DepositStatusActive).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&view.ActiveDeposits)
	if err != nil {
		return nil, fmt.Errorf("failed to sum active deposits for %d: %w", telegramID, err)
	}

	err = s.DB.Model(&models.Referral{}).
		Where("referrer_id = ?", telegramID).
		Select("COALESCE(SUM(bonus_earned), 0)").
		Row().Scan(&view.ReferralEarnings)
	if err != nil {
		return nil, fmt.Errorf("failed to sum referral earnings for %d: %w", telegramID, err)
	}

	return view, nil
}

func (s *Service) GetTransactions(telegramID int64) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.DB.Where("user_id = ?", telegramID).
		Order("created_at DESC").
		Limit(transactionListLimit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for %d: %w", telegramID, err)
	}
	return transactions, nil
}

func (s *Service) GetReferrals(telegramID int64) ([]ReferralView, error) {
	var views []ReferralView
	err := s.DB.Table("referrals").
		Select(`users.telegram_id, users.username, users.first_name,
			referrals.bonus_earned, referrals.created_at,
			COALESCE((SELECT SUM(amount) FROM deposits WHERE deposits.user_id = users.telegram_id), 0) AS total_deposits`).
		Joins("JOIN users ON referrals.referred_id = users.telegram_id").
		Where("referrals.referrer_id = ?", telegramID).
		Order("referrals.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals for %d: %w", telegramID, err)
	}
	return views, nil
}

func (s *Service) GetAdminPending(adminID int64) ([]AdminPendingView, error) {
	if err := requireAdmin(s.DB, adminID); err != nil {
		return nil, err
	}

	var views []AdminPendingView
	err := s.DB.Table("transactions").
		Select(`transactions.id, transactions.user_id, transactions.type, transactions.amount,
			transactions.status, transactions.currency, transactions.card_number,
			transactions.description, transactions.created_at,
			users.username, users.first_name`).
		Joins("JOIN users ON transactions.user_id = users.telegram_id").
		Where("transactions.status = ?", models.TxStatusPending).
		Order("transactions.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	return views, nil
}
