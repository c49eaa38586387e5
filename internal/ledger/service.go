package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investa-backend/internal/models"
)

var (
	chatBonusAmount  = decimal.NewFromFloat(100.00)
	referralRate     = decimal.NewFromFloat(0.25)
	milestoneBonus   = decimal.NewFromFloat(2000.00)
	depositDailyRate = decimal.NewFromFloat(10.6)
)

const milestoneReferrals = 25

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Register creates the user and, when the referrer code resolves, the referral
// edge pointing at them. Calling it again for a known telegram_id just returns
// the current view without touching anything.
func (s *Service) Register(telegramID int64, username, firstName, referralCode, referrerCode string) (*UserView, error) {
	var existing models.User
	err := s.DB.Where("telegram_id = ?", telegramID).First(&existing).Error
	if err == nil {
		return s.GetUser(telegramID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %d: %w", telegramID, err)
	}

	if referralCode == "" {
		referralCode = fmt.Sprintf("ref_%d", telegramID)
	}

	user := models.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		Balance:      decimal.Zero,
		TotalEarned:  decimal.Zero,
		ReferralCode: referralCode,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if referrerCode != "" {
			var referrer models.User
			err := tx.Where("referral_code = ?", referrerCode).First(&referrer).Error
			if err == nil {
				user.ReferrerID = &referrer.TelegramID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// Unknown referrer code: register without a referrer.
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if user.ReferrerID != nil {
			edge := models.Referral{
				ReferrerID:  *user.ReferrerID,
				ReferredID:  telegramID,
				BonusEarned: decimal.Zero,
			}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user %d: %w", telegramID, err)
	}

	return &UserView{
		User:             user,
		ActiveDeposits:   decimal.Zero,
		ReferralEarnings: decimal.Zero,
	}, nil
}

// ClaimChatBonus pays the one-time chat-join bonus. The claimed flag flips in
// the same statement that credits the balance, so two concurrent claims cannot
// both pay out.
func (s *Service) ClaimChatBonus(telegramID int64) (decimal.Decimal, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("telegram_id = ? AND chat_bonus_claimed = ?", telegramID, false).
			Updates(map[string]interface{}{
				"balance":            gorm.Expr("balance + ?", chatBonusAmount),
				"total_earned":       gorm.Expr("total_earned + ?", chatBonusAmount),
				"chat_bonus_claimed": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("telegram_id = ?", telegramID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("user %d: %w", telegramID, ErrNotFound)
			}
			return fmt.Errorf("chat bonus for user %d: %w", telegramID, ErrAlreadyClaimed)
		}

		return tx.Create(&models.Transaction{
			UserID:      telegramID,
			Type:        models.TxTypeBonus,
			Amount:      chatBonusAmount,
			Status:      models.TxStatusCompleted,
			Description: "Бонус за вступление в чат",
		}).Error
	})
	if err != nil {
		return decimal.Zero, err
	}
	return chatBonusAmount, nil
}
