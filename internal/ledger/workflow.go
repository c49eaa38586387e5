package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investa-backend/internal/models"
)

// RequestDeposit files a pending top-up request. The balance is only credited
// when an admin approves it.
func (s *Service) RequestDeposit(telegramID int64, amount decimal.Decimal, currency string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount %s: %w", amount, ErrInvalidAmount)
	}
	if currency == "" {
		currency = models.DefaultCurrency
	}

	trx := models.Transaction{
		UserID:      telegramID,
		Type:        models.TxTypeDeposit,
		Amount:      amount,
		Status:      models.TxStatusPending,
		Currency:    currency,
		Description: "Заявка на пополнение",
	}
	if err := s.DB.Create(&trx).Error; err != nil {
		return nil, fmt.Errorf("failed to create deposit request for %d: %w", telegramID, err)
	}
	return &trx, nil
}

// RequestWithdraw debits the balance right away so the same funds cannot back
// two pending withdrawals. Rejection refunds the hold; approval pays it out
// with no further balance change. The sufficiency check and the debit are one
// conditional UPDATE, so concurrent requests cannot both pass.
func (s *Service) RequestWithdraw(telegramID int64, amount decimal.Decimal, cardNumber string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdraw amount %s: %w", amount, ErrInvalidAmount)
	}

	var trx models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("telegram_id = ? AND balance >= ?", telegramID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("withdraw %s for user %d: %w", amount, telegramID, ErrInsufficientBalance)
		}

		trx = models.Transaction{
			UserID:      telegramID,
			Type:        models.TxTypeWithdraw,
			Amount:      amount,
			Status:      models.TxStatusPending,
			CardNumber:  cardNumber,
			Description: "Заявка на вывод",
		}
		return tx.Create(&trx).Error
	})
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// ApprovalResult reports what an approval paid out, so the caller can notify
// the affected users. Referrer fields are zero when no cascade fired.
type ApprovalResult struct {
	Transaction   *models.Transaction
	ReferrerID    int64
	ReferralBonus decimal.Decimal
	MilestonePaid bool
}

// Approve applies an admin decision. A deposit approval creates the active
// deposit, credits the principal and runs the referral cascade; a withdrawal
// approval changes no balance (the hold was taken at request time). Approving
// a transaction that is no longer pending fails without side effects.
func (s *Service) Approve(adminID int64, transactionID uint) (*ApprovalResult, error) {
	result := &ApprovalResult{ReferralBonus: decimal.Zero}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireAdmin(tx, adminID); err != nil {
			return err
		}

		trx, err := loadPending(tx, transactionID)
		if err != nil {
			return err
		}

		if trx.Type == models.TxTypeDeposit {
			deposit := models.Deposit{
				UserID:      trx.UserID,
				Amount:      trx.Amount,
				DailyRate:   depositDailyRate,
				TotalEarned: decimal.Zero,
				Status:      models.DepositStatusActive,
				LastAccrual: time.Now(),
			}
			if err := tx.Create(&deposit).Error; err != nil {
				return err
			}

			// The principal becomes spendable immediately and still accrues.
			if err := tx.Model(&models.User{}).
				Where("telegram_id = ?", trx.UserID).
				Update("balance", gorm.Expr("balance + ?", trx.Amount)).Error; err != nil {
				return err
			}

			if err := s.payReferralBonus(tx, trx.UserID, trx.Amount, result); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := tx.Model(trx).Updates(map[string]interface{}{
			"status":       models.TxStatusCompleted,
			"processed_at": now,
		}).Error; err != nil {
			return err
		}
		trx.Status = models.TxStatusCompleted
		trx.ProcessedAt = &now
		result.Transaction = trx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject refuses a pending transaction. A rejected withdrawal gets its hold
// refunded; a rejected deposit never moved any balance.
func (s *Service) Reject(adminID int64, transactionID uint) (*models.Transaction, error) {
	var rejected *models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireAdmin(tx, adminID); err != nil {
			return err
		}

		trx, err := loadPending(tx, transactionID)
		if err != nil {
			return err
		}

		if trx.Type == models.TxTypeWithdraw {
			if err := tx.Model(&models.User{}).
				Where("telegram_id = ?", trx.UserID).
				Update("balance", gorm.Expr("balance + ?", trx.Amount)).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		if err := tx.Model(trx).Updates(map[string]interface{}{
			"status":       models.TxStatusRejected,
			"processed_at": now,
		}).Error; err != nil {
			return err
		}
		trx.Status = models.TxStatusRejected
		trx.ProcessedAt = &now
		rejected = trx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// payReferralBonus credits the depositor's referrer 25% of the deposit and,
// when this approval pushes them to the referral milestone, pays the one-time
// milestone bonus. The claimed flag flips in the same UPDATE that credits it,
// so concurrent approvals for the same referrer pay the milestone once.
func (s *Service) payReferralBonus(tx *gorm.DB, depositorID int64, amount decimal.Decimal, result *ApprovalResult) error {
	var depositor models.User
	if err := tx.Where("telegram_id = ?", depositorID).First(&depositor).Error; err != nil {
		return err
	}
	if depositor.ReferrerID == nil {
		return nil
	}
	referrerID := *depositor.ReferrerID

	bonus := amount.Mul(referralRate)

	if err := tx.Model(&models.User{}).
		Where("telegram_id = ?", referrerID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", bonus),
			"total_earned": gorm.Expr("total_earned + ?", bonus),
		}).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.Referral{}).
		Where("referrer_id = ? AND referred_id = ?", referrerID, depositorID).
		Update("bonus_earned", gorm.Expr("bonus_earned + ?", bonus)).Error; err != nil {
		return err
	}

	if err := tx.Create(&models.Transaction{
		UserID:      referrerID,
		Type:        models.TxTypeReferral,
		Amount:      bonus,
		Status:      models.TxStatusCompleted,
		Description: "Реферальный бонус 25%",
	}).Error; err != nil {
		return err
	}

	result.ReferrerID = referrerID
	result.ReferralBonus = bonus

	var refCount int64
	if err := tx.Model(&models.Referral{}).Where("referrer_id = ?", referrerID).Count(&refCount).Error; err != nil {
		return err
	}
	if refCount < milestoneReferrals {
		return nil
	}

	res := tx.Model(&models.User{}).
		Where("telegram_id = ? AND referral_bonus_claimed = ?", referrerID, false).
		Updates(map[string]interface{}{
			"balance":                gorm.Expr("balance + ?", milestoneBonus),
			"total_earned":           gorm.Expr("total_earned + ?", milestoneBonus),
			"referral_bonus_claimed": true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil // milestone already paid
	}

	result.MilestonePaid = true
	return tx.Create(&models.Transaction{
		UserID:      referrerID,
		Type:        models.TxTypeBonus,
		Amount:      milestoneBonus,
		Status:      models.TxStatusCompleted,
		Description: "Бонус за 25 рефералов",
	}).Error
}

func requireAdmin(db *gorm.DB, adminID int64) error {
	var admin models.User
	if err := db.Where("telegram_id = ?", adminID).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", adminID, ErrForbidden)
		}
		return fmt.Errorf("failed to load admin %d: %w", adminID, err)
	}
	if !admin.IsAdmin {
		return fmt.Errorf("user %d: %w", adminID, ErrForbidden)
	}
	return nil
}

func loadPending(tx *gorm.DB, transactionID uint) (*models.Transaction, error) {
	var trx models.Transaction
	if err := tx.First(&trx, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transaction %d: %w", transactionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}
	if trx.Status != models.TxStatusPending {
		return nil, fmt.Errorf("transaction %d is %s: %w", transactionID, trx.Status, ErrAlreadyProcessed)
	}
	return &trx, nil
}
