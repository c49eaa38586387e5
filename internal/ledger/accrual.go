package ledger

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investa-backend/internal/models"
)

// accrualFloor keeps a rapid re-trigger from producing zero-length accruals.
const accrualFloor = time.Minute

var hoursPerDay = decimal.NewFromInt(24)
var percentDivisor = decimal.NewFromInt(100)

// AccrueAll credits simple interest to every active deposit whose last accrual
// is older than the floor interval. Interest is proportional to elapsed
// wall-clock time, not to the number of runs. Each deposit is its own failure
// domain: one bad deposit is logged and skipped, the rest still accrue.
func (s *Service) AccrueAll() (int, error) {
	cutoff := time.Now().Add(-accrualFloor)

	var deposits []models.Deposit
	err := s.DB.Where("status = ? AND last_accrual < ?", models.DepositStatusActive, cutoff).
		Find(&deposits).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list deposits due for accrual: %w", err)
	}

	accrued := 0
	for _, deposit := range deposits {
		ok, err := s.accrueDeposit(deposit.ID)
		if err != nil {
			log.Printf("Failed to accrue deposit %d: %v", deposit.ID, err)
			continue
		}
		if ok {
			accrued++
		}
	}
	return accrued, nil
}

func (s *Service) accrueDeposit(depositID uint) (bool, error) {
	accrued := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var deposit models.Deposit
		if err := tx.First(&deposit, depositID).Error; err != nil {
			return err
		}

		now := time.Now()
		elapsed := now.Sub(deposit.LastAccrual)
		if elapsed < accrualFloor {
			return nil // another run got here first
		}

		hours := decimal.NewFromFloat(elapsed.Hours())
		hourlyRate := deposit.DailyRate.Div(hoursPerDay)
		profit := deposit.Amount.Mul(hourlyRate).Div(percentDivisor).Mul(hours)

		// Guard on the last_accrual we read, so a concurrent accrual of the
		// same deposit cannot both apply (the loser matches zero rows).
		res := tx.Model(&models.Deposit{}).
			Where("id = ? AND last_accrual = ?", depositID, deposit.LastAccrual).
			Updates(map[string]interface{}{
				"total_earned": gorm.Expr("total_earned + ?", profit),
				"last_accrual": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("telegram_id = ?", deposit.UserID).
			Updates(map[string]interface{}{
				"balance":      gorm.Expr("balance + ?", profit),
				"total_earned": gorm.Expr("total_earned + ?", profit),
			}).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.Transaction{
			UserID:      deposit.UserID,
			Type:        models.TxTypeProfit,
			Amount:      profit,
			Status:      models.TxStatusCompleted,
			Description: "Начисление по депозиту",
		}).Error; err != nil {
			return err
		}

		accrued = true
		return nil
	})
	return accrued, err
}
