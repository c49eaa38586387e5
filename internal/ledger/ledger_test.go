package ledger

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"investa-backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Deposit{}, &models.Transaction{}, &models.Referral{}))

	return NewService(db)
}

func registerUser(t *testing.T, s *Service, telegramID int64, referrerCode string) *UserView {
	t.Helper()

	view, err := s.Register(telegramID, fmt.Sprintf("user%d", telegramID), "Test", "", referrerCode)
	require.NoError(t, err)
	return view
}

func registerAdmin(t *testing.T, s *Service, telegramID int64) int64 {
	t.Helper()

	registerUser(t, s, telegramID, "")
	err := s.DB.Model(&models.User{}).Where("telegram_id = ?", telegramID).Update("is_admin", true).Error
	require.NoError(t, err)
	return telegramID
}

func setBalance(t *testing.T, s *Service, telegramID int64, amount string) {
	t.Helper()

	err := s.DB.Model(&models.User{}).Where("telegram_id = ?", telegramID).
		Update("balance", decimal.RequireFromString(amount)).Error
	require.NoError(t, err)
}

func balanceOf(t *testing.T, s *Service, telegramID int64) decimal.Decimal {
	t.Helper()

	var user models.User
	require.NoError(t, s.DB.Where("telegram_id = ?", telegramID).First(&user).Error)
	return user.Balance
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}
