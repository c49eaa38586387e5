package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"investa-backend/internal/ledger"
	"investa-backend/internal/models"
)

// Notifier sends best-effort Telegram messages about ledger events. With an
// empty token it is disabled and every call is a no-op, so callers never need
// a nil check.
type Notifier struct {
	bot *telego.Bot
}

func New(token string) (*Notifier, error) {
	if token == "" {
		log.Println("No bot token configured, notifications disabled")
		return &Notifier{}, nil
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Notifier{bot: bot}, nil
}

func (n *Notifier) TransactionApproved(result *ledger.ApprovalResult) {
	if n == nil || n.bot == nil || result == nil {
		return
	}

	trx := result.Transaction
	switch trx.Type {
	case models.TxTypeDeposit:
		n.send(trx.UserID, fmt.Sprintf("✅ Ваша заявка на пополнение на %s₽ одобрена! Депозит активирован.", trx.Amount.StringFixed(2)))
	case models.TxTypeWithdraw:
		n.send(trx.UserID, fmt.Sprintf("✅ Ваша заявка на вывод %s₽ одобрена!", trx.Amount.StringFixed(2)))
	}

	if result.ReferrerID != 0 {
		n.send(result.ReferrerID, fmt.Sprintf("💰 Вам начислен реферальный бонус: %s₽ за депозит друга!", result.ReferralBonus.StringFixed(2)))
	}
	if result.MilestonePaid {
		n.send(result.ReferrerID, "🎉 Вы пригласили 25 друзей и получили бонус 2000₽!")
	}
}

func (n *Notifier) TransactionRejected(trx *models.Transaction) {
	if n == nil || n.bot == nil || trx == nil {
		return
	}

	switch trx.Type {
	case models.TxTypeDeposit:
		n.send(trx.UserID, fmt.Sprintf("❌ Ваша заявка на пополнение на %s₽ отклонена.", trx.Amount.StringFixed(2)))
	case models.TxTypeWithdraw:
		n.send(trx.UserID, fmt.Sprintf("❌ Ваша заявка на вывод %s₽ отклонена. Средства возвращены на баланс.", trx.Amount.StringFixed(2)))
	}
}

func (n *Notifier) send(telegramID int64, text string) {
	_, err := n.bot.SendMessage(context.Background(), tu.Message(tu.ID(telegramID), text))
	if err != nil {
		log.Printf("Failed to send notification to %d: %v", telegramID, err)
	}
}
