package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"investa-backend/internal/ledger"
	"investa-backend/internal/notify"
)

// Server is the transport shim for the mini-app: it parses parameters, calls
// the ledger and encodes the result. No business logic lives here.
type Server struct {
	Ledger   *ledger.Service
	Notifier *notify.Notifier
}

func NewServer(svc *ledger.Service, notifier *notify.Notifier) *Server {
	return &Server{
		Ledger:   svc,
		Notifier: notifier,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Telegram-Init-Data")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	action := r.URL.Query().Get("action")

	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r, action)
	case http.MethodGet:
		s.handleGet(w, r, action)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}

type registerRequest struct {
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	ReferralCode string `json:"referral_code"`
	ReferrerCode string `json:"referrer_code"`
}

type depositRequest struct {
	TelegramID int64           `json:"telegram_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

type withdrawRequest struct {
	TelegramID int64           `json:"telegram_id"`
	Amount     decimal.Decimal `json:"amount"`
	CardNumber string          `json:"card_number"`
}

type claimRequest struct {
	TelegramID int64 `json:"telegram_id"`
}

type decisionRequest struct {
	AdminID       int64 `json:"admin_id"`
	TransactionID uint  `json:"transaction_id"`
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, action string) {
	switch action {
	case "register":
		var req registerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		view, err := s.Ledger.Register(req.TelegramID, req.Username, req.FirstName, req.ReferralCode, req.ReferrerCode)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case "deposit":
		var req depositRequest
		if !decodeBody(w, r, &req) {
			return
		}
		trx, err := s.Ledger.RequestDeposit(req.TelegramID, req.Amount, req.Currency)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, trx)

	case "withdraw":
		var req withdrawRequest
		if !decodeBody(w, r, &req) {
			return
		}
		trx, err := s.Ledger.RequestWithdraw(req.TelegramID, req.Amount, req.CardNumber)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, trx)

	case "claim_chat_bonus":
		var req claimRequest
		if !decodeBody(w, r, &req) {
			return
		}
		amount, err := s.Ledger.ClaimChatBonus(req.TelegramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "amount": amount})

	case "admin_approve":
		var req decisionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := s.Ledger.Approve(req.AdminID, req.TransactionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Notifier.TransactionApproved(result)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	case "admin_reject":
		var req decisionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		trx, err := s.Ledger.Reject(req.AdminID, req.TransactionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Notifier.TransactionRejected(trx)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, action string) {
	if action == "accrue" {
		count, err := s.Ledger.AccrueAll()
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"accrued_count": count})
		return
	}

	telegramID, err := strconv.ParseInt(r.URL.Query().Get("telegram_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid telegram_id"})
		return
	}

	switch action {
	case "user":
		view, err := s.Ledger.GetUser(telegramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case "transactions":
		transactions, err := s.Ledger.GetTransactions(telegramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transactions)

	case "referrals":
		referrals, err := s.Ledger.GetReferrals(telegramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, referrals)

	case "admin_pending":
		pending, err := s.Ledger.GetAdminPending(telegramID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pending)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, ledger.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Insufficient balance"})
	case errors.Is(err, ledger.ErrAlreadyClaimed):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bonus already claimed"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid amount"})
	case errors.Is(err, ledger.ErrAlreadyProcessed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Transaction already processed"})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
