package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"investa-backend/internal/ledger"
	"investa-backend/internal/models"
	"investa-backend/internal/notify"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Deposit{}, &models.Transaction{}, &models.Referral{}))

	notifier, err := notify.New("")
	require.NoError(t, err)

	return NewServer(ledger.NewService(db), notifier)
}

func doJSON(t *testing.T, srv *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/?action=register", map[string]interface{}{
		"telegram_id": 100,
		"username":    "alice",
		"first_name":  "Alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, float64(100), view["telegram_id"])
	assert.Equal(t, "ref_100", view["referral_code"])
	assert.Equal(t, "0", view["balance"])
}

func TestWithdrawInsufficientBalanceMapsTo400(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/?action=register", map[string]interface{}{"telegram_id": 100})

	rec := doJSON(t, srv, http.MethodPost, "/?action=withdraw", map[string]interface{}{
		"telegram_id": 100,
		"amount":      500,
		"card_number": "1234",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient balance")
}

func TestAdminPendingForbiddenForNonAdmin(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/?action=register", map[string]interface{}{"telegram_id": 100})

	rec := doJSON(t, srv, http.MethodGet, "/?action=admin_pending&telegram_id=100", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownUserMapsTo404(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/?action=user&telegram_id=999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownActionMapsTo404(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/?action=bogus&telegram_id=1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodOptions, "/?action=register", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccrueEndpointReturnsCount(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/?action=accrue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accrued_count": 0}`, rec.Body.String())
}
