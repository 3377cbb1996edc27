package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/riskwatch/internal/database"
	"github.com/avramidis/riskwatch/internal/modules/marketdata"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
		Name: "history",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	historyDB := marketdata.NewHistoryDB(db.Conn(), zerolog.Nop())
	require.NoError(t, historyDB.InitSchema())

	h := NewHandler(historyDB, zerolog.Nop())

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *chi.Mux, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestPricesEndpoints(t *testing.T) {
	r := newTestRouter(t)

	recPut, bodyPut := doJSON(t, r, http.MethodPut, "/marketdata/prices/RELIANCE.NS",
		`[{"date": "2024-01-01", "close": 100}, {"date": "2024-01-02", "close": 101.5}]`)
	require.Equal(t, http.StatusOK, recPut.Code)
	assert.Equal(t, 2.0, bodyPut["data"].(map[string]interface{})["stored"])

	recGet, bodyGet := doJSON(t, r, http.MethodGet, "/marketdata/prices/RELIANCE.NS", "")
	require.Equal(t, http.StatusOK, recGet.Code)

	prices := bodyGet["data"].(map[string]interface{})["prices"].([]interface{})
	require.Len(t, prices, 2)
	first := prices[0].(map[string]interface{})
	assert.Equal(t, "2024-01-01", first["date"])
	assert.Equal(t, 100.0, first["close"])
}

func TestPutPricesValidation(t *testing.T) {
	r := newTestRouter(t)

	recEmpty, _ := doJSON(t, r, http.MethodPut, "/marketdata/prices/X", `[]`)
	assert.Equal(t, http.StatusBadRequest, recEmpty.Code)

	recBad, _ := doJSON(t, r, http.MethodPut, "/marketdata/prices/X",
		`[{"date": "", "close": 100}]`)
	assert.Equal(t, http.StatusBadRequest, recBad.Code)

	recNeg, _ := doJSON(t, r, http.MethodPut, "/marketdata/prices/X",
		`[{"date": "2024-01-01", "close": -5}]`)
	assert.Equal(t, http.StatusBadRequest, recNeg.Code)
}

func TestPositionsEndpoints(t *testing.T) {
	r := newTestRouter(t)

	recPut, _ := doJSON(t, r, http.MethodPut, "/marketdata/positions/%5ENSEI", `{"value": 10000000}`)
	require.Equal(t, http.StatusOK, recPut.Code)

	recNeg, _ := doJSON(t, r, http.MethodPut, "/marketdata/positions/X", `{"value": -1}`)
	assert.Equal(t, http.StatusBadRequest, recNeg.Code)

	recGet, bodyGet := doJSON(t, r, http.MethodGet, "/marketdata/positions", "")
	require.Equal(t, http.StatusOK, recGet.Code)

	positions := bodyGet["data"].(map[string]interface{})["positions"].([]interface{})
	require.Len(t, positions, 1)
	pos := positions[0].(map[string]interface{})
	assert.Equal(t, "^NSEI", pos["symbol"])
	assert.Equal(t, 10_000_000.0, pos["value"])
}
