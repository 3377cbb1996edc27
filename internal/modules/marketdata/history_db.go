// Package marketdata stores the price history and position values that feed
// the risk engines. It is glue around SQLite; no risk math lives here.
package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// DailyPrice is one closing price observation.
type DailyPrice struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// Position is the currency value held in one instrument.
type Position struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// HistoryDB provides access to historical price data and position values
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// InitSchema creates the tables if they do not exist
func (h *HistoryDB) InitSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		);
		CREATE INDEX IF NOT EXISTS idx_daily_prices_symbol_date
			ON daily_prices (symbol, date);

		CREATE TABLE IF NOT EXISTS positions (
			symbol TEXT PRIMARY KEY,
			value  REAL NOT NULL
		);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// UpsertPrices inserts or replaces daily closes for a symbol
func (h *HistoryDB) UpsertPrices(symbol string, prices []DailyPrice) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (symbol, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(symbol, p.Date, p.Close); err != nil {
			return fmt.Errorf("failed to upsert price for %s on %s: %w", symbol, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price upsert: %w", err)
	}

	h.log.Debug().Str("symbol", symbol).Int("count", len(prices)).Msg("Upserted daily prices")
	return nil
}

// GetDailyPrices fetches the most recent daily prices for a symbol,
// returned in ascending date order (oldest first)
func (h *HistoryDB) GetDailyPrices(symbol string, limit int) ([]DailyPrice, error) {
	query := `
		SELECT date, close
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := h.db.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var p DailyPrice
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	// Reverse to ascending date order
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}

	return prices, nil
}

// GetClosePrices fetches the most recent closes for a symbol as a plain
// series in ascending date order, ready for the returns engine
func (h *HistoryDB) GetClosePrices(symbol string, limit int) ([]float64, error) {
	prices, err := h.GetDailyPrices(symbol, limit)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	return closes, nil
}

// UpsertPosition inserts or replaces a position value
func (h *HistoryDB) UpsertPosition(pos Position) error {
	_, err := h.db.Exec(`
		INSERT INTO positions (symbol, value)
		VALUES (?, ?)
		ON CONFLICT (symbol) DO UPDATE SET value = excluded.value
	`, pos.Symbol, pos.Value)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", pos.Symbol, err)
	}
	return nil
}

// GetPositions returns all position values, ordered by symbol
func (h *HistoryDB) GetPositions() ([]Position, error) {
	rows, err := h.db.Query(`SELECT symbol, value FROM positions ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Symbol, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetPosition returns the position value for a symbol, or nil when absent
func (h *HistoryDB) GetPosition(symbol string) (*Position, error) {
	var p Position
	err := h.db.QueryRow(`SELECT symbol, value FROM positions WHERE symbol = ?`, symbol).
		Scan(&p.Symbol, &p.Value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position %s: %w", symbol, err)
	}
	return &p, nil
}
