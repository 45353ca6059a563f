package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/Sniper/models"
)

// DB represents a database connection holding the bar history cache, the
// trade ledger and the indicator cache.
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection and prepares the schema.
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return bootstrap(db)
}

// bootstrap verifies the connection and prepares the schema, closing the
// handle if either step fails.
func bootstrap(db *sql.DB) (*DB, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			symbol TEXT NOT NULL,
			timeframe INT NOT NULL,
			bar_time TIMESTAMPTZ NOT NULL,
			open DOUBLE PRECISION NOT NULL,
			high DOUBLE PRECISION NOT NULL,
			low DOUBLE PRECISION NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, timeframe, bar_time)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			strategy TEXT NOT NULL,
			action TEXT NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			profit DOUBLE PRECISION NOT NULL DEFAULT 0,
			opened_at TIMESTAMPTZ NOT NULL,
			closed_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS indicator_cache (
			symbol TEXT NOT NULL,
			timeframe INT NOT NULL,
			bar_time TIMESTAMPTZ NOT NULL,
			indicator_name TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, timeframe, bar_time, indicator_name)
		)
	`)
	return err
}

// SaveCandles upserts candles into the bar cache. A later write for the
// same (symbol, timeframe, timestamp) replaces the earlier row.
func (db *DB) SaveCandles(symbol string, timeframe models.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_data (symbol, timeframe, bar_time, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timeframe, bar_time)
		DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.Exec(symbol, int(timeframe), c.Time, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetCandles returns up to count of the most recent cached candles for the
// symbol and timeframe, ordered oldest first.
func (db *DB) GetCandles(symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error) {
	rows, err := db.Query(`
		SELECT bar_time, open, high, low, close, volume
		FROM (
			SELECT bar_time, open, high, low, close, volume
			FROM market_data
			WHERE symbol = $1 AND timeframe = $2
			ORDER BY bar_time DESC
			LIMIT $3
		) latest
		ORDER BY bar_time ASC
	`, symbol, int(timeframe), count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

// SaveTrade appends a trade to the ledger and returns its id.
func (db *DB) SaveTrade(t models.Trade) (int64, error) {
	var closedAt any
	if !t.ClosedAt.IsZero() {
		closedAt = t.ClosedAt
	}

	var id int64
	err := db.QueryRow(`
		INSERT INTO trades (symbol, strategy, action, volume, profit, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, t.Symbol, t.Strategy, string(t.Action), t.Volume, t.Profit, t.OpenedAt, closedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetTradesSince returns ledger trades closed at or after since, oldest
// first.
func (db *DB) GetTradesSince(since time.Time) ([]models.Trade, error) {
	rows, err := db.Query(`
		SELECT id, symbol, strategy, action, volume, profit, opened_at, closed_at
		FROM trades
		WHERE closed_at IS NOT NULL AND closed_at >= $1
		ORDER BY closed_at ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var action string
		var closedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Strategy, &action, &t.Volume, &t.Profit, &t.OpenedAt, &closedAt); err != nil {
			return nil, err
		}
		t.Action = models.TradeAction(action)
		if closedAt.Valid {
			t.ClosedAt = closedAt.Time
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// CacheIndicator upserts a computed indicator value for a bar.
func (db *DB) CacheIndicator(symbol string, timeframe models.Timeframe, barTime time.Time, name string, value float64) error {
	_, err := db.Exec(`
		INSERT INTO indicator_cache (symbol, timeframe, bar_time, indicator_name, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, timeframe, bar_time, indicator_name)
		DO UPDATE SET value = EXCLUDED.value
	`, symbol, int(timeframe), barTime, name, value)
	return err
}

// GetCachedIndicator returns a cached indicator value, or ok=false when the
// cache has no entry.
func (db *DB) GetCachedIndicator(symbol string, timeframe models.Timeframe, barTime time.Time, name string) (float64, bool, error) {
	var value float64
	err := db.QueryRow(`
		SELECT value
		FROM indicator_cache
		WHERE symbol = $1 AND timeframe = $2 AND bar_time = $3 AND indicator_name = $4
	`, symbol, int(timeframe), barTime, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return value, true, nil
}
