package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daytrade_go/internal/domain"

	_ "github.com/glebarez/go-sqlite"
)

// TradeStore persists the append-only trade history in SQLite.
type TradeStore struct {
	db *sql.DB
}

// NewTradeStore opens (or creates) the trade log with WAL mode enabled.
// Pass ":memory:" for an ephemeral store.
func NewTradeStore(dbPath string) (*TradeStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trade_date TEXT NOT NULL,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price REAL NOT NULL,
			profit_rate REAL,
			profit_amount REAL,
			reason TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_trades_date_action ON trades(trade_date, action);`); err != nil {
		return nil, fmt.Errorf("failed to create trades index: %w", err)
	}

	return &TradeStore{db: db}, nil
}

const dateLayout = "2006-01-02"

// Append stores one executed order. The log is append-only; nothing
// updates or deletes rows.
func (s *TradeStore) Append(ctx context.Context, rec domain.TradeHistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (trade_date, symbol, action, quantity, price, profit_rate, profit_amount, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Date.Format(dateLayout), rec.Symbol, string(rec.Action), rec.Quantity,
		rec.Price, rec.ProfitRate, rec.ProfitAmount, rec.Reason, time.Now().UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// CountBuys returns the number of executed BUY records on the given
// calendar day. Drives the daily trade cap.
func (s *TradeStore) CountBuys(ctx context.Context, day time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE trade_date = ? AND action = ?`,
		day.Format(dateLayout), string(domain.ActionBuy),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count buys: %w", err)
	}
	return n, nil
}

// List returns records between from and to inclusive, oldest first.
func (s *TradeStore) List(ctx context.Context, from, to time.Time) ([]domain.TradeHistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trade_date, symbol, action, quantity, price, profit_rate, profit_amount, reason
		 FROM trades WHERE trade_date BETWEEN ? AND ? ORDER BY id ASC`,
		from.Format(dateLayout), to.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeHistoryRecord
	for rows.Next() {
		var (
			rec     domain.TradeHistoryRecord
			day     string
			action  string
			pRate   sql.NullFloat64
			pAmount sql.NullFloat64
		)
		if err := rows.Scan(&day, &rec.Symbol, &action, &rec.Quantity, &rec.Price, &pRate, &pAmount, &rec.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		rec.Date, _ = time.Parse(dateLayout, day)
		rec.Action = domain.TradeAction(action)
		rec.ProfitRate = pRate.Float64
		rec.ProfitAmount = pAmount.Float64
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *TradeStore) Close() error {
	return s.db.Close()
}
