package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
)

// Schema creates the opportunities table. Money columns are NUMERIC and the
// legs with their stakes are kept as JSONB.
const Schema = `
CREATE TABLE IF NOT EXISTS arbitrage_opportunities (
	id              UUID PRIMARY KEY,
	fixture_key     TEXT NOT NULL,
	home_team       TEXT NOT NULL,
	away_team       TEXT NOT NULL,
	league          TEXT,
	start_time      TIMESTAMPTZ,
	market          TEXT NOT NULL,
	legs            JSONB NOT NULL,
	total_implied   NUMERIC(10, 6) NOT NULL,
	profit_percent  NUMERIC(10, 2) NOT NULL,
	total_stake     NUMERIC(14, 2) NOT NULL,
	expected_return NUMERIC(14, 2) NOT NULL,
	expected_profit NUMERIC(14, 2) NOT NULL,
	condition       TEXT NOT NULL,
	detected_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_arbitrage_opportunities_detected_at
	ON arbitrage_opportunities (detected_at DESC);
`

const insertOpportunity = `
	INSERT INTO arbitrage_opportunities (
		id, fixture_key, home_team, away_team, league, start_time,
		market, legs, total_implied, profit_percent, total_stake,
		expected_return, expected_profit, condition, detected_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)
`

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	DSN    string
	Logger *zap.Logger
}

// NewPostgresStorage connects and makes sure the schema exists.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgresStorageFromDB(db, cfg.Logger)

	err = p.Migrate(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cfg.Logger.Info("postgres-storage-connected")

	return p, nil
}

// NewPostgresStorageFromDB wraps an open database handle.
func NewPostgresStorageFromDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}
}

// Ping checks the database connection.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Migrate applies Schema.
func (p *PostgresStorage) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

// storedLeg is a leg as persisted in the legs column.
type storedLeg struct {
	Label  string          `json:"label"`
	Odds   decimal.Decimal `json:"odds"`
	Source string          `json:"source"`
	Stake  decimal.Decimal `json:"stake"`
}

func encodeLegs(opp *arbitrage.Opportunity) ([]byte, error) {
	legs := make([]storedLeg, len(opp.Legs))
	for i, l := range opp.Legs {
		legs[i] = storedLeg{
			Label:  l.Label,
			Odds:   decimal.NewFromFloat(l.Odds),
			Source: l.Source,
		}
		if i < len(opp.StakeDistribution) {
			legs[i].Stake = decimal.NewFromFloat(opp.StakeDistribution[i]).Round(2)
		}
	}

	return json.Marshal(legs)
}

// StoreOpportunity inserts an arbitrage opportunity.
func (p *PostgresStorage) StoreOpportunity(ctx context.Context, opp *arbitrage.Opportunity) error {
	legs, err := encodeLegs(opp)
	if err != nil {
		return fmt.Errorf("encode legs: %w", err)
	}

	var startTime sql.NullTime
	if !opp.StartTime.IsZero() {
		startTime = sql.NullTime{Time: opp.StartTime, Valid: true}
	}

	_, err = p.db.ExecContext(ctx, insertOpportunity,
		opp.ID,
		opp.FixtureKey,
		opp.HomeTeam,
		opp.AwayTeam,
		opp.League,
		startTime,
		opp.Market,
		legs,
		decimal.NewFromFloat(opp.TotalImplied).Round(6),
		decimal.NewFromFloat(opp.ProfitPercent).Round(2),
		decimal.NewFromFloat(opp.TotalStake).Round(2),
		decimal.NewFromFloat(opp.ExpectedReturn).Round(2),
		decimal.NewFromFloat(opp.ExpectedProfit).Round(2),
		opp.Condition,
		opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}

	p.logger.Debug("opportunity-stored",
		zap.String("opportunity-id", opp.ID),
		zap.String("fixture-key", opp.FixtureKey),
		zap.String("market", opp.Market),
		zap.Int("leg-count", len(opp.Legs)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
