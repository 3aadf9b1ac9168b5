package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"example/chess-history/app/config"
	"example/chess-history/app/logging"
	"example/chess-history/app/models"

	"github.com/lib/pq"
)

// Sink accepts a cleaned table and appends it under its identity.
type Sink interface {
	Append(ctx context.Context, tbl models.GameTable) error
}

// TableStore is a Sink that can also read an identity's rows back.
type TableStore interface {
	Sink
	LoadTable(ctx context.Context, identity string) (models.GameTable, error)
}

var errNoDB = errors.New("postgres not configured")

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS player_games (
		id                 BIGSERIAL PRIMARY KEY,
		identity           TEXT        NOT NULL,
		identity_rating    INT         NOT NULL,
		opponent_rating    INT         NOT NULL,
		identity_accuracy  DOUBLE PRECISION,
		opponent_accuracy  DOUBLE PRECISION,
		end_time           TIMESTAMPTZ NOT NULL,
		time_class         TEXT        NOT NULL,
		ingested_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS player_games_identity_end_time
		ON player_games (identity, end_time);
`

// OpenDB connects and pings. It returns (nil, nil) when no host is set so
// callers can run without persistence.
func OpenDB(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, nil
	}

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return nil, err
	}
	logging.Named("db").Info().Str("host", cfg.URL).Msg("connected to postgres")
	return d, nil
}

// PostgresSink stores every identity's games in player_games, append-only.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errNoDB
	}
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// Append COPYs the table's rows in one transaction. Empty tables are a no-op.
func (s *PostgresSink) Append(ctx context.Context, tbl models.GameTable) error {
	if s.db == nil {
		return errNoDB
	}
	if tbl.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"player_games",
		"identity",
		"identity_rating",
		"opponent_rating",
		"identity_accuracy",
		"opponent_accuracy",
		"end_time",
		"time_class",
	))
	if err != nil {
		return err
	}

	for _, g := range tbl.Games {
		if _, err := stmt.ExecContext(ctx, copyRow(tbl.Identity, g)...); err != nil {
			stmt.Close()
			return err
		}
	}

	// finish COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

func copyRow(identity string, g models.CleanedGame) []any {
	return []any{
		identity,
		g.IdentityRating,
		g.OpponentRating,
		nullFloat(g.IdentityAccuracy),
		nullFloat(g.OpponentAccuracy),
		g.EndTime,
		g.TimeClass,
	}
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// LoadTable reads everything stored for identity in insertion order.
func (s *PostgresSink) LoadTable(ctx context.Context, identity string) (models.GameTable, error) {
	tbl := emptyTable(identity)
	if s.db == nil {
		return tbl, errNoDB
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			identity_rating,
			opponent_rating,
			identity_accuracy,
			opponent_accuracy,
			end_time,
			time_class
		FROM player_games
		WHERE identity = $1
		ORDER BY id
	`, identity)
	if err != nil {
		return tbl, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			g        models.CleanedGame
			idAcc    sql.NullFloat64
			oppAcc   sql.NullFloat64
			finished time.Time
		)
		if err := rows.Scan(
			&g.IdentityRating,
			&g.OpponentRating,
			&idAcc,
			&oppAcc,
			&finished,
			&g.TimeClass,
		); err != nil {
			return tbl, err
		}
		g.EndTime = finished.UTC()
		if idAcc.Valid {
			v := idAcc.Float64
			g.IdentityAccuracy = &v
			tbl.HasAccuracy = true
		}
		if oppAcc.Valid {
			v := oppAcc.Float64
			g.OpponentAccuracy = &v
			tbl.HasAccuracy = true
		}
		tbl.Games = append(tbl.Games, g)
	}
	return tbl, rows.Err()
}
