package round_repo

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	roundsTable        = "rounds"
	colRoundID         = "round_id"
	colFinalMultiplier = "final_multiplier"
	colReason          = "reason"
	colCrashedAt       = "crashed_at"

	wagersTable   = "round_wagers"
	colPlayerID   = "player_id"
	colBetAmount  = "bet_amount"
	colSettled    = "settled"
	colPayout     = "payout"
	colMultiplier = "multiplier"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewRoundRepository(dbc *pgxpool.Pool) repository.RoundRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// SaveRound - persists the settlement record: one round row plus one row per
// participating wager. Meant to run inside a transaction.
func (r *repo) SaveRound(ctx context.Context, record *model.RoundRecord) error {
	conn := r.getter.DefaultTrOrDB(ctx, r.dbc)

	query := sq.Insert(roundsTable).
		Columns(colRoundID, colFinalMultiplier, colReason, colCrashedAt).
		Values(record.RoundID, record.FinalMultiplier, record.Reason, record.CrashedAt).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err = conn.Exec(ctx, sqlStr, args...); err != nil {
		return err
	}

	if len(record.Outcomes) == 0 {
		return nil
	}

	insert := sq.Insert(wagersTable).
		Columns(colRoundID, colPlayerID, colBetAmount, colSettled, colPayout, colMultiplier).
		PlaceholderFormat(sq.Dollar)
	for _, o := range record.Outcomes {
		insert = insert.Values(record.RoundID, o.PlayerID, o.BetAmount, o.Settled, o.Payout, o.Multiplier)
	}

	sqlStr, args, err = insert.ToSql()
	if err != nil {
		return err
	}
	if _, err = conn.Exec(ctx, sqlStr, args...); err != nil {
		return err
	}

	return nil
}

// LastFinalMultipliers - newest-first final multipliers, for display when the
// in-memory history is not enough.
func (r *repo) LastFinalMultipliers(ctx context.Context, limit int) ([]float64, error) {
	query := sq.Select(colFinalMultiplier).
		From(roundsTable).
		OrderBy(colRoundID + " DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.dbc.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var m float64
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
