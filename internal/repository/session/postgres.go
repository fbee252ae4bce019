package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
	sess "artpay-checkout/internal/session"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a session.Repository backed by the checkout_sessions table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) sess.Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// body is the part of the state kept in the jsonb column.
type body struct {
	Order         *domain.Order         `json:"order,omitempty"`
	Profile       *domain.UserProfile   `json:"profile,omitempty"`
	Vendor        *domain.Vendor        `json:"vendor,omitempty"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	Intent        *domain.PaymentIntent `json:"intent,omitempty"`
}

const columns = `id, user_id, phase, state, show_checkout, redirect_external, cds_order, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, st sess.State) (*sess.State, error) {
	raw, err := encode(st)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO checkout_sessions (id, user_id, phase, state, show_checkout, redirect_external, cds_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + columns
	return r.scan(r.pool.QueryRow(ctx, q,
		st.ID,
		st.UserID,
		string(st.Phase),
		raw,
		st.Flags.ShowCheckout,
		st.Flags.RedirectToExternal,
		st.Flags.CdsOrder,
	))
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*sess.State, error) {
	q := `SELECT ` + columns + ` FROM checkout_sessions WHERE id = $1`
	return r.scan(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) Save(ctx context.Context, st sess.State) error {
	raw, err := encode(st)
	if err != nil {
		return err
	}
	const q = `
UPDATE checkout_sessions
SET user_id = $2, phase = $3, state = $4, show_checkout = $5, redirect_external = $6, cds_order = $7, updated_at = now()
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, q,
		st.ID,
		st.UserID,
		string(st.Phase),
		raw,
		st.Flags.ShowCheckout,
		st.Flags.RedirectToExternal,
		st.Flags.CdsOrder,
	)
	if err != nil {
		r.logger.Error("session repo: save", zap.String("session_id", st.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SaveFlags(ctx context.Context, id string, flags sess.Flags) error {
	const q = `
UPDATE checkout_sessions
SET show_checkout = $2, redirect_external = $3, cds_order = $4, updated_at = now()
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, q, id, flags.ShowCheckout, flags.RedirectToExternal, flags.CdsOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM checkout_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scan(row pgx.Row) (*sess.State, error) {
	var st sess.State
	var phase string
	var raw []byte
	err := row.Scan(
		&st.ID,
		&st.UserID,
		&phase,
		&raw,
		&st.Flags.ShowCheckout,
		&st.Flags.RedirectToExternal,
		&st.Flags.CdsOrder,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("session repo: scan", zap.Error(err))
		return nil, err
	}
	st.Phase = sess.Phase(phase)
	if len(raw) > 0 {
		var b body
		if err := json.Unmarshal(raw, &b); err != nil {
			r.logger.Error("session repo: decode state", zap.String("session_id", st.ID), zap.Error(err))
			return nil, err
		}
		st.Order = b.Order
		st.Profile = b.Profile
		st.Vendor = b.Vendor
		st.PaymentMethod = b.PaymentMethod
		st.Intent = b.Intent
	}
	return &st, nil
}

func encode(st sess.State) ([]byte, error) {
	return json.Marshal(body{
		Order:         st.Order,
		Profile:       st.Profile,
		Vendor:        st.Vendor,
		PaymentMethod: st.PaymentMethod,
		Intent:        st.Intent,
	})
}
