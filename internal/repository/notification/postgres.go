package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"artpay-checkout/internal/notify"
)

type postgresLedger struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a notify.Ledger backed by the order_notifications table.
// The primary key on (order_id, kind) makes a claim atomic across processes.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) notify.Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresLedger{pool: pool, logger: logger}
}

func (l *postgresLedger) Claim(ctx context.Context, orderID int64, kind string) (bool, error) {
	const q = `
INSERT INTO order_notifications (order_id, kind)
VALUES ($1, $2)
ON CONFLICT (order_id, kind) DO NOTHING
`
	tag, err := l.pool.Exec(ctx, q, orderID, kind)
	if err != nil {
		l.logger.Error("notification ledger: claim",
			zap.Int64("order_id", orderID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (l *postgresLedger) Release(ctx context.Context, orderID int64, kind string) error {
	_, err := l.pool.Exec(ctx, `DELETE FROM order_notifications WHERE order_id = $1 AND kind = $2`, orderID, kind)
	return err
}
