package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReceiptRepository defines interactions for read receipts.
type ReceiptRepository interface {
	InsertReceipts(ctx context.Context, messageIDs []int, userID int) error
}

// ReceiptRepo is a sqlx-backed repository.
type ReceiptRepo struct {
	db *sqlx.DB
}

// NewReceiptRepo constructs a ReceiptRepo.
func NewReceiptRepo(db *sqlx.DB) *ReceiptRepo {
	return &ReceiptRepo{db: db}
}

// InsertReceipts records one receipt per message id for the user.
// Existing (message, user) pairs are skipped, so retries and
// overlapping calls are harmless.
func (r *ReceiptRepo) InsertReceipts(ctx context.Context, messageIDs []int, userID int) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_read_receipts (message_id, user_id)
        SELECT unnest($1::int[]), $2
        ON CONFLICT (message_id, user_id) DO NOTHING`, pq.Array(messageIDs), userID)
	return err
}
