package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rfid-bridge/internal/apperrors"
	"rfid-bridge/internal/model"
)

type ItemRepository struct {
	db     *pgxpool.Pool
	labels model.StatusLabels
}

func NewItemRepository(db *pgxpool.Pool, labels model.StatusLabels) *ItemRepository {
	return &ItemRepository{
		db:     db,
		labels: labels,
	}
}

func (r *ItemRepository) Pool() *pgxpool.Pool {
	return r.db
}

// SelectItemByRFID looks an item up case- and whitespace-insensitively on
// both sides of the comparison, matching how the tags were loaded into the
// table by hand.
func (r *ItemRepository) SelectItemByRFID(ctx context.Context, ext RepoExtension, uid string) (*model.InventoryItem, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT rfid, nome, status, ultima_atualizacao
		FROM itens
		WHERE UPPER(TRIM(rfid)) = UPPER(TRIM($1));
	`

	var item model.InventoryItem

	if err := ext.QueryRow(ctx, query, uid).Scan(
		&item.RFID,
		&item.Name,
		&item.RawStatus,
		&item.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrItemNotFound
		}

		return nil, err
	}

	item.Status = model.ParseStatus(item.RawStatus)

	return &item, nil
}

// UpdateItemStatus writes the new status text and the last-updated timestamp.
// The timestamp is truncated to seconds before persisting.
func (r *ItemRepository) UpdateItemStatus(ctx context.Context, ext RepoExtension, uid string, status model.Status, ts time.Time) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE itens
		SET status = $1, ultima_atualizacao = $2
		WHERE UPPER(TRIM(rfid)) = UPPER(TRIM($3));
	`

	tag, err := ext.Exec(ctx, query, r.labels.Text(status), ts.Truncate(time.Second), uid)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrItemNotFound
	}

	return nil
}
