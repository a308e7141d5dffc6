package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rfid-bridge/internal/model"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertScan(ctx context.Context, ext RepoExtension, scan model.ScanAudit) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO scan_events (id, rfid, outcome, status_before, status_after, read_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := ext.Exec(ctx, query,
		scan.ID,
		scan.RFID,
		scan.Outcome,
		scan.StatusBefore,
		scan.StatusAfter,
		scan.ReadAt.Truncate(time.Second),
	)
	if err != nil {
		return err
	}

	return nil
}
