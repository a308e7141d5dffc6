package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rfid-bridge/internal/apperrors"
	"rfid-bridge/internal/model"
	"rfid-bridge/internal/normalize"
	"rfid-bridge/internal/repository"
)

type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ItemRepository interface {
	SelectItemByRFID(ctx context.Context, ext repository.RepoExtension, uid string) (*model.InventoryItem, error)
	UpdateItemStatus(ctx context.Context, ext repository.RepoExtension, uid string, status model.Status, ts time.Time) error
}

type AuditRepository interface {
	InsertScan(ctx context.Context, ext repository.RepoExtension, scan model.ScanAudit) error
}

// ToggleOutcome is what one handled scan produced. Found == false is the
// not-registered branch, a defined outcome rather than an error.
type ToggleOutcome struct {
	ScanID     uuid.UUID
	UID        string
	Found      bool
	Item       *model.InventoryItem
	NewStatus  model.Status
	StatusText string
	ReadAt     time.Time
}

type ToggleService struct {
	log    *zap.Logger
	db     DB
	items  ItemRepository
	audit  AuditRepository
	labels model.StatusLabels
}

func NewToggleService(log *zap.Logger, db DB, items ItemRepository, audit AuditRepository, labels model.StatusLabels) *ToggleService {
	return &ToggleService{
		log:    log,
		db:     db,
		items:  items,
		audit:  audit,
		labels: labels,
	}
}

// HandleScan runs the whole toggle pipeline for one scanned uid: lookup,
// toggle policy, status update and audit row, all in one transaction so a
// partially-applied update never persists. A store error rolls back and is
// returned for logging; it is never fatal to the process.
func (s *ToggleService) HandleScan(ctx context.Context, rawUID string) (out *ToggleOutcome, err error) {
	uid := normalize.UID(rawUID)
	if uid == "" {
		return nil, apperrors.ErrEmptyUID
	}

	out = &ToggleOutcome{
		ScanID: uuid.New(),
		UID:    uid,
		ReadAt: time.Now().Truncate(time.Second),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w, failed to rollback transaction: %w", err, rErr)
			}
		}
	}()

	item, err := s.items.SelectItemByRFID(ctx, tx, uid)
	if err != nil {
		if errors.Is(err, apperrors.ErrItemNotFound) {
			return s.finishNotFound(ctx, tx, out)
		}

		return nil, fmt.Errorf("failed to select item: %w", err)
	}

	if item.Status == model.StatusUnknown {
		s.log.Warn("Stored status is not a recognized value, toggling to loaned",
			zap.String("scan_id", out.ScanID.String()),
			zap.String("uid", uid),
			zap.String("stored_status", item.RawStatus),
		)
	}

	next := item.Status.Next()

	if err = s.items.UpdateItemStatus(ctx, tx, uid, next, out.ReadAt); err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}

	if err = s.audit.InsertScan(ctx, tx, model.ScanAudit{
		ID:           out.ScanID,
		RFID:         uid,
		Outcome:      model.ScanOutcomeToggled,
		StatusBefore: item.RawStatus,
		StatusAfter:  s.labels.Text(next),
		ReadAt:       out.ReadAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to insert scan audit: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	out.Found = true
	out.Item = item
	out.NewStatus = next
	out.StatusText = s.labels.Text(next)

	return out, nil
}

// finishNotFound records the miss and commits; the caller still publishes
// the not-registered response and the alert.
func (s *ToggleService) finishNotFound(ctx context.Context, tx pgx.Tx, out *ToggleOutcome) (*ToggleOutcome, error) {
	if err := s.audit.InsertScan(ctx, tx, model.ScanAudit{
		ID:      out.ScanID,
		RFID:    out.UID,
		Outcome: model.ScanOutcomeNotFound,
		ReadAt:  out.ReadAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to insert scan audit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	out.Found = false

	return out, nil
}
