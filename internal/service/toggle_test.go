package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rfid-bridge/internal/apperrors"
	"rfid-bridge/internal/model"
	"rfid-bridge/internal/repository"
)

var testLabels = model.StatusLabels{Available: "Available", Loaned: "Loaned"}

// fakeTx satisfies pgx.Tx far enough for the pipeline: begin, commit,
// rollback and nothing else.
type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Begin(_ context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(_ context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}

	t.committed = true

	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}

	t.rolledBack = true

	return nil
}

func (t *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

type fakeDB struct {
	tx     *fakeTx
	begins int
}

func (db *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	db.begins++
	return db.tx, nil
}

type fakeItems struct {
	item      *model.InventoryItem
	selectErr error
	updateErr error

	updatedUID    string
	updatedStatus model.Status
	updatedAt     time.Time
	updates       int
}

func (f *fakeItems) SelectItemByRFID(_ context.Context, _ repository.RepoExtension, _ string) (*model.InventoryItem, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}

	return f.item, nil
}

func (f *fakeItems) UpdateItemStatus(_ context.Context, _ repository.RepoExtension, uid string, status model.Status, ts time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.updates++
	f.updatedUID = uid
	f.updatedStatus = status
	f.updatedAt = ts

	return nil
}

type fakeAudit struct {
	scans     []model.ScanAudit
	insertErr error
}

func (f *fakeAudit) InsertScan(_ context.Context, _ repository.RepoExtension, scan model.ScanAudit) error {
	if f.insertErr != nil {
		return f.insertErr
	}

	f.scans = append(f.scans, scan)

	return nil
}

func newTestService(db *fakeDB, items *fakeItems, audit *fakeAudit) *ToggleService {
	return NewToggleService(zap.NewNop(), db, items, audit, testLabels)
}

func TestHandleScanTogglesAvailableItem(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{item: &model.InventoryItem{
		RFID:      "AB12",
		Name:      "Arduino Uno",
		Status:    model.StatusAvailable,
		RawStatus: "Available",
	}}
	audit := &fakeAudit{}

	out, err := newTestService(db, items, audit).HandleScan(context.Background(), " ab12 ")
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, "ab12", out.UID)
	assert.Equal(t, model.StatusLoaned, out.NewStatus)
	assert.Equal(t, "Loaned", out.StatusText)
	assert.Zero(t, out.ReadAt.Nanosecond())

	assert.Equal(t, 1, items.updates)
	assert.Equal(t, "ab12", items.updatedUID)
	assert.Equal(t, model.StatusLoaned, items.updatedStatus)

	require.Len(t, audit.scans, 1)
	assert.Equal(t, model.ScanOutcomeToggled, audit.scans[0].Outcome)
	assert.Equal(t, "Available", audit.scans[0].StatusBefore)
	assert.Equal(t, "Loaned", audit.scans[0].StatusAfter)
	assert.Equal(t, out.ScanID, audit.scans[0].ID)

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestHandleScanTogglesLoanedBack(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{item: &model.InventoryItem{
		RFID:      "AB12",
		Status:    model.StatusLoaned,
		RawStatus: "Loaned",
	}}
	audit := &fakeAudit{}

	out, err := newTestService(db, items, audit).HandleScan(context.Background(), "AB12")
	require.NoError(t, err)

	assert.Equal(t, model.StatusAvailable, out.NewStatus)
	assert.Equal(t, "Available", out.StatusText)
}

func TestHandleScanUnknownStatusBecomesLoaned(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{item: &model.InventoryItem{
		RFID:      "AB12",
		Status:    model.StatusUnknown,
		RawStatus: "quebrado",
	}}
	audit := &fakeAudit{}

	out, err := newTestService(db, items, audit).HandleScan(context.Background(), "AB12")
	require.NoError(t, err)

	assert.Equal(t, model.StatusLoaned, out.NewStatus)
	require.Len(t, audit.scans, 1)
	assert.Equal(t, "quebrado", audit.scans[0].StatusBefore)
	assert.True(t, tx.committed)
}

func TestHandleScanNotFound(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{selectErr: apperrors.ErrItemNotFound}
	audit := &fakeAudit{}

	out, err := newTestService(db, items, audit).HandleScan(context.Background(), "ZZ99")
	require.NoError(t, err)

	assert.False(t, out.Found)
	assert.Nil(t, out.Item)
	assert.Equal(t, 0, items.updates)

	require.Len(t, audit.scans, 1)
	assert.Equal(t, model.ScanOutcomeNotFound, audit.scans[0].Outcome)
	assert.Equal(t, "ZZ99", audit.scans[0].RFID)

	assert.True(t, tx.committed)
}

func TestHandleScanUpdateErrorRollsBack(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{
		item:      &model.InventoryItem{RFID: "AB12", Status: model.StatusAvailable, RawStatus: "Available"},
		updateErr: errors.New("connection reset"),
	}
	audit := &fakeAudit{}

	_, err := newTestService(db, items, audit).HandleScan(context.Background(), "AB12")
	require.Error(t, err)

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	assert.Empty(t, audit.scans)
}

func TestHandleScanAuditErrorRollsBackToggle(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{item: &model.InventoryItem{RFID: "AB12", Status: model.StatusAvailable, RawStatus: "Available"}}
	audit := &fakeAudit{insertErr: errors.New("disk full")}

	_, err := newTestService(db, items, audit).HandleScan(context.Background(), "AB12")
	require.Error(t, err)

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestHandleScanEmptyUID(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}

	_, err := newTestService(db, &fakeItems{}, &fakeAudit{}).HandleScan(context.Background(), "   ")
	require.ErrorIs(t, err, apperrors.ErrEmptyUID)

	assert.Equal(t, 0, db.begins)
}

func TestHandleScanStoreErrorIsNotFatal(t *testing.T) {
	// a failed scan leaves the service usable for the next message
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	items := &fakeItems{selectErr: errors.New("query canceled")}
	svc := newTestService(db, items, &fakeAudit{})

	_, err := svc.HandleScan(context.Background(), "AB12")
	require.Error(t, err)
	assert.True(t, tx.rolledBack)

	items.selectErr = nil
	items.item = &model.InventoryItem{RFID: "AB12", Status: model.StatusAvailable, RawStatus: "Available"}
	db.tx = &fakeTx{}

	out, err := svc.HandleScan(context.Background(), "AB12")
	require.NoError(t, err)
	assert.True(t, out.Found)
}
