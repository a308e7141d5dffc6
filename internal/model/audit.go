package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ScanOutcomeToggled  = "toggled"
	ScanOutcomeNotFound = "not_found"
)

// ScanAudit is one row of the scan_events trail, written in the same
// transaction as the status toggle it describes.
type ScanAudit struct {
	ID           uuid.UUID
	RFID         string
	Outcome      string
	StatusBefore string
	StatusAfter  string
	ReadAt       time.Time
}
