package model

import "time"

// InventoryItem is the persisted entity in the itens table. The bridge only
// reads and updates it; creation and deletion belong to the inventory
// administration tooling.
type InventoryItem struct {
	RFID      string
	Name      string
	Status    Status // parsed from RawStatus; StatusUnknown when not recognized
	RawStatus string // stored text as-is, kept for anomaly logs
	UpdatedAt time.Time
}
