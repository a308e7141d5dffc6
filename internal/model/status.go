package model

import "rfid-bridge/internal/normalize"

// Status is the internal loan state of an item. The store keeps it as free
// text, so conversion happens at the edges: ParseStatus on reads,
// StatusLabels.Text on writes.
type Status int

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusLoaned
)

// Next toggles the status. Total by construction: anything that is not a
// recognized state, including unknown stored text, becomes Loaned.
func (s Status) Next() Status {
	switch s {
	case StatusAvailable:
		return StatusLoaned
	case StatusLoaned:
		return StatusAvailable
	default:
		return StatusLoaned
	}
}

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusLoaned:
		return "Loaned"
	default:
		return "Unknown"
	}
}

// ParseStatus resolves stored status text case- and diacritic-insensitively.
// Deployed databases carry both Portuguese and English spellings, with and
// without accents; all of them resolve here. Unrecognized text is
// StatusUnknown, which is an anomaly to log, never an error.
func ParseStatus(stored string) Status {
	switch normalize.FoldKey(stored) {
	case "DISPONIVEL", "AVAILABLE":
		return StatusAvailable
	case "EMPRESTADO", "LOANED":
		return StatusLoaned
	default:
		return StatusUnknown
	}
}

// StatusLabels is the vocabulary written back to the store and shown on the
// display, configured per deployment.
type StatusLabels struct {
	Available string
	Loaned    string
}

func (l StatusLabels) Text(s Status) string {
	if s == StatusAvailable {
		return l.Available
	}

	return l.Loaned
}
