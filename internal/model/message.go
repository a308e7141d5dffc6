package model

// Wire payloads exchanged with the scanner over the broker.

// ScanEvent is the inbound payload on the scan topic.
type ScanEvent struct {
	UID string `json:"uid"`
}

// ToggleResponse is published on the response topic after a successful
// toggle. Both fields are display-sanitized for the scanner's LCD.
type ToggleResponse struct {
	Nome   string `json:"nome"`
	Status string `json:"status"`
}

// NotRegisteredResponse is published on the response topic when the scanned
// tag matches no inventory item.
type NotRegisteredResponse struct {
	Erro string `json:"erro"`
}

// NotFoundAlert is the alert-topic payload in the original firmware's key
// convention.
type NotFoundAlert struct {
	UID  string `json:"uid"`
	Hora string `json:"hora"`
}

// NotFoundAlertPlain is the same alert with the plain key convention; which
// one goes out is a topics configuration choice.
type NotFoundAlertPlain struct {
	Identifier string `json:"identifier"`
	Time       string `json:"time"`
}
