package domain

import "time"

// Receipt records a completed checkout. Immutable once created; there is no
// update or delete operation, and receipts are retained indefinitely.
type Receipt struct {
	ID        string    `json:"receiptId"`
	Total     float64   `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}
