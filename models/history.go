package models

// HistoryEntry is a resolved stream as it's stored in the stream_history table.
// CreatedAt is a unix timestamp in seconds.
type HistoryEntry struct {
	ID          string `db:"id" json:"id"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	RequestID   string `db:"request_id" json:"request_id"`
	RequestedID string `db:"requested_id" json:"requested_id"`
	ItemID      string `db:"item_id" json:"item_id"`
	Title       string `db:"title" json:"title"`
	Extension   string `db:"extension" json:"extension"`
	Size        int64  `db:"size" json:"size"`
	URL         string `db:"url" json:"url"`
}
