package create_block

// CreateBlockRequest HTTP request model
type CreateBlockRequest struct {
	BlockDate string `json:"blockDate"` // "2026-06-15"
	Reason    string `json:"reason,omitempty"`
}
