package request

// OpenShiftRequest represents an open shift request
type OpenShiftRequest struct {
	// TerminalID defaults to the terminal of the session
	TerminalID   string `json:"terminal_id" binding:"omitempty,max=100"`
	OpeningFloat int64  `json:"opening_float" binding:"min=0"`
}

// CloseShiftRequest represents a close shift request
type CloseShiftRequest struct {
	CountedCash *int64 `json:"counted_cash" binding:"required,min=0"`
	Note        string `json:"note" binding:"omitempty,max=1000"`
	Override    bool   `json:"override"`
}
