package request

// RequestVoidRequest asks a manager to void an item
type RequestVoidRequest struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// ApproveVoidRequest carries the approving manager's credential
type ApproveVoidRequest struct {
	Username string `json:"username" binding:"required"`
	PIN      string `json:"pin" binding:"required"`
}

// RejectVoidRequest represents a reject void request
type RejectVoidRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// DirectVoidRequest voids an item without a pending request
type DirectVoidRequest struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
	Reason string `json:"reason" binding:"required,max=500"`
}
