package request

// InvoiceFilterRequest represents invoice filter parameters
type InvoiceFilterRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=OPEN PAID"`
	TableRef string `form:"table_ref"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// MergeInvoicesRequest represents a merge request
type MergeInvoicesRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required,dive,uuid"`
}

// SplitItemsRequest lists the items moved to the new invoice
type SplitItemsRequest struct {
	ItemIDs []string `json:"item_ids" binding:"dive,uuid"`
}

// DiscountRequest represents an apply discount request
type DiscountRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// PayRequest represents a full payment of an invoice
type PayRequest struct {
	Method string `json:"method" binding:"required"`
	Amount *int64 `json:"amount" binding:"required"`
}
