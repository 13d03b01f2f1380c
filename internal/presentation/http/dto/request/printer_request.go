package request

// PrintInvoiceRequest is the request body for printing an invoice slip.
type PrintInvoiceRequest struct {
	// People > 1 adds the split-by-people shares to the slip
	People int `json:"people" binding:"omitempty,min=1,max=100"`
}
