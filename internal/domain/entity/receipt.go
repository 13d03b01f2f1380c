package entity

// ReceiptHeader holds the venue header printed at the top of a slip.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Total     int64  `json:"total"`
}

// Receipt is a value object representing a printable invoice slip.
// It is composed from invoice data at print time and never stored.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	InvoiceNo     string        `json:"invoice_no"`
	Table         string        `json:"table"`
	Date          string        `json:"date"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      int64         `json:"sub_total"`
	Discount      int64         `json:"discount"`
	VATRate       string        `json:"vat_rate"`
	Tax           int64         `json:"tax"`
	Total         int64         `json:"total"`
	// Shares is filled when the slip is printed for a split-by-people request
	Shares []int64 `json:"shares,omitempty"`
}
