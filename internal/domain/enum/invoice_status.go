package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceStatus represents the status of an invoice. The only legal move is OPEN -> PAID.
type InvoiceStatus int

const (
	InvoiceStatusOpen InvoiceStatus = 0
	InvoiceStatusPaid InvoiceStatus = 1
)

func (s InvoiceStatus) String() string {
	names := [...]string{"OPEN", "PAID"}
	if int(s) < 0 || int(s) >= len(names) {
		return "OPEN"
	}
	return names[s]
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	switch str {
	case "OPEN":
		*s = InvoiceStatusOpen
	case "PAID":
		*s = InvoiceStatusPaid
	}
	return nil
}

// ParseInvoiceStatus parses a query-string value
func ParseInvoiceStatus(str string) (InvoiceStatus, bool) {
	switch str {
	case "OPEN", "open":
		return InvoiceStatusOpen, true
	case "PAID", "paid":
		return InvoiceStatusPaid, true
	}
	return InvoiceStatusOpen, false
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}
