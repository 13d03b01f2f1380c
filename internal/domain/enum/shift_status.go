package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ShiftStatus represents the lifecycle of a cashier shift
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

func (s ShiftStatus) String() string {
	return string(s)
}

func (s ShiftStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *ShiftStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ShiftStatus(str)
	return nil
}

func (s ShiftStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ShiftStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ShiftStatusOpen
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = ShiftStatus(v)
	case []byte:
		*s = ShiftStatus(string(v))
	}
	return nil
}
