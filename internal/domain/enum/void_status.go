package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// VoidStatus represents the decision state of a void request
type VoidStatus string

const (
	VoidStatusPending  VoidStatus = "pending"
	VoidStatusApproved VoidStatus = "approved"
	VoidStatusRejected VoidStatus = "rejected"
)

func (s VoidStatus) String() string {
	return string(s)
}

// Terminal reports whether the request has been decided
func (s VoidStatus) Terminal() bool {
	return s == VoidStatusApproved || s == VoidStatusRejected
}

func (s VoidStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *VoidStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = VoidStatus(str)
	return nil
}

func (s VoidStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *VoidStatus) Scan(value interface{}) error {
	if value == nil {
		*s = VoidStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = VoidStatus(v)
	case []byte:
		*s = VoidStatus(string(v))
	}
	return nil
}
