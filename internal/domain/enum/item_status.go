package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ItemStatus represents the preparation state of an order item
type ItemStatus int

const (
	ItemStatusPending       ItemStatus = 0
	ItemStatusInProgress    ItemStatus = 1
	ItemStatusReady         ItemStatus = 2
	ItemStatusServed        ItemStatus = 3
	ItemStatusVoidRequested ItemStatus = 4
	ItemStatusVoided        ItemStatus = 5
)

var itemStatusNames = [...]string{"PENDING", "IN_PROGRESS", "READY", "SERVED", "VOID_REQUESTED", "VOIDED"}

// forward edges of the normal preparation flow
var itemForward = map[ItemStatus]ItemStatus{
	ItemStatusPending:    ItemStatusInProgress,
	ItemStatusInProgress: ItemStatusReady,
	ItemStatusReady:      ItemStatusServed,
}

func (s ItemStatus) String() string {
	if int(s) < 0 || int(s) >= len(itemStatusNames) {
		return "UNKNOWN"
	}
	return itemStatusNames[s]
}

// Valid reports whether s is one of the declared statuses
func (s ItemStatus) Valid() bool {
	return s >= ItemStatusPending && s <= ItemStatusVoided
}

// CanAdvanceTo reports whether next is a legal edge of the preparation flow.
// VOID_REQUESTED and VOIDED are reachable only through the void workflow.
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	want, ok := itemForward[s]
	return ok && want == next
}

// Voidable reports whether a void may be requested from s
func (s ItemStatus) Voidable() bool {
	switch s {
	case ItemStatusPending, ItemStatusInProgress, ItemStatusReady, ItemStatusServed:
		return true
	}
	return false
}

// Billable reports whether an item in status s counts towards invoice totals
func (s ItemStatus) Billable() bool {
	return s != ItemStatusVoided
}

func (s ItemStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ItemStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ItemStatus(i)
		return nil
	}
	parsed, ok := ParseItemStatus(str)
	if !ok {
		*s = ItemStatus(-1)
		return nil
	}
	*s = parsed
	return nil
}

// ParseItemStatus parses the wire name of an item status
func ParseItemStatus(str string) (ItemStatus, bool) {
	for i, name := range itemStatusNames {
		if name == str {
			return ItemStatus(i), true
		}
	}
	return ItemStatusPending, false
}

func (s ItemStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ItemStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ItemStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ItemStatus(v)
	case int:
		*s = ItemStatus(v)
	}
	return nil
}
