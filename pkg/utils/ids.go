package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateInvoiceNo generates a unique, date-prefixed invoice number, e.g. INV-20261015-1A2B3C4D
func GenerateInvoiceNo(now time.Time) string {
	return "INV-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// ParseUUIDs parses a list of ids, stopping at the first malformed one
func ParseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
