package timing

import "time"

const (
	canonicalLayout = "15:04"
	// Postgres TIME allows 24:00:00 as the end of day
	endOfDay = "24:00"
)

// ToCanonical reduces a stored time ("HH:MM:SS" or "HH:MM") to "HH:MM".
// Missing or unparseable values become "".
func ToCanonical(raw *string) string {
	if raw == nil || len(*raw) < len(canonicalLayout) {
		return ""
	}
	value := (*raw)[:len(canonicalLayout)]
	if value == endOfDay {
		return value
	}
	if _, err := time.Parse(canonicalLayout, value); err != nil {
		return ""
	}
	return value
}

// ToStorage returns the value to write to a time column: NULL for closed days
// and empty values, the canonical value otherwise.
func ToStorage(canonical string, isClosed bool) *string {
	if isClosed || canonical == "" {
		return nil
	}
	return &canonical
}
