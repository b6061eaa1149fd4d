package recommend

import (
	"strings"
	"time"

	"github.com/votelane/reco-service/internal/recplatform"
)

// ActiveItems drops candidates that are not currently valid: draft or
// cancelled status, or an end date strictly in the past. End dates without
// an explicit offset are treated as UTC, and dates we cannot parse at all
// keep the item (fail open) rather than hiding it.
func ActiveItems(items []recplatform.Item, now time.Time) []recplatform.Item {
	out := make([]recplatform.Item, 0, len(items))
	for _, it := range items {
		if !listableStatus(it.Status) {
			continue
		}
		if end, ok := parseEndDate(it.EndDate); ok && end.Before(now) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func listableStatus(status string) bool {
	switch strings.ToLower(status) {
	case "draft", "cancelled", "canceled":
		return false
	}
	return true
}

// parseEndDate normalizes the platform's loosely formatted timestamps.
// Returns ok=false when the value is empty or unparsable.
func parseEndDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}

	// No offset marker: treat as UTC.
	candidates := []string{s + "Z", strings.Replace(s, " ", "T", 1) + "Z"}
	for _, c := range candidates {
		if t, err := time.Parse(time.RFC3339, c); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
