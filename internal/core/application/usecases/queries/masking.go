package queries

import (
	"strings"

	"dispatch/internal/core/domain/model/stop"
)

// publicStatus translates an internal stop status to the label shown on the
// public tracking surface. Unknown values fall back to "processing" so the
// surface never leaks internal state names.
func publicStatus(s stop.Status) string {
	switch s {
	case stop.StatusPending:
		return "processing"
	case stop.StatusEnRoute:
		return "out_for_delivery"
	case stop.StatusArrived:
		return "arriving"
	case stop.StatusCompleted:
		return "delivered"
	case stop.StatusFailed:
		return "delivery_attempted"
	case stop.StatusCancelled:
		return "cancelled"
	case stop.StatusRescheduled:
		return "rescheduled"
	default:
		return "processing"
	}
}

// maskName reduces a recipient name to its first character plus asterisks.
func maskName(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// maskAddress drops the street segment, keeping only what follows the first
// comma. Addresses without a comma are withheld entirely.
func maskAddress(address string) string {
	_, rest, found := strings.Cut(address, ",")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
