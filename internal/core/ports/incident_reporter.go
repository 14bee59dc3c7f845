package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Incident describes a critical delivery failure that operations must review.
type Incident struct {
	StopID     kernel.UUID
	RouteID    *kernel.UUID
	DriverID   *kernel.UUID
	Reason     string
	ReportedAt time.Time
}

// IncidentReporter raises incident reports for critical failure reasons.
type IncidentReporter interface {
	Report(ctx context.Context, incident Incident) error
}
