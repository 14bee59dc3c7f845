// Package routerepo provides data transfer objects and mapping functions for
// route persistence. The ordered stop sequence is stored as a JSON column so
// the permutation survives round-trips without a join table.
package routerepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// StopSequence is the ordered list of stop ids serialized as JSON.
type StopSequence []uuid.UUID

// Value implements driver.Valuer for JSON column storage.
func (s StopSequence) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for JSON column storage.
func (s *StopSequence) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, s)
	case string:
		return json.Unmarshal([]byte(raw), s)
	default:
		return fmt.Errorf("cannot scan %T into StopSequence", value)
	}
}

// RouteDTO represents the database structure for persisting route aggregates.
type RouteDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DriverID     uuid.UUID `gorm:"type:uuid;index"`
	ServiceDate  time.Time `gorm:"index"`
	PlannedStart time.Time

	StopSequence StopSequence `gorm:"type:jsonb"`

	Status int `gorm:"index"`

	TotalDistanceKm      float64
	TotalDurationMinutes float64
	OptimizationMethod   string
	OptimizationScore    float64
	OptimizedAt          *time.Time

	ProgressPending   int
	ProgressCompleted int
	ProgressFailed    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for route entities.
func (RouteDTO) TableName() string {
	return "routes"
}

// fromDomain converts a route domain aggregate to its database representation.
func fromDomain(aggregate *route.Route) RouteDTO {
	ids := aggregate.StopIDs()
	sequence := make(StopSequence, 0, len(ids))
	for _, id := range ids {
		sequence = append(sequence, id.Bytes())
	}

	progress := aggregate.Progress()
	return RouteDTO{
		ID:                   aggregate.ID().Bytes(),
		DriverID:             aggregate.DriverID().Bytes(),
		ServiceDate:          aggregate.ServiceDate(),
		PlannedStart:         aggregate.PlannedStart(),
		StopSequence:         sequence,
		Status:               int(aggregate.Status()),
		TotalDistanceKm:      aggregate.TotalDistanceKm(),
		TotalDurationMinutes: aggregate.TotalDurationMinutes(),
		OptimizationMethod:   aggregate.OptimizationMethod(),
		OptimizationScore:    aggregate.OptimizationScore(),
		OptimizedAt:          aggregate.OptimizedAt(),
		ProgressPending:      progress.Pending,
		ProgressCompleted:    progress.Completed,
		ProgressFailed:       progress.Failed,
	}
}

// toDomain converts a database DTO to a route domain aggregate.
func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	stopIDs := make([]kernel.UUID, 0, len(dto.StopSequence))
	for _, raw := range dto.StopSequence {
		stopID, stopErr := kernel.UUIDFromBytes(raw[:])
		if stopErr != nil {
			return nil, stopErr
		}
		stopIDs = append(stopIDs, stopID)
	}

	return route.RestoreRoute(
		id,
		driverID,
		dto.ServiceDate,
		dto.PlannedStart,
		stopIDs,
		route.Status(dto.Status),
		dto.TotalDistanceKm,
		dto.TotalDurationMinutes,
		dto.OptimizationMethod,
		dto.OptimizationScore,
		dto.OptimizedAt,
		route.Progress{
			Pending:   dto.ProgressPending,
			Completed: dto.ProgressCompleted,
			Failed:    dto.ProgressFailed,
		},
	)
}
