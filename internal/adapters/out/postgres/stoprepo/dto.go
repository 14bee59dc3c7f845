// Package stoprepo provides data transfer objects and mapping functions for
// stop persistence. It implements the repository pattern for the stop domain
// aggregate, handling the conversion between domain entities and database
// representations.
package stoprepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"

	"github.com/google/uuid"
)

// StopDTO represents the database structure for persisting stop aggregates.
// Indexed for the repository's access paths: lookup by public reference,
// a route's stops by sequence, and the scheduler's pending-for-date scan.
type StopDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference     string     `gorm:"index"`
	RouteID       *uuid.UUID `gorm:"type:uuid;index"`
	SequenceIndex *int

	Location LocationDTO `gorm:"embedded;embeddedPrefix:location_"`

	RecipientName  string
	RecipientPhone string

	Priority          int
	WindowStart       *time.Time
	WindowEnd         *time.Time
	DemandWeightKg    float64
	DemandVolumeM3    float64 `gorm:"column:demand_volume_m3"`
	RequiresColdChain bool

	ServiceTimeMinutes int

	CodAmount    float64
	CodCollected bool

	Status           int `gorm:"index"`
	EstimatedArrival *time.Time
	ActualArrival    *time.Time

	ProofKind       *int
	ProofReference  *string
	ProofReceivedBy *string
	FailureReason   *string

	ServiceDate time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for stop entities.
func (StopDTO) TableName() string {
	return "stops"
}

// LocationDTO represents the embedded delivery coordinates and address
// within the stops table.
type LocationDTO struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// fromDomain converts a stop domain aggregate to its database representation.
func fromDomain(aggregate *stop.Stop) StopDTO {
	var routeID *uuid.UUID
	if id := aggregate.RouteID(); id != nil {
		raw := id.Bytes()
		routeID = &raw
	}

	var windowStart, windowEnd *time.Time
	if w := aggregate.TimeWindow(); w != nil {
		start, end := w.Start(), w.End()
		windowStart, windowEnd = &start, &end
	}

	var proofKind *int
	var proofReference, proofReceivedBy *string
	if p := aggregate.Proof(); p != nil {
		kind := int(p.Kind())
		reference := p.Reference()
		receivedBy := p.ReceivedBy()
		proofKind, proofReference, proofReceivedBy = &kind, &reference, &receivedBy
	}

	return StopDTO{
		ID:            aggregate.ID().Bytes(),
		Reference:     aggregate.Reference(),
		RouteID:       routeID,
		SequenceIndex: aggregate.Sequence(),
		Location: LocationDTO{
			Latitude:  aggregate.Location().Latitude(),
			Longitude: aggregate.Location().Longitude(),
			Address:   aggregate.Location().Address(),
		},
		RecipientName:      aggregate.RecipientName(),
		RecipientPhone:     aggregate.RecipientPhone(),
		Priority:           int(aggregate.Priority()),
		WindowStart:        windowStart,
		WindowEnd:          windowEnd,
		DemandWeightKg:     aggregate.Demand().WeightKg(),
		DemandVolumeM3:     aggregate.Demand().VolumeM3(),
		RequiresColdChain:  aggregate.RequiresColdChain(),
		ServiceTimeMinutes: aggregate.ServiceTimeMinutes(),
		CodAmount:          aggregate.CODAmount(),
		CodCollected:       aggregate.CODCollected(),
		Status:             int(aggregate.Status()),
		EstimatedArrival:   aggregate.EstimatedArrival(),
		ActualArrival:      aggregate.ActualArrival(),
		ProofKind:          proofKind,
		ProofReference:     proofReference,
		ProofReceivedBy:    proofReceivedBy,
		FailureReason:      aggregate.FailureReason(),
		ServiceDate:        aggregate.ServiceDate(),
	}
}

// toDomain converts a database DTO to a stop domain aggregate using
// RestoreStop, which revalidates every attribute combination.
func toDomain(dto StopDTO) (*stop.Stop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var routeID *kernel.UUID
	if dto.RouteID != nil {
		rID, routeErr := kernel.UUIDFromBytes((*dto.RouteID)[:])
		if routeErr != nil {
			return nil, routeErr
		}
		routeID = &rID
	}

	location, err := kernel.NewLocationWithAddress(
		dto.Location.Latitude, dto.Location.Longitude, dto.Location.Address)
	if err != nil {
		return nil, err
	}

	demand, err := kernel.NewCapacity(dto.DemandWeightKg, dto.DemandVolumeM3)
	if err != nil {
		return nil, err
	}

	var window *stop.TimeWindow
	if dto.WindowStart != nil && dto.WindowEnd != nil {
		w, windowErr := stop.NewTimeWindow(*dto.WindowStart, *dto.WindowEnd)
		if windowErr != nil {
			return nil, windowErr
		}
		window = &w
	}

	var proof *stop.Proof
	if dto.ProofKind != nil && dto.ProofReference != nil && dto.ProofReceivedBy != nil {
		p, proofErr := stop.NewProof(
			stop.ProofKind(*dto.ProofKind), *dto.ProofReference, *dto.ProofReceivedBy)
		if proofErr != nil {
			return nil, proofErr
		}
		proof = &p
	}

	return stop.RestoreStop(
		id,
		dto.Reference,
		location,
		stop.Priority(dto.Priority),
		demand,
		dto.RequiresColdChain,
		dto.ServiceDate,
		stop.Status(dto.Status),
		routeID,
		dto.SequenceIndex,
		dto.RecipientName,
		dto.RecipientPhone,
		window,
		dto.ServiceTimeMinutes,
		dto.CodAmount,
		dto.CodCollected,
		dto.EstimatedArrival,
		dto.ActualArrival,
		proof,
		dto.FailureReason,
	)
}
