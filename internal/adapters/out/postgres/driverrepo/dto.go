// Package driverrepo provides data transfer objects and mapping functions for
// driver persistence. Route reservations are committed with a compare-and-set
// on the active-route counter so concurrent scheduling runs cannot double-book
// a driver.
package driverrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	domaindriver "dispatch/internal/core/domain/model/driver"

	"github.com/google/uuid"
)

// Zones is the set of serviceable zone names serialized as JSON.
type Zones []string

// Value implements driver.Valuer for JSON column storage.
func (z Zones) Value() (driver.Value, error) {
	raw, err := json.Marshal(z)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for JSON column storage.
func (z *Zones) Scan(value any) error {
	if value == nil {
		*z = nil
		return nil
	}

	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, z)
	case string:
		return json.Unmarshal([]byte(raw), z)
	default:
		return fmt.Errorf("cannot scan %T into Zones", value)
	}
}

// DriverDTO represents the database structure for persisting driver aggregates.
type DriverDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string

	VehicleType      string
	CapacityWeightKg float64
	CapacityVolumeM3 float64 `gorm:"column:capacity_volume_m3"`
	HasColdStorage   bool
	Zones            Zones `gorm:"type:jsonb"`

	IsActive    bool `gorm:"index"`
	IsAvailable bool `gorm:"index"`
	IsVerified  bool

	Rating     float64
	OnTimeRate float64

	LocationLatitude  *float64
	LocationLongitude *float64
	LocationSeenAt    *time.Time

	ActiveRouteCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver domain aggregate to its database representation.
func fromDomain(aggregate *domaindriver.Driver) DriverDTO {
	var lat, lng *float64
	if loc := aggregate.CurrentLocation(); loc != nil {
		latitude, longitude := loc.Latitude(), loc.Longitude()
		lat, lng = &latitude, &longitude
	}

	return DriverDTO{
		ID:                aggregate.ID().Bytes(),
		Name:              aggregate.Name(),
		VehicleType:       aggregate.VehicleType(),
		CapacityWeightKg:  aggregate.Capacity().WeightKg(),
		CapacityVolumeM3:  aggregate.Capacity().VolumeM3(),
		HasColdStorage:    aggregate.HasColdStorage(),
		Zones:             aggregate.Zones(),
		IsActive:          aggregate.IsActive(),
		IsAvailable:       aggregate.IsAvailable(),
		IsVerified:        aggregate.IsVerified(),
		Rating:            aggregate.Rating(),
		OnTimeRate:        aggregate.OnTimeRate(),
		LocationLatitude:  lat,
		LocationLongitude: lng,
		LocationSeenAt:    aggregate.LocationSeenAt(),
		ActiveRouteCount:  aggregate.ActiveRouteCount(),
	}
}

// toDomain converts a database DTO to a driver domain aggregate.
func toDomain(dto DriverDTO) (*domaindriver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	capacity, err := kernel.NewCapacity(dto.CapacityWeightKg, dto.CapacityVolumeM3)
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.LocationLatitude != nil && dto.LocationLongitude != nil {
		loc, locErr := kernel.NewLocation(*dto.LocationLatitude, *dto.LocationLongitude)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return domaindriver.RestoreDriver(
		id,
		dto.Name,
		dto.VehicleType,
		capacity,
		dto.HasColdStorage,
		dto.Zones,
		dto.IsActive,
		dto.IsAvailable,
		dto.IsVerified,
		dto.Rating,
		dto.OnTimeRate,
		location,
		dto.LocationSeenAt,
		dto.ActiveRouteCount,
	)
}
