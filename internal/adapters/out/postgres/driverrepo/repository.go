package driverrepo

import (
	"context"
	"errors"
	"time"

	domaindriver "dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDriverRepository implements DriverRepository using GORM.
type GormDriverRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDriverRepository creates a new GORM driver repository.
func NewGormDriverRepository(db *gorm.DB, tracker aggregateTracker) *GormDriverRepository {
	return &GormDriverRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new driver to the database.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *domaindriver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing driver to the database. All columns are written so
// cleared availability flags round-trip correctly.
func (r *GormDriverRepository) Update(ctx context.Context, aggregate *domaindriver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&DriverDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a driver by ID.
func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*domaindriver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAvailable retrieves active, available drivers ordered by rating then
// on-time percentage, the order the assignment engine breaks ties in. A
// driver with an open route for the service date is not offered again: one
// driver, one route per day.
func (r *GormDriverRepository) GetAllAvailable(ctx context.Context, serviceDate time.Time) ([]*domaindriver.Driver, error) {
	openStatuses := []int{
		int(route.StatusPlanned),
		int(route.StatusOptimized),
		int(route.StatusInProgress),
	}

	var dtos []DriverDTO
	err := r.db.WithContext(ctx).
		Where("is_active AND is_available").
		Where("NOT EXISTS (SELECT 1 FROM routes"+
			" WHERE routes.driver_id = drivers.id"+
			" AND routes.service_date = ? AND routes.status IN ?)",
			serviceDate, openStatuses).
		Order("rating DESC, on_time_rate DESC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	drivers := make([]*domaindriver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		drivers = append(drivers, d)
	}

	return drivers, nil
}

// Reserve commits a route reservation with a compare-and-set on the driver's
// previous active-route count. A row count of zero means another scheduling
// run moved the counter first and the reservation is lost.
func (r *GormDriverRepository) Reserve(ctx context.Context, aggregate *domaindriver.Driver, previousCount int) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&DriverDTO{}).
		Where("id = ? AND active_route_count = ?", dto.ID, previousCount).
		Select("*").Omit("created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ports.ErrDriverReservationConflict
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
