package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStopRepository struct{ mock.Mock }

func (m *MockStopRepository) Add(ctx context.Context, s *stop.Stop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStopRepository) Update(ctx context.Context, s *stop.Stop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStopRepository) Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stop.Stop), args.Error(1)
}

func (m *MockStopRepository) GetByReference(ctx context.Context, reference string) (*stop.Stop, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stop.Stop), args.Error(1)
}

func (m *MockStopRepository) GetPendingForDate(ctx context.Context, date time.Time) ([]*stop.Stop, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stop.Stop), args.Error(1)
}

func (m *MockStopRepository) GetByRouteID(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stop.Stop), args.Error(1)
}

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) GetInProgressByDriver(ctx context.Context, driverID kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) GetInProgressByDriverAndDate(
	ctx context.Context, driverID kernel.UUID, serviceDate time.Time,
) ([]*route.Route, error) {
	args := m.Called(ctx, driverID, serviceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Route), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetAllAvailable(ctx context.Context, serviceDate time.Time) ([]*driver.Driver, error) {
	args := m.Called(ctx, serviceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) Reserve(ctx context.Context, d *driver.Driver, previousCount int) error {
	args := m.Called(ctx, d, previousCount)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) StopRepository() ports.StopRepository {
	args := m.Called()
	return args.Get(0).(ports.StopRepository)
}

func (m *MockUoW) RouteRepository() ports.RouteRepository {
	args := m.Called()
	return args.Get(0).(ports.RouteRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockStopUoWFactory struct{ mock.Mock }

func (m *MockStopUoWFactory) Create() commands.StopUoW {
	args := m.Called()
	return args.Get(0).(commands.StopUoW)
}

type MockStopRouteUoWFactory struct{ mock.Mock }

func (m *MockStopRouteUoWFactory) Create() commands.StopRouteUoW {
	args := m.Called()
	return args.Get(0).(commands.StopRouteUoW)
}

type MockTrackingStateStore struct{ mock.Mock }

func (m *MockTrackingStateStore) SetNotificationFlag(
	ctx context.Context, kind string, stopID kernel.UUID, ttl time.Duration,
) (bool, error) {
	args := m.Called(ctx, kind, stopID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackingStateStore) GetGeofenceContainment(
	ctx context.Context, driverID kernel.UUID, zone string,
) (bool, bool, error) {
	args := m.Called(ctx, driverID, zone)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockTrackingStateStore) SetGeofenceContainment(
	ctx context.Context, driverID kernel.UUID, zone string, inside bool,
) error {
	args := m.Called(ctx, driverID, zone, inside)
	return args.Error(0)
}

func (m *MockTrackingStateStore) SetLivePosition(
	ctx context.Context, driverID kernel.UUID, position ports.LivePosition,
) error {
	args := m.Called(ctx, driverID, position)
	return args.Error(0)
}

func (m *MockTrackingStateStore) GetLivePosition(
	ctx context.Context, driverID kernel.UUID,
) (ports.LivePosition, bool, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(ports.LivePosition), args.Bool(1), args.Error(2)
}

type MockNotificationSink struct{ mock.Mock }

func (m *MockNotificationSink) Dispatch(
	ctx context.Context, channel string, recipient string, payload map[string]any,
) error {
	args := m.Called(ctx, channel, recipient, payload)
	return args.Error(0)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Resolve(ctx context.Context, address string) (kernel.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.Location), args.Error(1)
}

type MockIncidentReporter struct{ mock.Mock }

func (m *MockIncidentReporter) Report(ctx context.Context, incident ports.Incident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(event events.Event) {
	p.events = append(p.events, event)
}

func (p *capturePublisher) byType(eventType events.Type) []events.Event {
	var matched []events.Event
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func testLocation(t *testing.T, lat float64, lng float64) kernel.Location {
	t.Helper()
	location, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return location
}

func testCapacity(t *testing.T, weightKg float64, volumeM3 float64) kernel.Capacity {
	t.Helper()
	capacity, err := kernel.NewCapacity(weightKg, volumeM3)
	require.NoError(t, err)
	return capacity
}

// pendingStopAt builds an unassigned pending stop at the given coordinates.
func pendingStopAt(t *testing.T, lat float64, lng float64) *stop.Stop {
	t.Helper()
	s, err := stop.NewStop(
		kernel.NewUUID(),
		"TRK-"+kernel.NewUUID().String()[:8],
		testLocation(t, lat, lng),
		stop.PriorityStandard,
		testCapacity(t, 5, 0.1),
		false,
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, s.SetRecipient("Dana Reyes", "+61400000001"))
	return s
}

// enRouteStopOn builds a stop assigned to the route and already en route.
func enRouteStopOn(t *testing.T, routeID kernel.UUID, sequence int, lat float64, lng float64) *stop.Stop {
	t.Helper()
	s := pendingStopAt(t, lat, lng)
	require.NoError(t, s.AssignToRoute(routeID, sequence))
	require.NoError(t, s.MarkEnRoute())
	return s
}

// dispatchedRoute builds an in_progress route for the driver carrying the
// given stop count in its progress counters.
func dispatchedRoute(t *testing.T, driverID kernel.UUID, stopIDs []kernel.UUID) *route.Route {
	t.Helper()
	r, err := route.NewRoute(
		kernel.NewUUID(),
		driverID,
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	for _, id := range stopIDs {
		require.NoError(t, r.AddStop(id))
	}
	require.NoError(t, r.ApplyOptimization(stopIDs, 10, 30, "two_opt", 5, time.Now()))
	require.NoError(t, r.Dispatch())
	return r
}

func testDriver(t *testing.T, zones []string) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(
		kernel.NewUUID(),
		"Sam Okafor",
		"van",
		testCapacity(t, 500, 8),
		true,
		zones,
	)
	require.NoError(t, err)
	return d
}
