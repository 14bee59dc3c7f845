package cmd

import (
	"log/slog"
	"time"

	"dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/geocoding"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/rediscache"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/tracking"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	matrixCache   *rediscache.RedisMatrixCache
	trackingStore *rediscache.RedisTrackingStateStore

	geocoder ports.Geocoder
	sink     ports.NotificationSink
	reporter ports.IncidentReporter

	bus   *events.Bus
	zones *services.ZoneTable
	depot kernel.Location

	logger *slog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	redisClient *redis.Client,
	zones *services.ZoneTable,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	depot, err := kernel.NewLocationWithAddress(
		config.DepotLatitude, config.DepotLongitude, "depot")
	if err != nil {
		return nil, err
	}

	var geocoder ports.Geocoder
	if config.GeocoderBaseURL != "" {
		geocoder, err = geocoding.NewNominatimGeocoder(config.GeocoderBaseURL, nil)
		if err != nil {
			return nil, err
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CompositionRoot{
		config:        config,
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		matrixCache:   rediscache.NewRedisMatrixCache(redisClient),
		trackingStore: rediscache.NewRedisTrackingStateStore(redisClient),
		geocoder:      geocoder,
		sink:          notify.NewLogNotificationSink(logger),
		reporter:      notify.NewLogIncidentReporter(logger),
		bus:           events.NewBus(0),
		zones:         zones,
		depot:         depot,
		logger:        logger,
	}, nil
}

// EventBus returns the tracking event bus consumed by subscribers.
func (c *CompositionRoot) EventBus() *events.Bus {
	return c.bus
}

func (c *CompositionRoot) createMatrixBuilder() (services.MatrixBuilder, error) {
	return services.NewMatrixBuilder(c.matrixCache, c.config.BaseSpeedKmh, nil, c.logger)
}

func (c *CompositionRoot) CreateCreateStopCommandHandler() (commands.CreateStopCommandHandler, error) {
	var f commands.StopUoWFactory = FuncStopUoWFactory(func() commands.StopUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateStopCommandHandler(f, c.geocoder, c.depot, c.logger)
}

func (c *CompositionRoot) CreateOptimizeRouteCommandHandler() (commands.OptimizeRouteCommandHandler, error) {
	matrixBuilder, err := c.createMatrixBuilder()
	if err != nil {
		return commands.OptimizeRouteCommandHandler{}, err
	}

	var f commands.StopRouteUoWFactory = FuncStopRouteUoWFactory(func() commands.StopRouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewOptimizeRouteCommandHandler(
		f, matrixBuilder, services.NewRouteOptimizer(), c.depot, c.logger)
}

func (c *CompositionRoot) CreateScheduleRoutesCommandHandler() (commands.ScheduleRoutesCommandHandler, error) {
	matrixBuilder, err := c.createMatrixBuilder()
	if err != nil {
		return commands.ScheduleRoutesCommandHandler{}, err
	}

	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewScheduleRoutesCommandHandler(
		f, c.zones, services.NewDriverAssignmentEngine(), matrixBuilder,
		services.NewRouteOptimizer(), c.depot, c.logger)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() (commands.UpdateDriverLocationCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDriverLocationCommandHandler(
		f, c.trackingStore, c.zones, c.sink, c.bus, c.config.BaseSpeedKmh, c.logger)
}

func (c *CompositionRoot) CreateDispatchRouteCommandHandler() commands.DispatchRouteCommandHandler {
	var f commands.StopRouteUoWFactory = FuncStopRouteUoWFactory(func() commands.StopRouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchRouteCommandHandler(f, c.sink, c.bus, c.logger)
}

func (c *CompositionRoot) CreateArriveAtStopCommandHandler() commands.ArriveAtStopCommandHandler {
	var f commands.StopUoWFactory = FuncStopUoWFactory(func() commands.StopUoW {
		return c.uowFactory.Create()
	})
	return commands.NewArriveAtStopCommandHandler(f, c.trackingStore, c.sink, c.bus, c.logger)
}

func (c *CompositionRoot) CreateCompleteStopCommandHandler() commands.CompleteStopCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteStopCommandHandler(f, c.sink, c.bus, c.logger)
}

func (c *CompositionRoot) CreateFailStopCommandHandler() commands.FailStopCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewFailStopCommandHandler(f, c.reporter, c.bus, c.logger)
}

func (c *CompositionRoot) CreateCancelStopCommandHandler() commands.CancelStopCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelStopCommandHandler(f, c.bus, c.logger)
}

func (c *CompositionRoot) CreateRescheduleStopCommandHandler() commands.RescheduleStopCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRescheduleStopCommandHandler(f, c.bus, c.logger)
}

func (c *CompositionRoot) CreateGetTrackingInfoQueryHandler() queries.GetTrackingInfoQueryHandler {
	return queries.NewGetTrackingInfoQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveRoutesQueryHandler() queries.GetActiveRoutesQueryHandler {
	return queries.NewGetActiveRoutesQueryHandler(c.gormDB)
}

// CreateLocationDispatcher builds the per-driver serialized pipeline feeding
// position reports into the location handler.
func (c *CompositionRoot) CreateLocationDispatcher() (*tracking.Dispatcher, error) {
	handler, err := c.CreateUpdateDriverLocationCommandHandler()
	if err != nil {
		return nil, err
	}
	return tracking.NewDispatcher(handler, c.config.LocationQueueSize, c.logger), nil
}

// CreateLogSubscriber builds the default consumer of the tracking event bus.
func (c *CompositionRoot) CreateLogSubscriber() *tracking.LogSubscriber {
	return tracking.NewLogSubscriber(c.bus, c.logger)
}

// CreateJobManager wires the periodic scheduling sweep.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	handler, err := c.CreateScheduleRoutesCommandHandler()
	if err != nil {
		return nil, err
	}
	return jobs.NewJobManager(handler, time.Now, c.logger), nil
}

// CreateHTTPServer wires every exposed endpoint. The dispatcher is passed in
// so main can close it during shutdown.
func (c *CompositionRoot) CreateHTTPServer(dispatcher http.LocationDispatcher) (*http.Server, error) {
	createStop, err := c.CreateCreateStopCommandHandler()
	if err != nil {
		return nil, err
	}
	optimizeRoute, err := c.CreateOptimizeRouteCommandHandler()
	if err != nil {
		return nil, err
	}
	scheduleRoutes, err := c.CreateScheduleRoutesCommandHandler()
	if err != nil {
		return nil, err
	}

	return http.NewServer(
		createStop,
		optimizeRoute,
		scheduleRoutes,
		c.CreateDispatchRouteCommandHandler(),
		c.CreateArriveAtStopCommandHandler(),
		c.CreateCompleteStopCommandHandler(),
		c.CreateFailStopCommandHandler(),
		c.CreateCancelStopCommandHandler(),
		c.CreateRescheduleStopCommandHandler(),
		dispatcher,
		c.CreateGetTrackingInfoQueryHandler(),
		c.CreateGetActiveRoutesQueryHandler(),
	), nil
}

type FuncStopUoWFactory func() commands.StopUoW

func (f FuncStopUoWFactory) Create() commands.StopUoW {
	return f()
}

type FuncStopRouteUoWFactory func() commands.StopRouteUoW

func (f FuncStopRouteUoWFactory) Create() commands.StopRouteUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
