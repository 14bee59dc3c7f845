package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/routerepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetActiveRoutesQueryHandlerTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	handler    queries.GetActiveRoutesQueryHandler
	routeRepo  *routerepo.GormRouteRepository
	driverRepo *driverrepo.GormDriverRepository
	testDriver *driver.Driver
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&routerepo.RouteDTO{}, &driverrepo.DriverDTO{}))

	suite.handler = queries.NewGetActiveRoutesQueryHandler(db)
	suite.routeRepo = routerepo.NewGormRouteRepository(db, mockAggregateTracker{})
	suite.driverRepo = driverrepo.NewGormDriverRepository(db, mockAggregateTracker{})

	capacity, err := kernel.NewCapacity(500, 8)
	suite.Require().NoError(err)
	suite.testDriver, err = driver.NewDriver(
		kernel.NewUUID(), "Sam Okafor", "van", capacity, false, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.driverRepo.Add(ctx, suite.testDriver))
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE routes").Error)
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) seedRoute(serviceDate time.Time, stops int) *route.Route {
	r, err := route.NewRoute(
		kernel.NewUUID(), suite.testDriver.ID(), serviceDate, serviceDate.Add(8*time.Hour))
	suite.Require().NoError(err)
	for range stops {
		suite.Require().NoError(r.AddStop(kernel.NewUUID()))
	}
	suite.Require().NoError(suite.routeRepo.Add(context.Background(), r))
	return r
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) TestHandle_ReturnsOpenRoutesWithDriver() {
	ctx := context.Background()

	serviceDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	planned := suite.seedRoute(serviceDate, 2)

	optimized := suite.seedRoute(serviceDate.AddDate(0, 0, 1), 3)
	ids := optimized.StopIDs()
	suite.Require().NoError(optimized.ApplyOptimization(
		ids, 14.2, 55, "two_opt", 6.5, time.Now().UTC()))
	suite.Require().NoError(suite.routeRepo.Update(ctx, optimized))

	response, err := suite.handler.Handle(ctx, queries.NewGetActiveRoutesQuery())
	suite.Require().NoError(err)
	suite.Require().Len(response, 2)

	// Ordered by service date: the planned route comes first.
	suite.True(response[0].ID.IsEqual(planned.ID()))
	suite.Equal("planned", response[0].Status)
	suite.Equal("Sam Okafor", response[0].DriverName)
	suite.True(response[0].DriverID.IsEqual(suite.testDriver.ID()))
	suite.Equal(2, response[0].StopCount)
	suite.Equal(2, response[0].PendingStops)

	suite.True(response[1].ID.IsEqual(optimized.ID()))
	suite.Equal("optimized", response[1].Status)
	suite.Equal(3, response[1].StopCount)
	suite.InDelta(14.2, response[1].TotalDistanceKm, 0.001)
	suite.Equal("two_opt", response[1].OptimizationMethod)
	suite.InDelta(6.5, response[1].OptimizationScore, 0.001)
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) TestHandle_ExcludesFinishedRoutes() {
	ctx := context.Background()

	serviceDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	cancelled := suite.seedRoute(serviceDate, 1)
	suite.Require().NoError(cancelled.Cancel())
	suite.Require().NoError(suite.routeRepo.Update(ctx, cancelled))

	open := suite.seedRoute(serviceDate, 1)

	response, err := suite.handler.Handle(ctx, queries.NewGetActiveRoutesQuery())
	suite.Require().NoError(err)
	suite.Require().Len(response, 1)
	suite.True(response[0].ID.IsEqual(open.ID()))
}

func (suite *GetActiveRoutesQueryHandlerTestSuite) TestHandle_EmptyBoard() {
	response, err := suite.handler.Handle(context.Background(), queries.NewGetActiveRoutesQuery())
	suite.Require().NoError(err)
	suite.Empty(response)
}

func TestGetActiveRoutesQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetActiveRoutesQueryHandlerTestSuite))
}
