package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/stoprepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockAggregateTracker is a no-op tracker for seeding read-model tests.
type mockAggregateTracker struct{}

func (mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type GetTrackingInfoQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetTrackingInfoQueryHandler
	stopRepo  *stoprepo.GormStopRepository
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&stoprepo.StopDTO{}))

	suite.handler = queries.NewGetTrackingInfoQueryHandler(db)
	suite.stopRepo = stoprepo.NewGormStopRepository(db, mockAggregateTracker{})
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE stops").Error)
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) seedStop(reference string) *stop.Stop {
	location, err := kernel.NewLocationWithAddress(-33.87, 151.21, "5 Bridge St, Sydney NSW 2000")
	suite.Require().NoError(err)
	demand, err := kernel.NewCapacity(4.5, 0.12)
	suite.Require().NoError(err)

	s, err := stop.NewStop(
		kernel.NewUUID(), reference, location, stop.PriorityStandard, demand,
		false, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Require().NoError(s.SetRecipient("Dana Reyes", "+61400000001"))
	suite.Require().NoError(suite.stopRepo.Add(context.Background(), s))
	return s
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) TestHandle_MasksRecipientAndAddressByDefault() {
	ctx := context.Background()

	s := suite.seedStop("TRK-MASK1")
	suite.Require().NoError(s.AssignToRoute(kernel.NewUUID(), 3))
	suite.Require().NoError(s.MarkEnRoute())
	eta := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)
	suite.Require().True(s.UpdateEstimatedArrival(eta))
	suite.Require().NoError(suite.stopRepo.Update(ctx, s))

	query, err := queries.NewGetTrackingInfoQuery("TRK-MASK1", "")
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Equal("TRK-MASK1", response.Reference)
	suite.Equal("out_for_delivery", response.Status)
	suite.Equal("D*********", response.RecipientName)
	suite.Equal("Sydney NSW 2000", response.Address)
	suite.Require().NotNil(response.SequencePosition)
	suite.Equal(3, *response.SequencePosition)
	suite.Require().NotNil(response.EstimatedArrival)
	suite.WithinDuration(eta, *response.EstimatedArrival, time.Second)
	suite.Nil(response.ActualArrival)
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) TestHandle_AccessTokenUnmasks() {
	ctx := context.Background()

	s := suite.seedStop("TRK-TOKEN1")

	query, err := queries.NewGetTrackingInfoQuery("TRK-TOKEN1", s.ID().String())
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal("Dana Reyes", response.RecipientName)
	suite.Equal("5 Bridge St, Sydney NSW 2000", response.Address)
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) TestHandle_WrongTokenStaysMasked() {
	ctx := context.Background()

	suite.seedStop("TRK-TOKEN2")

	query, err := queries.NewGetTrackingInfoQuery("TRK-TOKEN2", kernel.NewUUID().String())
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal("D*********", response.RecipientName)
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) TestHandle_LatestAttemptWins() {
	ctx := context.Background()

	original := suite.seedStop("TRK-AGAIN1")
	clone, err := original.RescheduleTo(kernel.NewUUID(), original.ServiceDate().AddDate(0, 0, 2))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.stopRepo.Update(ctx, original))
	suite.Require().NoError(suite.stopRepo.Add(ctx, clone))

	query, err := queries.NewGetTrackingInfoQuery("TRK-AGAIN1", "")
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal("processing", response.Status)
	suite.WithinDuration(clone.ServiceDate(), response.ServiceDate, time.Second)
}

func (suite *GetTrackingInfoQueryHandlerTestSuite) TestHandle_UnknownReference_ReturnsNotFound() {
	ctx := context.Background()

	query, err := queries.NewGetTrackingInfoQuery("TRK-NOPE", "")
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestGetTrackingInfoQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetTrackingInfoQueryHandlerTestSuite))
}
