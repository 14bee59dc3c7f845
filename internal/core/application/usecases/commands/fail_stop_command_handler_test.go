package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewFailStopCommand_RequiresReason(t *testing.T) {
	s := pendingStopAt(t, -33.87, 151.21)
	_, err := commands.NewFailStopCommand(s.ID(), "")
	require.Error(t, err)
}

func TestFailStopCommandHandler_Handle_CriticalReasonRaisesIncident(t *testing.T) {
	ctx := t.Context()

	s := pendingStopAt(t, -33.87, 151.21)
	cmd, err := commands.NewFailStopCommand(s.ID(), stop.FailureDamagedPackage)
	require.NoError(t, err)

	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	reporter := new(MockIncidentReporter)
	publisher := &capturePublisher{}

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo)
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	stopRepo.On("Update", ctx, s).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	reporter.On("Report", ctx, mock.MatchedBy(func(incident ports.Incident) bool {
		return incident.StopID.IsEqual(s.ID()) && incident.Reason == stop.FailureDamagedPackage
	})).Return(nil).Once()

	handler := commands.NewFailStopCommandHandler(factory, reporter, publisher, nil)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, stop.StatusFailed, s.Status())
	assert.True(t, s.IsCriticalFailure())
	reporter.AssertExpectations(t)
}

func TestFailStopCommandHandler_Handle_RoutineReasonSkipsIncident(t *testing.T) {
	ctx := t.Context()

	s := pendingStopAt(t, -33.87, 151.21)
	cmd, err := commands.NewFailStopCommand(s.ID(), stop.FailureCustomerNotHome)
	require.NoError(t, err)

	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	reporter := new(MockIncidentReporter)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo)
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	stopRepo.On("Update", ctx, s).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewFailStopCommandHandler(factory, reporter, nil, nil)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, stop.StatusFailed, s.Status())
	assert.False(t, s.IsCriticalFailure())
	reporter.AssertNotCalled(t, "Report", mock.Anything, mock.Anything)
}

func TestFailStopCommandHandler_Handle_ReporterFailureDoesNotFailCommand(t *testing.T) {
	ctx := t.Context()

	s := pendingStopAt(t, -33.87, 151.21)
	cmd, err := commands.NewFailStopCommand(s.ID(), stop.FailureTheft)
	require.NoError(t, err)

	stopRepo := new(MockStopRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	reporter := new(MockIncidentReporter)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("StopRepository").Return(stopRepo)
	stopRepo.On("Get", ctx, s.ID()).Return(s, nil).Once()
	stopRepo.On("Update", ctx, s).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	reporter.On("Report", ctx, mock.Anything).Return(assert.AnError).Once()

	handler := commands.NewFailStopCommandHandler(factory, reporter, nil, nil)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, stop.StatusFailed, s.Status())
}
