package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/ports"
)

// CreateStopCommandHandler registers new deliveries. The address is resolved
// through the geocoder; when resolution fails the stop is created at the
// depot's coordinates so intake never blocks on the geocoding provider, and
// the matrix builder treats it like any other stop.
type CreateStopCommandHandler struct {
	uowFactory StopUoWFactory
	geocoder   ports.Geocoder
	depot      kernel.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewCreateStopCommandHandler creates a handler for stop intake.
func NewCreateStopCommandHandler(
	uowFactory StopUoWFactory,
	geocoder ports.Geocoder,
	depot kernel.Location,
	logger *slog.Logger,
) (CreateStopCommandHandler, error) {
	if err := depot.Validate(); err != nil {
		return CreateStopCommandHandler{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return CreateStopCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		depot:      depot,
		logger:     logger.With("component", "create_stop"),
		now:        time.Now,
	}, nil
}

// Handle creates the stop and returns its id and public tracking reference.
func (h CreateStopCommandHandler) Handle(
	ctx context.Context,
	command CreateStopCommand,
) (CreateStopResult, error) {
	if err := command.Validate(); err != nil {
		return CreateStopResult{}, err
	}

	location := h.resolve(ctx, command.Address())

	stopID := kernel.NewUUID()
	s, err := stop.NewStop(
		stopID,
		newStopReference(stopID),
		location,
		command.Priority(),
		command.Demand(),
		command.RequiresColdChain(),
		command.ServiceDate(),
	)
	if err != nil {
		return CreateStopResult{}, err
	}

	if err = s.SetRecipient(command.RecipientName(), command.RecipientPhone()); err != nil {
		return CreateStopResult{}, err
	}
	if window := command.TimeWindow(); window != nil {
		if err = s.SetTimeWindow(*window); err != nil {
			return CreateStopResult{}, err
		}
	}
	if minutes := command.ServiceTimeMinutes(); minutes > 0 {
		if err = s.SetServiceTime(minutes); err != nil {
			return CreateStopResult{}, err
		}
	}
	if amount := command.CODAmount(); amount > 0 {
		if err = s.SetCashOnDelivery(amount); err != nil {
			return CreateStopResult{}, err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateStopResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.StopRepository().Add(ctx, s); err != nil {
		return CreateStopResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateStopResult{}, err
	}

	return CreateStopResult{StopID: s.ID(), Reference: s.Reference()}, nil
}

// resolve geocodes the address, substituting the depot's coordinates when
// the provider fails or returns nothing usable.
func (h CreateStopCommandHandler) resolve(ctx context.Context, address string) kernel.Location {
	if h.geocoder != nil {
		location, err := h.geocoder.Resolve(ctx, address)
		if err == nil {
			return location
		}
		h.logger.WarnContext(ctx, "Geocoding failed, falling back to depot coordinates",
			"address", address,
			"error", err)
	}

	fallback, err := kernel.NewLocationWithAddress(
		h.depot.Latitude(), h.depot.Longitude(), address)
	if err != nil {
		return h.depot
	}
	return fallback
}

// newStopReference derives the public tracking handle from the stop id.
// References stay stable across reschedule clones; only the first attempt
// mints one.
func newStopReference(id kernel.UUID) string {
	compact := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("DSP-%s", strings.ToUpper(compact[:10]))
}
