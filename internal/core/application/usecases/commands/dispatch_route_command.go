package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDispatchRouteCommandIsNotConstructed = errors.New(
	"DispatchRouteCommand must be created via NewDispatchRouteCommand constructor",
)

// DispatchRouteCommand hands an optimized route to its driver.
type DispatchRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDispatchRouteCommand creates a dispatch command.
func NewDispatchRouteCommand(routeID kernel.UUID) (DispatchRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return DispatchRouteCommand{}, err
	}

	return DispatchRouteCommand{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c DispatchRouteCommand) Validate() error {
	return c.guard.Validate(ErrDispatchRouteCommandIsNotConstructed)
}

// RouteID returns the route to dispatch.
func (c DispatchRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}
