package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrOptimizeRouteCommandIsNotConstructed = errors.New(
	"OptimizeRouteCommand must be created via NewOptimizeRouteCommand constructor",
)

// OptimizeRouteCommand recomputes the visiting order of a route's stops.
// Allowed until the route is dispatched.
type OptimizeRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

// NewOptimizeRouteCommand creates an optimization command.
func NewOptimizeRouteCommand(routeID kernel.UUID) (OptimizeRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return OptimizeRouteCommand{}, err
	}

	return OptimizeRouteCommand{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c OptimizeRouteCommand) Validate() error {
	return c.guard.Validate(ErrOptimizeRouteCommandIsNotConstructed)
}

// RouteID returns the route to optimize.
func (c OptimizeRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}
