package services

import (
	"errors"
	"sort"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoSuitableDriver is returned when no driver in the candidate pool can
// take a stop group. The scheduler treats it as a skip signal for the group,
// not a fatal error for the batch.
var ErrNoSuitableDriver = errors.New("no suitable driver")

// AssignmentRequirement describes what a stop group demands from a driver.
type AssignmentRequirement struct {
	// Demand is the aggregated weight/volume of the group.
	Demand kernel.Capacity

	// RequiresColdChain is set when any stop needs refrigerated transport.
	RequiresColdChain bool

	// Zone is the geographic zone the group belongs to.
	Zone string

	// StopCount is the number of stops in the group.
	StopCount int

	// PickupLocation is the reference point for distance ranking.
	// Nil falls back to load balancing by active-route count.
	PickupLocation *kernel.Location
}

// DriverAssignmentEngine filters a driver pool against a stop group's
// requirements and ranks the survivors. It performs no mutation: the caller
// commits the assignment (with a compare-and-set reservation) and falls
// through to the next candidate if it loses the race.
type DriverAssignmentEngine struct{}

// NewDriverAssignmentEngine creates a new DriverAssignmentEngine instance.
func NewDriverAssignmentEngine() DriverAssignmentEngine {
	return DriverAssignmentEngine{}
}

// SelectDriver returns the best candidate for the requirement, or
// ErrNoSuitableDriver when the filtered pool is empty.
func (e DriverAssignmentEngine) SelectDriver(
	drivers []*driver.Driver,
	requirement AssignmentRequirement,
) (*driver.Driver, error) {
	ranked, err := e.RankCandidates(drivers, requirement)
	if err != nil {
		return nil, err
	}
	return ranked[0], nil
}

// RankCandidates filters the pool and orders the survivors best-first.
// When a pickup reference location is known the order is ascending distance
// from it; otherwise ascending active-route count to balance load. Drivers
// with no known position rank after those with one.
func (e DriverAssignmentEngine) RankCandidates(
	drivers []*driver.Driver,
	requirement AssignmentRequirement,
) ([]*driver.Driver, error) {
	if err := requirement.Demand.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]*driver.Driver, 0, len(drivers))
	for _, d := range drivers {
		suitable, err := e.isSuitable(d, requirement)
		if err != nil {
			return nil, err
		}
		if suitable {
			candidates = append(candidates, d)
		}
	}

	if len(candidates) == 0 {
		return nil, ErrNoSuitableDriver
	}

	if requirement.PickupLocation != nil {
		if err := requirement.PickupLocation.Validate(); err != nil {
			return nil, err
		}
		e.sortByDistance(candidates, *requirement.PickupLocation)
	} else {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ActiveRouteCount() < candidates[j].ActiveRouteCount()
		})
	}

	return candidates, nil
}

func (e DriverAssignmentEngine) isSuitable(
	d *driver.Driver,
	requirement AssignmentRequirement,
) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}

	if !d.IsActive() || !d.IsAvailable() {
		return false, nil
	}
	if requirement.RequiresColdChain && !d.HasColdStorage() {
		return false, nil
	}
	if requirement.Zone != "" && !d.ServesZone(requirement.Zone) {
		return false, nil
	}

	fits, err := d.Capacity().Fits(requirement.Demand)
	if err != nil {
		return false, err
	}
	return fits, nil
}

func (e DriverAssignmentEngine) sortByDistance(candidates []*driver.Driver, pickup kernel.Location) {
	distanceTo := func(d *driver.Driver) float64 {
		location := d.CurrentLocation()
		if location == nil {
			return -1
		}
		km, err := location.DistanceKm(pickup)
		if err != nil {
			return -1
		}
		return km
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := distanceTo(candidates[i]), distanceTo(candidates[j])
		if di < 0 {
			return false
		}
		if dj < 0 {
			return true
		}
		return di < dj
	})
}
