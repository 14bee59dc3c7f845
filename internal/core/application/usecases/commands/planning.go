package commands

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
)

// matrixPointsFor builds the optimizer's input set: the depot plus one point
// per stop, keyed by the stop's id.
func matrixPointsFor(depot kernel.Location, stops []*stop.Stop) []services.MatrixPoint {
	points := make([]services.MatrixPoint, 0, len(stops)+1)
	points = append(points, services.MatrixPoint{ID: services.DepotID, Location: &depot})
	for _, s := range stops {
		location := s.Location()
		points = append(points, services.MatrixPoint{ID: s.ID().String(), Location: &location})
	}
	return points
}

func stopIDStrings(stops []*stop.Stop) []string {
	ids := make([]string, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID().String())
	}
	return ids
}

// applyOptimizedPlan records an optimizer result on the route and walks the
// optimized sequence once: resequencing each stop, accumulating the tour
// duration and chaining estimated arrivals from the route's planned start.
// Service time at each stop pushes every later ETA back.
func applyOptimizedPlan(
	r *route.Route,
	stops []*stop.Stop,
	result services.OptimizationResult,
	matrix services.DistanceMatrix,
	at time.Time,
) error {
	byID := make(map[string]*stop.Stop, len(stops))
	for _, s := range stops {
		byID[s.ID().String()] = s
	}

	sequence := make([]kernel.UUID, 0, len(result.Sequence))
	duration := 0.0
	previous := services.DepotID
	eta := r.PlannedStart()

	for position, id := range result.Sequence {
		s, ok := byID[id]
		if !ok {
			return errs.NewValueIsInvalidErrorWithCause(
				"sequence", fmt.Errorf("stop %s is not part of the route", id))
		}
		sequence = append(sequence, s.ID())

		entry, _ := matrix.Entry(previous, id)
		duration += entry.Minutes
		eta = eta.Add(minutesToDuration(entry.Minutes))
		s.UpdateEstimatedArrival(eta)

		if err := s.Resequence(position + 1); err != nil {
			return err
		}

		serviceMinutes := float64(s.ServiceTimeMinutes())
		duration += serviceMinutes
		eta = eta.Add(minutesToDuration(serviceMinutes))
		previous = id
	}

	returnLeg, _ := matrix.Entry(previous, services.DepotID)
	duration += returnLeg.Minutes

	return r.ApplyOptimization(sequence, result.OptimizedDistanceKm, duration,
		string(result.Method), result.Score, at)
}

func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}
