package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"dispatch/internal/pkg/errs"
)

const (
	// exhaustiveLimit is the largest stop count solved by exhaustive
	// permutation search. Factorial growth forbids anything bigger.
	exhaustiveLimit = 10

	// twoOptLimit is the largest stop count handled by 2-opt local search
	// before falling back to simulated annealing.
	twoOptLimit = 25

	annealingInitialTemp   = 100.0
	annealingCoolingRate   = 0.995
	annealingMaxIterations = 10000
	annealingMinTemp       = 0.01
)

// Method identifies the optimization strategy that produced a result.
type Method string

const (
	// MethodNone means the input was too small to optimize.
	MethodNone Method = "none"

	// MethodExhaustive is exact permutation search.
	MethodExhaustive Method = "exhaustive"

	// MethodTwoOpt is 2-opt local search.
	MethodTwoOpt Method = "two_opt"

	// MethodAnnealing is simulated annealing.
	MethodAnnealing Method = "simulated_annealing"
)

// OptimizationResult is the outcome of one optimizer run.
type OptimizationResult struct {
	// Sequence is the ordered stop-id visiting list.
	Sequence []string

	// OriginalDistanceKm is the tour distance of the input order.
	OriginalDistanceKm float64

	// OptimizedDistanceKm is the tour distance of the returned sequence.
	OptimizedDistanceKm float64

	// Score is the improvement percentage, floored at zero.
	Score float64

	// Method is the strategy that produced the sequence.
	Method Method

	// Partial marks an annealing run that exhausted its iteration budget
	// before cooling down. The result is still the best tour found.
	Partial bool
}

// RouteOptimizer selects and runs an optimization strategy over a stop set
// using a precomputed distance matrix. Strategy is picked by stop count:
// exhaustive search up to 10 stops, 2-opt up to 25, simulated annealing
// beyond. Tours always start and end at the depot.
//
// The optimizer is a pure function of its inputs: it mutates neither the
// matrix nor the input slice, so concurrent invocations need no locking.
type RouteOptimizer struct{}

// NewRouteOptimizer creates a new RouteOptimizer instance.
func NewRouteOptimizer() RouteOptimizer {
	return RouteOptimizer{}
}

// Optimize returns the best visiting order found for the stops. The matrix
// must cover the depot and every stop. rng seeds the annealing path so runs
// are reproducible; nil falls back to a time-seeded source.
func (o RouteOptimizer) Optimize(
	stopIDs []string,
	matrix DistanceMatrix,
	rng *rand.Rand,
) (OptimizationResult, error) {
	if len(stopIDs) <= 1 {
		return OptimizationResult{
			Sequence: append([]string(nil), stopIDs...),
			Method:   MethodNone,
		}, nil
	}

	if err := validateCoverage(stopIDs, matrix); err != nil {
		return OptimizationResult{}, err
	}

	original := append([]string(nil), stopIDs...)
	originalDistance := tourDistance(original, matrix)

	var (
		sequence []string
		method   Method
		partial  bool
	)

	switch {
	case len(stopIDs) <= exhaustiveLimit:
		sequence = exhaustiveSearch(original, matrix)
		method = MethodExhaustive
	case len(stopIDs) <= twoOptLimit:
		sequence = twoOpt(original, matrix)
		method = MethodTwoOpt
	default:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not used for security
		}
		sequence, partial = anneal(original, matrix, rng)
		method = MethodAnnealing
	}

	optimizedDistance := tourDistance(sequence, matrix)

	return OptimizationResult{
		Sequence:            sequence,
		OriginalDistanceKm:  originalDistance,
		OptimizedDistanceKm: optimizedDistance,
		Score:               improvementScore(originalDistance, optimizedDistance),
		Method:              method,
		Partial:             partial,
	}, nil
}

func validateCoverage(stopIDs []string, matrix DistanceMatrix) error {
	ids := append([]string{DepotID}, stopIDs...)
	if !matrix.Covers(ids...) {
		return errs.NewValueIsInvalidErrorWithCause(
			"matrix", fmt.Errorf("matrix does not cover depot and all %d stops", len(stopIDs)))
	}
	return nil
}

// tourDistance is the closed-tour distance depot → stops → depot.
func tourDistance(sequence []string, matrix DistanceMatrix) float64 {
	if len(sequence) == 0 {
		return 0
	}

	total := 0.0
	previous := DepotID
	for _, id := range sequence {
		entry, _ := matrix.Entry(previous, id)
		total += entry.DistanceKm
		previous = id
	}
	entry, _ := matrix.Entry(previous, DepotID)
	return total + entry.DistanceKm
}

// improvementScore is the percentage saved against the original order,
// floored at zero.
func improvementScore(original float64, optimized float64) float64 {
	if original <= 0 {
		return 0
	}
	return math.Max(0, (original-optimized)/original*100)
}

// exhaustiveSearch evaluates every permutation and returns the shortest
// tour. Uses Heap's algorithm to enumerate permutations in place.
func exhaustiveSearch(sequence []string, matrix DistanceMatrix) []string {
	working := append([]string(nil), sequence...)
	best := append([]string(nil), sequence...)
	bestDistance := tourDistance(working, matrix)

	n := len(working)
	counters := make([]int, n)

	for i := 0; i < n; {
		if counters[i] < i {
			if i%2 == 0 {
				working[0], working[i] = working[i], working[0]
			} else {
				working[counters[i]], working[i] = working[i], working[counters[i]]
			}

			if d := tourDistance(working, matrix); d < bestDistance {
				bestDistance = d
				copy(best, working)
			}

			counters[i]++
			i = 0
		} else {
			counters[i] = 0
			i++
		}
	}

	return best
}

// twoOpt runs 2-opt local search until a full pass yields no improving swap.
//
// The improvement test is a boundary-only delta: it compares just the two
// edges entering positions i and j against the edges a reversal of
// [i, j-1] would create, not the whole tour cost. The final return-to-depot
// edge is never part of a comparison. This converges to different local
// optima than a full-cost 2-opt and is kept deliberately.
func twoOpt(sequence []string, matrix DistanceMatrix) []string {
	tour := append([]string(nil), sequence...)
	n := len(tour)

	distance := func(from, to string) float64 {
		entry, _ := matrix.Entry(from, to)
		return entry.DistanceKm
	}

	improved := true
	for improved {
		improved = false
		for i := 0; i < n-1; i++ {
			previous := DepotID
			if i > 0 {
				previous = tour[i-1]
			}
			for j := i + 1; j < n; j++ {
				current := distance(previous, tour[i]) + distance(tour[j-1], tour[j])
				candidate := distance(previous, tour[j-1]) + distance(tour[i], tour[j])

				if candidate < current {
					reverse(tour, i, j-1)
					improved = true
				}
			}
		}
	}

	return tour
}

func reverse(tour []string, from int, to int) {
	for from < to {
		tour[from], tour[to] = tour[to], tour[from]
		from++
		to--
	}
}

// anneal runs simulated annealing with geometric cooling and the Metropolis
// acceptance criterion, returning the best tour seen across all iterations.
// The second return value reports whether the iteration budget ran out
// before the temperature cooled below the early-stop threshold.
func anneal(sequence []string, matrix DistanceMatrix, rng *rand.Rand) ([]string, bool) {
	current := append([]string(nil), sequence...)
	currentDistance := tourDistance(current, matrix)

	best := append([]string(nil), current...)
	bestDistance := currentDistance

	n := len(current)
	temperature := annealingInitialTemp
	iterations := 0

	for ; iterations < annealingMaxIterations; iterations++ {
		if temperature < annealingMinTemp {
			break
		}

		i := rng.Intn(n)
		j := rng.Intn(n)
		for j == i {
			j = rng.Intn(n)
		}

		current[i], current[j] = current[j], current[i]
		candidateDistance := tourDistance(current, matrix)
		delta := candidateDistance - currentDistance

		if delta < 0 || rng.Float64() < math.Exp(-delta/temperature) {
			currentDistance = candidateDistance
			if currentDistance < bestDistance {
				bestDistance = currentDistance
				copy(best, current)
			}
		} else {
			// Revert the rejected swap.
			current[i], current[j] = current[j], current[i]
		}

		temperature *= annealingCoolingRate
	}

	return best, iterations == annealingMaxIterations && temperature >= annealingMinTemp
}
