// Package route implements the Route aggregate: one driver's ordered stop
// sequence for a service date, with its optimization metrics and lifecycle
// state machine. The stop-id list is kept a strict permutation of the stops
// assigned to the route across every resequencing operation.
package route
