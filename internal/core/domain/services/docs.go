// Package services contains the stateless domain services of the dispatch
// core: the distance/travel-time matrix builder with its time-of-day speed
// model, the route optimizer with its three strategies (exhaustive search,
// 2-opt, simulated annealing), the driver assignment engine, and the zone
// table used for both stop grouping and geofencing.
//
// Services hold no mutable state of their own; persistence and side effects
// stay with the application layer that orchestrates them.
package services
