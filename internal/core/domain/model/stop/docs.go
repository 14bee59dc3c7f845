// Package stop implements the Stop aggregate: a single delivery point with
// its recipient, resource demand, time window, priority and lifecycle state
// machine. Stops start pending, are assigned into routes by the scheduler,
// advance through en_route and arrived as the driver progresses, and
// terminate in completed, failed, cancelled or rescheduled.
//
// The package also carries the supporting value objects: Priority, Status,
// TimeWindow and Proof, plus the failure-reason classification that decides
// whether a failed attempt raises an incident report.
package stop
