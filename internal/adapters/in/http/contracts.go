package http

import "time"

// NewStop registers a delivery for a service date. The window bounds must
// either both be present or both be absent.
type NewStop struct {
	Address            string     `json:"address"`
	RecipientName      string     `json:"recipient_name"`
	RecipientPhone     string     `json:"recipient_phone,omitempty"`
	Priority           string     `json:"priority"`
	WeightKg           float64    `json:"weight_kg"`
	VolumeM3           float64    `json:"volume_m3"`
	RequiresColdChain  bool       `json:"requires_cold_chain,omitempty"`
	ServiceDate        string     `json:"service_date"`
	WindowStart        *time.Time `json:"window_start,omitempty"`
	WindowEnd          *time.Time `json:"window_end,omitempty"`
	ServiceTimeMinutes int        `json:"service_time_minutes,omitempty"`
	CODAmount          float64    `json:"cod_amount,omitempty"`
}

// CreatedStop acknowledges intake with the public tracking reference.
type CreatedStop struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// CompletionProof closes a stop as delivered.
type CompletionProof struct {
	ProofKind      string `json:"proof_kind"`
	ProofReference string `json:"proof_reference"`
	ReceivedBy     string `json:"received_by"`
	CODCollected   bool   `json:"cod_collected,omitempty"`
}

// FailureReport records a failed delivery attempt.
type FailureReport struct {
	Reason string `json:"reason"`
}

// RescheduleRequest moves a stop to a new service date.
type RescheduleRequest struct {
	ServiceDate string `json:"service_date"`
}

// Error is the JSON error payload returned by every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ScheduleRequest asks for routes to be built for one service date.
// PlannedStart may be omitted; it then defaults to thirty minutes from now.
type ScheduleRequest struct {
	ServiceDate  string    `json:"service_date"`
	PlannedStart time.Time `json:"planned_start,omitempty"`
}

// ScheduleResult reports one scheduling run.
type ScheduleResult struct {
	RouteIDs   []string         `json:"route_ids"`
	Unassigned []UnassignedStop `json:"unassigned"`
}

// UnassignedStop names a stop no driver could take and why.
type UnassignedStop struct {
	StopID string `json:"stop_id"`
	Reason string `json:"reason"`
}

// OptimizationRun reports the metrics of one optimization pass.
type OptimizationRun struct {
	RouteID             string  `json:"route_id"`
	Method              string  `json:"method"`
	OriginalDistanceKm  float64 `json:"original_distance_km"`
	OptimizedDistanceKm float64 `json:"optimized_distance_km"`
	Score               float64 `json:"score"`
}

// LocationReport is a driver position sample. ReportedAt may be omitted
// when the device clock is unreliable; the server then uses receipt time.
type LocationReport struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	ReportedAt time.Time `json:"reported_at,omitempty"`
}

// ActiveRoute is one row of the dispatcher board.
type ActiveRoute struct {
	ID                   string  `json:"id"`
	DriverID             string  `json:"driver_id"`
	DriverName           string  `json:"driver_name"`
	Status               string  `json:"status"`
	ServiceDate          string  `json:"service_date"`
	StopCount            int     `json:"stop_count"`
	PendingStops         int     `json:"pending_stops"`
	CompletedStops       int     `json:"completed_stops"`
	FailedStops          int     `json:"failed_stops"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	OptimizationMethod   string  `json:"optimization_method"`
	OptimizationScore    float64 `json:"optimization_score"`
}

// TrackingInfo is the recipient-facing tracking payload. Name and address
// are masked unless the request carried the recipient's access token.
type TrackingInfo struct {
	Reference        string     `json:"reference"`
	Status           string     `json:"status"`
	RecipientName    string     `json:"recipient_name,omitempty"`
	Address          string     `json:"address,omitempty"`
	ServiceDate      string     `json:"service_date,omitempty"`
	SequencePosition *int       `json:"sequence_position,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	LastUpdatedAt    time.Time  `json:"last_updated_at,omitempty"`
}
