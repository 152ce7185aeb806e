package models

// PositionRecord is the latest known state of one vehicle. A new update
// for the same VehicleID fully replaces the prior record; optional
// telemetry absent from the update stays nil rather than inheriting the
// old value.
type PositionRecord struct {
	VehicleID int      `json:"vehicle_id"`
	RouteID   int      `json:"route_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
	Accuracy  *float64 `json:"accuracy"`
	// ObservedAt is when the device measured the position, in ms since
	// epoch, not when the server received it.
	ObservedAt int64 `json:"observed_at"`
}
