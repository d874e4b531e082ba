// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Both queues are durable.
const (
    ChartGeneratedQueue    = "chart.generated"
    PositionExhaustedQueue = "roster.exhausted"
)

// ChartGeneratedEvent is published once a seating chart has been produced.
// It carries enough detail for downstream consumers to log or notify without
// reading the stored chart.
type ChartGeneratedEvent struct {
    ChartID     string   `json:"chart_id"`
    OwnerID     uint64   `json:"owner_id"`
    Rooms       int      `json:"rooms"`
    RoomIDs     []string `json:"room_ids"`
    Seats       int      `json:"seats"`
    BlankSeats  int      `json:"blank_seats"`
    GeneratedAt string   `json:"generated_at"`
}

// PositionExhaustedEvent is published when a seat position ran out of
// identifiers while a room was being seated.
type PositionExhaustedEvent struct {
    ChartID      string `json:"chart_id"`
    RoomID       string `json:"room_id"`
    Position     int    `json:"position"`
    PositionName string `json:"position_name"`
    OccurredAt   string `json:"occurred_at"`
}
