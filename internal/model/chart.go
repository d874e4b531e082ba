package model

import "time"

// Chart is a generated seating chart as stored in the `charts` table.
// The grid itself is kept as JSON and the printable workbook as a blob
// so both can be served again without re-running the allocation.
//
// Fields:
//  ID         – chart UUID.
//  OwnerID    – coordinator that generated the chart.
//  RoomCount  – number of rooms seated.
//  SeatCount  – total seats across all rooms.
//  BlankSeats – seats left without an identifier.
//  Body       – JSON encoding of the rooms, assignments and grid cells.
//  Workbook   – xlsx rendering of the chart.
//  CreatedAt  – generation timestamp.
type Chart struct {
    ID         string    // charts.id
    OwnerID    uint64    // charts.owner_id
    RoomCount  int       // charts.room_count
    SeatCount  int       // charts.seat_count
    BlankSeats int       // charts.blank_seats
    Body       []byte    // charts.body
    Workbook   []byte    // charts.workbook
    CreatedAt  time.Time // charts.created_at
}
