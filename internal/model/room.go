package model

import "time"

// Room is a saved exam room layout.  Rooms belong to the coordinator
// who created them and are referenced by id when a chart is requested.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user ID of the coordinator owning the room.
//  RoomNumber    – label printed as the chart title (unique per owner).
//  SeatRows      – number of physical rows of benches.
//  BenchesPerRow – benches in each physical row.
//  PositionNames – display name per seat position on a bench, left to right.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Room struct {
    ID            uint64    `json:"id"`             // rooms.id
    OwnerID       uint64    `json:"owner_id"`       // rooms.owner_id
    RoomNumber    string    `json:"room_number"`    // rooms.room_number
    SeatRows      uint32    `json:"seat_rows"`      // rooms.seat_rows
    BenchesPerRow uint32    `json:"benches_per_row"` // rooms.benches_per_row
    PositionNames []string  `json:"position_names"` // rooms.position_names (JSON array)
    CreatedAt     time.Time `json:"created_at"`     // rooms.created_at
    UpdatedAt     time.Time `json:"updated_at"`     // rooms.updated_at
}
