package seating

import "fmt"

// RoomSpec describes the geometry of one room.  Every room in a run must have
// the same number of seat positions because queues are indexed by position.
type RoomSpec struct {
	RoomID        string   `json:"room_id"`        // opaque label such as a room number
	Rows          int      `json:"rows"`           // physical rows of benches
	Benches       int      `json:"benches"`        // benches per physical row
	PositionNames []string `json:"position_names"` // display name per seat position, in bench order
}

// Positions returns the number of seat positions per bench.
func (s RoomSpec) Positions() int { return len(s.PositionNames) }

// Seats returns the number of seats in the room (rows × benches × positions).
func (s RoomSpec) Seats() int {
	if s.Rows <= 0 || s.Benches <= 0 {
		return 0
	}
	return s.Rows * s.Benches * s.Positions()
}

// Validate reports contract violations in the room geometry.
func (s RoomSpec) Validate() error {
	if s.Rows < 0 || s.Benches < 0 {
		return fmt.Errorf("room %q (rows=%d benches=%d): %w", s.RoomID, s.Rows, s.Benches, ErrNegativeDimension)
	}
	return nil
}

// SeatAssignment records which identifier sits at one seat.  An empty
// Identifier means no identifier was available for that seat.
type SeatAssignment struct {
	RoomID     string `json:"room_id"`
	Row        int    `json:"row"`      // 1..Rows
	Bench      int    `json:"bench"`    // 1..Benches
	Position   int    `json:"position"` // 1..Positions
	Identifier string `json:"identifier"`
}

// seatKey indexes an assignment inside one room.
type seatKey struct {
	row, bench, position int
}

func (a SeatAssignment) key() seatKey {
	return seatKey{row: a.Row, bench: a.Bench, position: a.Position}
}
