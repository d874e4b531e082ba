package seating

import (
	"fmt"
	"sort"
)

// ProgressFunc observes allocation progress within a room.  Ratio grows
// monotonically from 0 to 1 as seats are filled and carries no other meaning.
type ProgressFunc func(roomID string, ratio float64)

// Allocation is the result of filling one room.
type Allocation struct {
	Assignments []SeatAssignment `json:"assignments"`
	// Exhausted lists, in ascending order, the 1-based seat positions whose
	// queue ran out during this room.
	Exhausted []int `json:"exhausted_positions"`
}

// IsExhausted reports whether position p ran out during the room.
func (a Allocation) IsExhausted(p int) bool {
	i := sort.SearchInts(a.Exhausted, p)
	return i < len(a.Exhausted) && a.Exhausted[i] == p
}

// Allocator fills rooms from per-position identifier queues.  The zero value
// is ready to use.
type Allocator struct {
	Progress ProgressFunc // optional
}

// AllocateRoom walks the room row by row, bench by bench and position by
// position, taking one identifier from the matching queue for every seat.
// Queues are borrowed, not copied: their cursors keep their state for the
// next room.  The allocator never replenishes a queue; it only reports which
// positions ran out so the caller can act before the next room.
func (a *Allocator) AllocateRoom(spec RoomSpec, queues []*IdentifierQueue) (Allocation, error) {
	if err := spec.Validate(); err != nil {
		return Allocation{}, err
	}
	p := spec.Positions()
	if len(queues) != p {
		return Allocation{}, fmt.Errorf("room %q has %d positions, got %d queues: %w", spec.RoomID, p, len(queues), ErrQueueCountMismatch)
	}
	for i, q := range queues {
		if q == nil {
			return Allocation{}, fmt.Errorf("room %q: queue for position %d is nil: %w", spec.RoomID, i+1, ErrQueueCountMismatch)
		}
	}

	total := spec.Seats()
	out := Allocation{Assignments: make([]SeatAssignment, 0, total)}
	exhausted := make([]bool, p)
	done := 0
	for row := 1; row <= spec.Rows; row++ {
		for bench := 1; bench <= spec.Benches; bench++ {
			for pos := 1; pos <= p; pos++ {
				id, empty := queues[pos-1].TakeNext()
				if empty {
					exhausted[pos-1] = true
				}
				out.Assignments = append(out.Assignments, SeatAssignment{
					RoomID:     spec.RoomID,
					Row:        row,
					Bench:      bench,
					Position:   pos,
					Identifier: id,
				})
				done++
				if a.Progress != nil {
					a.Progress(spec.RoomID, float64(done)/float64(total))
				}
			}
		}
	}
	for i, ex := range exhausted {
		if ex {
			out.Exhausted = append(out.Exhausted, i+1)
		}
	}
	return out, nil
}
