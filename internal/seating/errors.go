package seating

import "errors"

// ErrQueueCountMismatch is returned when the number of queues handed to the
// allocator differs from the number of seat positions in the room.
var ErrQueueCountMismatch = errors.New("queue count does not match seat positions")

// ErrNegativeDimension is returned for a room with a negative row or bench count.
var ErrNegativeDimension = errors.New("room dimensions must not be negative")

// ErrGroupTooNarrow is returned when the column-group width cannot hold every
// seat position of a physical row.
var ErrGroupTooNarrow = errors.New("column group narrower than seat positions")
