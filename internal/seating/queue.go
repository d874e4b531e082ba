// Package seating implements the seat allocation engine and the grid layout
// used to print a seating chart.  Nothing in this package performs I/O; callers
// load identifiers, supply replacements and export the resulting grids.
package seating

// IdentifierQueue is the ordered list of identifiers that feeds one seat
// position, together with a read cursor.  A queue is owned by a single run and
// borrowed by the allocator for the duration of one room, so its cursor state
// carries over from room to room until the caller replaces the list.
type IdentifierQueue struct {
	ids    []string // identifiers in consumption order (duplicates allowed)
	cursor int      // index of the next identifier; 0 <= cursor <= len(ids)
}

// NewIdentifierQueue builds a queue positioned at the first identifier.  The
// slice is copied so later changes by the caller do not leak into the run.
func NewIdentifierQueue(ids []string) *IdentifierQueue {
	q := &IdentifierQueue{}
	q.Replace(ids)
	return q
}

// TakeNext returns the identifier under the cursor and advances.  Once the
// cursor reaches the end it returns an empty identifier and exhausted=true on
// every call, without moving, until Replace installs a new list.
func (q *IdentifierQueue) TakeNext() (string, bool) {
	if q.cursor >= len(q.ids) {
		return "", true
	}
	id := q.ids[q.cursor]
	q.cursor++
	return id, false
}

// Replace installs a fresh list and rewinds the cursor.
func (q *IdentifierQueue) Replace(ids []string) {
	q.ids = append([]string(nil), ids...)
	q.cursor = 0
}

// Cursor reports how many identifiers have been consumed.
func (q *IdentifierQueue) Cursor() int { return q.cursor }

// Len reports the size of the current list.
func (q *IdentifierQueue) Len() int { return len(q.ids) }

// Remaining reports how many identifiers are left before exhaustion.
func (q *IdentifierQueue) Remaining() int { return len(q.ids) - q.cursor }

// Drained reports whether the next TakeNext will signal exhaustion.
func (q *IdentifierQueue) Drained() bool { return q.cursor >= len(q.ids) }

// NewQueues builds one queue per list, in position order.
func NewQueues(lists [][]string) []*IdentifierQueue {
	out := make([]*IdentifierQueue, len(lists))
	for i, l := range lists {
		out[i] = NewIdentifierQueue(l)
	}
	return out
}
