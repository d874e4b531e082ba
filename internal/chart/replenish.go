package chart

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/exam-seating/internal/model"
	"github.com/iliyamo/exam-seating/internal/repository"
)

// ErrReplenishDeclined is returned by a ReplenishmentPort that has nothing
// to offer for a position.  The position keeps yielding blank seats.
var ErrReplenishDeclined = errors.New("replenishment declined")

// ReplenishmentPort supplies a fresh identifier list for a seat position whose
// queue ran out.  Position is 1-based; name is the position's display name.
type ReplenishmentPort interface {
	Replenish(ctx context.Context, position int, name string) ([]string, error)
}

// ReplenishFunc adapts a function to ReplenishmentPort.
type ReplenishFunc func(ctx context.Context, position int, name string) ([]string, error)

// Replenish calls f.
func (f ReplenishFunc) Replenish(ctx context.Context, position int, name string) ([]string, error) {
	return f(ctx, position, name)
}

// StaticReplenisher hands out pre-loaded lists per position, in order.
type StaticReplenisher struct {
	mu    sync.Mutex
	lists map[int][][]string
}

// NewStaticReplenisher builds a replenisher from extra lists keyed by 1-based position.
func NewStaticReplenisher(lists map[int][][]string) *StaticReplenisher {
	cp := make(map[int][][]string, len(lists))
	for k, v := range lists {
		cp[k] = append([][]string(nil), v...)
	}
	return &StaticReplenisher{lists: cp}
}

// Replenish pops the next list for the position.
func (s *StaticReplenisher) Replenish(_ context.Context, position int, _ string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.lists[position]
	if len(pending) == 0 {
		return nil, ErrReplenishDeclined
	}
	s.lists[position] = pending[1:]
	return pending[0], nil
}

// RosterSource finds the stored roster that follows afterID for a position.
type RosterSource interface {
	NextForPosition(ctx context.Context, ownerID uint64, position int, afterID uint64) (*model.Roster, error)
}

// StoreReplenisher pulls follow-up rosters from storage.  Each position
// advances through the owner's rosters in creation order, starting after the
// roster that seeded the run.  A struct literal starts every position at the
// owner's first roster.
type StoreReplenisher struct {
	Source  RosterSource
	OwnerID uint64

	mu   sync.Mutex
	last map[int]uint64
}

// NewStoreReplenisher starts each position after the given roster ids.
func NewStoreReplenisher(src RosterSource, ownerID uint64, seeded map[int]uint64) *StoreReplenisher {
	last := make(map[int]uint64, len(seeded))
	for k, v := range seeded {
		last[k] = v
	}
	return &StoreReplenisher{Source: src, OwnerID: ownerID, last: last}
}

// Replenish loads the next roster for the position.  A replenisher without
// a Source declines every request.
func (s *StoreReplenisher) Replenish(ctx context.Context, position int, _ string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Source == nil {
		return nil, ErrReplenishDeclined
	}
	if s.last == nil {
		s.last = make(map[int]uint64)
	}
	r, err := s.Source.NextForPosition(ctx, s.OwnerID, position, s.last[position])
	if err != nil {
		if errors.Is(err, repository.ErrRosterNotFound) {
			return nil, ErrReplenishDeclined
		}
		return nil, err
	}
	s.last[position] = r.ID
	return r.Identifiers, nil
}
