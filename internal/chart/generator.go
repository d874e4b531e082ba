// Package chart runs the seating engine over a sequence of rooms.  It owns
// the identifier queues for the duration of a run, asks a ReplenishmentPort
// for fresh lists between rooms and reports what happened through events and
// logs.
package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/exam-seating/internal/queue"
	"github.com/iliyamo/exam-seating/internal/seating"
)

// ErrNoRooms is returned when a request lists no rooms.
var ErrNoRooms = errors.New("no rooms to seat")

// ErrPositionMismatch is returned when rooms disagree on the number of seat
// positions, or the roster count does not match it.
var ErrPositionMismatch = errors.New("seat positions differ between rooms and rosters")

// Request describes one run.  Rooms are seated strictly in order; Rosters
// holds the initial identifier list for each seat position.
type Request struct {
	OwnerID uint64
	Rooms   []seating.RoomSpec
	Rosters [][]string
}

// RoomChart is the outcome for one room.
type RoomChart struct {
	Spec        seating.RoomSpec         `json:"room"`
	Assignments []seating.SeatAssignment `json:"assignments"`
	Exhausted   []int                    `json:"exhausted_positions,omitempty"`
	Replenished []int                    `json:"replenished_positions,omitempty"`
	Cells       []seating.GridCell       `json:"cells"`
}

// Blank counts seats that received no identifier.
func (r RoomChart) Blank() int {
	n := 0
	for _, a := range r.Assignments {
		if a.Identifier == "" {
			n++
		}
	}
	return n
}

// Chart is a complete run.
type Chart struct {
	ID        string      `json:"id"`
	OwnerID   uint64      `json:"owner_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Rooms     []RoomChart `json:"rooms"`
}

// Seats counts every seat in the chart.
func (c *Chart) Seats() int {
	n := 0
	for _, r := range c.Rooms {
		n += len(r.Assignments)
	}
	return n
}

// Blank counts seats without an identifier across all rooms.
func (c *Chart) Blank() int {
	n := 0
	for _, r := range c.Rooms {
		n += r.Blank()
	}
	return n
}

// EventSink receives domain events.  Failures are logged and never abort a run.
type EventSink interface {
	PublishPositionExhausted(ctx context.Context, ev queue.PositionExhaustedEvent) error
	PublishChartGenerated(ctx context.Context, ev queue.ChartGeneratedEvent) error
}

// Generator seats rooms and lays them out.
type Generator struct {
	Layout      seating.Layout
	Replenisher ReplenishmentPort    // optional; nil leaves exhausted positions blank
	Events      EventSink            // optional
	Progress    seating.ProgressFunc // optional
	Logger      *zap.Logger
	// ReplenishDrained also refills queues that were used up exactly, before
	// they had a chance to report exhaustion.
	ReplenishDrained bool

	now func() time.Time
}

// NewGenerator builds a Generator with the given layout and logger.
func NewGenerator(layout seating.Layout, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Layout: layout, Logger: logger, now: time.Now}
}

// Generate seats every room of the request in order.  Queue cursors carry
// across rooms.  After each room but the last, exhausted positions are offered
// to the Replenisher; a replacement list takes effect from the next room.
// Context cancellation is honoured between rooms only.
func (g *Generator) Generate(ctx context.Context, req Request) (*Chart, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	logger := g.logger()
	chart := &Chart{ID: uuid.NewString(), OwnerID: req.OwnerID, CreatedAt: g.clock().UTC()}
	logger = logger.With(zap.String("chart_id", chart.ID))
	queues := seating.NewQueues(req.Rosters)
	alloc := seating.Allocator{Progress: g.Progress}

	for i, spec := range req.Rooms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := alloc.AllocateRoom(spec, queues)
		if err != nil {
			return nil, fmt.Errorf("allocate room %q: %w", spec.RoomID, err)
		}
		cells, err := g.Layout.BuildGrid(spec, res.Assignments)
		if err != nil {
			return nil, fmt.Errorf("lay out room %q: %w", spec.RoomID, err)
		}
		room := RoomChart{Spec: spec, Assignments: res.Assignments, Exhausted: res.Exhausted, Cells: cells}
		logger.Info("room seated",
			zap.String("room", spec.RoomID),
			zap.Int("seats", len(res.Assignments)),
			zap.Int("blank", room.Blank()),
			zap.Ints("exhausted", res.Exhausted),
		)
		for _, pos := range res.Exhausted {
			g.publishExhausted(ctx, chart.ID, spec, pos)
		}

		if i < len(req.Rooms)-1 {
			room.Replenished, err = g.replenish(ctx, logger, spec, res, queues)
			if err != nil {
				return nil, err
			}
		}
		chart.Rooms = append(chart.Rooms, room)
	}

	g.publishGenerated(ctx, chart)
	logger.Info("chart generated", zap.Int("rooms", len(chart.Rooms)), zap.Int("seats", chart.Seats()))
	return chart, nil
}

// replenish asks the port for a new list for every position that ran out in
// the room just seated.  A refusal or an empty list leaves the queue as it is.
func (g *Generator) replenish(ctx context.Context, logger *zap.Logger, spec seating.RoomSpec, res seating.Allocation, queues []*seating.IdentifierQueue) ([]int, error) {
	if g.Replenisher == nil {
		return nil, nil
	}
	var done []int
	for pos := 1; pos <= len(queues); pos++ {
		q := queues[pos-1]
		if !res.IsExhausted(pos) && !(g.ReplenishDrained && q.Drained()) {
			continue
		}
		name := spec.PositionNames[pos-1]
		ids, err := g.Replenisher.Replenish(ctx, pos, name)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrReplenishDeclined):
			logger.Info("replenishment declined", zap.String("room", spec.RoomID), zap.Int("position", pos), zap.String("name", name))
			continue
		case err != nil:
			logger.Warn("replenishment failed", zap.String("room", spec.RoomID), zap.Int("position", pos), zap.String("name", name), zap.Error(err))
			continue
		case len(ids) == 0:
			logger.Info("replenishment returned no identifiers", zap.String("room", spec.RoomID), zap.Int("position", pos), zap.String("name", name))
			continue
		}
		q.Replace(ids)
		done = append(done, pos)
		logger.Info("queue replenished", zap.String("after_room", spec.RoomID), zap.Int("position", pos), zap.String("name", name), zap.Int("identifiers", len(ids)))
	}
	return done, nil
}

func (g *Generator) publishExhausted(ctx context.Context, chartID string, spec seating.RoomSpec, pos int) {
	if g.Events == nil {
		return
	}
	ev := queue.PositionExhaustedEvent{
		ChartID:      chartID,
		RoomID:       spec.RoomID,
		Position:     pos,
		PositionName: spec.PositionNames[pos-1],
		OccurredAt:   g.clock().UTC().Format(time.RFC3339),
	}
	if err := g.Events.PublishPositionExhausted(ctx, ev); err != nil {
		g.logger().Warn("publish position exhausted failed", zap.String("chart_id", chartID), zap.Error(err))
	}
}

func (g *Generator) publishGenerated(ctx context.Context, c *Chart) {
	if g.Events == nil {
		return
	}
	ev := queue.ChartGeneratedEvent{
		ChartID:     c.ID,
		OwnerID:     c.OwnerID,
		Rooms:       len(c.Rooms),
		Seats:       c.Seats(),
		GeneratedAt: c.CreatedAt.Format(time.RFC3339),
	}
	ev.BlankSeats = c.Blank()
	for _, r := range c.Rooms {
		ev.RoomIDs = append(ev.RoomIDs, r.Spec.RoomID)
	}
	if err := g.Events.PublishChartGenerated(ctx, ev); err != nil {
		g.logger().Warn("publish chart generated failed", zap.String("chart_id", c.ID), zap.Error(err))
	}
}

func (g *Generator) clock() time.Time {
	if g.now == nil {
		return time.Now()
	}
	return g.now()
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// checkRequest rejects runs whose rooms cannot share one set of queues.
func checkRequest(req Request) error {
	if len(req.Rooms) == 0 {
		return ErrNoRooms
	}
	p := len(req.Rosters)
	for _, r := range req.Rooms {
		if r.Positions() != p {
			return fmt.Errorf("room %q has %d positions, %d rosters supplied: %w", r.RoomID, r.Positions(), p, ErrPositionMismatch)
		}
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
