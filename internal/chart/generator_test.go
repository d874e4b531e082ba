package chart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/exam-seating/internal/chart"
	"github.com/iliyamo/exam-seating/internal/model"
	"github.com/iliyamo/exam-seating/internal/queue"
	"github.com/iliyamo/exam-seating/internal/repository"
	"github.com/iliyamo/exam-seating/internal/seating"
)

type recordingSink struct {
	exhausted []queue.PositionExhaustedEvent
	generated []queue.ChartGeneratedEvent
	err       error
}

func (s *recordingSink) PublishPositionExhausted(_ context.Context, ev queue.PositionExhaustedEvent) error {
	s.exhausted = append(s.exhausted, ev)
	return s.err
}

func (s *recordingSink) PublishChartGenerated(_ context.Context, ev queue.ChartGeneratedEvent) error {
	s.generated = append(s.generated, ev)
	return s.err
}

func newTestGenerator(t testing.TB) (*chart.Generator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return chart.NewGenerator(seating.DefaultLayout(), zap.New(core)), logs
}

func room(id string) seating.RoomSpec {
	return seating.RoomSpec{RoomID: id, Rows: 2, Benches: 1, PositionNames: []string{"Left", "Right"}}
}

func values(r chart.RoomChart) []string {
	out := make([]string, len(r.Assignments))
	for i, a := range r.Assignments {
		out[i] = a.Identifier
	}
	return out
}

func TestGenerate_ReplenishesBetweenRooms(t *testing.T) {
	g, logs := newTestGenerator(t)
	sink := &recordingSink{}
	g.Events = sink
	g.Replenisher = chart.NewStaticReplenisher(map[int][][]string{2: {{"C1", "C2"}}})

	c, err := g.Generate(context.Background(), chart.Request{
		OwnerID: 3,
		Rooms:   []seating.RoomSpec{room("101"), room("102")},
		Rosters: [][]string{{"A1", "A2", "A3", "A4"}, {"B1"}},
	})
	require.NoError(t, err)
	require.Len(t, c.Rooms, 2)

	assert.Equal(t, []string{"A1", "B1", "A2", ""}, values(c.Rooms[0]))
	assert.Equal(t, []int{2}, c.Rooms[0].Exhausted)
	assert.Equal(t, []int{2}, c.Rooms[0].Replenished)
	assert.Equal(t, []string{"A3", "C1", "A4", "C2"}, values(c.Rooms[1]))
	assert.Empty(t, c.Rooms[1].Exhausted)
	assert.NotEmpty(t, c.Rooms[1].Cells)

	require.Len(t, sink.exhausted, 1)
	assert.Equal(t, "Right", sink.exhausted[0].PositionName)
	assert.Equal(t, c.ID, sink.exhausted[0].ChartID)
	require.Len(t, sink.generated, 1)
	assert.Equal(t, 8, sink.generated[0].Seats)
	assert.Equal(t, 1, sink.generated[0].BlankSeats)
	assert.Equal(t, []string{"101", "102"}, sink.generated[0].RoomIDs)
	assert.Equal(t, uint64(3), sink.generated[0].OwnerID)

	assert.Equal(t, 1, logs.FilterMessage("queue replenished").Len())
}

func TestGenerate_DeclinedReplenishmentKeepsBlanks(t *testing.T) {
	g, logs := newTestGenerator(t)
	g.Replenisher = chart.NewStaticReplenisher(nil)

	c, err := g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{room("101"), room("102")},
		Rosters: [][]string{{"A1", "A2"}, {"B1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "", "", ""}, values(c.Rooms[1]))
	assert.Equal(t, []int{1, 2}, c.Rooms[1].Exhausted)
	assert.Equal(t, 1, logs.FilterMessage("replenishment declined").Len())
}

func TestGenerate_NoReplenishAfterLastRoom(t *testing.T) {
	g, _ := newTestGenerator(t)
	calls := 0
	g.Replenisher = chart.ReplenishFunc(func(context.Context, int, string) ([]string, error) {
		calls++
		return []string{"X"}, nil
	})

	_, err := g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{room("101")},
		Rosters: [][]string{{"A1"}, {"B1"}},
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestGenerate_ReplenishDrained(t *testing.T) {
	g, _ := newTestGenerator(t)
	g.ReplenishDrained = true
	var asked []int
	g.Replenisher = chart.ReplenishFunc(func(_ context.Context, pos int, _ string) ([]string, error) {
		asked = append(asked, pos)
		return []string{"N1", "N2"}, nil
	})

	c, err := g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{room("101"), room("102")},
		Rosters: [][]string{{"A1", "A2"}, {"B1", "B2", "B3"}},
	})
	require.NoError(t, err)

	// Left was used up exactly without reporting exhaustion; it is refilled anyway.
	assert.Empty(t, c.Rooms[0].Exhausted)
	assert.Equal(t, []int{1}, asked)
	assert.Equal(t, []string{"N1", "B3", "N2", ""}, values(c.Rooms[1]))
}

func TestGenerate_ReplenisherErrorIsNotFatal(t *testing.T) {
	g, logs := newTestGenerator(t)
	g.Replenisher = chart.ReplenishFunc(func(context.Context, int, string) ([]string, error) {
		return nil, errors.New("disk on fire")
	})

	_, err := g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{room("101"), room("102")},
		Rosters: [][]string{{"A1"}, {"B1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("replenishment failed").Len())
}

func TestGenerate_EventErrorsAreLogged(t *testing.T) {
	g, logs := newTestGenerator(t)
	g.Events = &recordingSink{err: errors.New("broker down")}

	_, err := g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{room("101")},
		Rosters: [][]string{{"A1"}, {}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("publish position exhausted failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("publish chart generated failed").Len())
}

func TestGenerate_ContractViolations(t *testing.T) {
	g, _ := newTestGenerator(t)

	_, err := g.Generate(context.Background(), chart.Request{Rosters: [][]string{{"A1"}}})
	assert.ErrorIs(t, err, chart.ErrNoRooms)

	_, err = g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{room("101")},
		Rosters: [][]string{{"A1"}},
	})
	assert.ErrorIs(t, err, chart.ErrPositionMismatch)

	bad := room("bad")
	bad.Benches = -1
	_, err = g.Generate(context.Background(), chart.Request{
		Rooms:   []seating.RoomSpec{bad},
		Rosters: [][]string{{"A1"}, {"B1"}},
	})
	assert.ErrorIs(t, err, seating.ErrNegativeDimension)
}

func TestGenerate_Cancelled(t *testing.T) {
	g, _ := newTestGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, chart.Request{
		Rooms:   []seating.RoomSpec{room("101")},
		Rosters: [][]string{{"A1"}, {"B1"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeRosters struct {
	rosters []model.Roster
}

func (f *fakeRosters) NextForPosition(_ context.Context, ownerID uint64, position int, afterID uint64) (*model.Roster, error) {
	for i := range f.rosters {
		r := f.rosters[i]
		if r.OwnerID == ownerID && r.Position == position && r.ID > afterID {
			return &r, nil
		}
	}
	return nil, repository.ErrRosterNotFound
}

func TestStoreReplenisher_WalksRostersInOrder(t *testing.T) {
	src := &fakeRosters{rosters: []model.Roster{
		{ID: 1, OwnerID: 9, Position: 1, Identifiers: []string{"seed"}},
		{ID: 4, OwnerID: 9, Position: 1, Identifiers: []string{"L2"}},
		{ID: 5, OwnerID: 8, Position: 1, Identifiers: []string{"other owner"}},
		{ID: 7, OwnerID: 9, Position: 1, Identifiers: []string{"L3"}},
	}}
	r := chart.NewStoreReplenisher(src, 9, map[int]uint64{1: 1})

	ids, err := r.Replenish(context.Background(), 1, "Left")
	require.NoError(t, err)
	assert.Equal(t, []string{"L2"}, ids)

	ids, err = r.Replenish(context.Background(), 1, "Left")
	require.NoError(t, err)
	assert.Equal(t, []string{"L3"}, ids)

	_, err = r.Replenish(context.Background(), 1, "Left")
	assert.ErrorIs(t, err, chart.ErrReplenishDeclined)
}

func TestStoreReplenisher_ZeroValue(t *testing.T) {
	var empty chart.StoreReplenisher
	_, err := empty.Replenish(context.Background(), 1, "Left")
	assert.ErrorIs(t, err, chart.ErrReplenishDeclined)

	src := &fakeRosters{rosters: []model.Roster{
		{ID: 2, OwnerID: 9, Position: 1, Identifiers: []string{"L1"}},
		{ID: 3, OwnerID: 9, Position: 1, Identifiers: []string{"L2"}},
	}}
	lit := &chart.StoreReplenisher{Source: src, OwnerID: 9}
	ids, err := lit.Replenish(context.Background(), 1, "Left")
	require.NoError(t, err)
	assert.Equal(t, []string{"L1"}, ids)
	ids, err = lit.Replenish(context.Background(), 1, "Left")
	require.NoError(t, err)
	assert.Equal(t, []string{"L2"}, ids)
}

func TestStaticReplenisher_PopsInOrder(t *testing.T) {
	r := chart.NewStaticReplenisher(map[int][][]string{1: {{"a"}, {"b"}}})

	ids, err := r.Replenish(context.Background(), 1, "Left")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	ids, err = r.Replenish(context.Background(), 1, "Left")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
	_, err = r.Replenish(context.Background(), 1, "Left")
	assert.ErrorIs(t, err, chart.ErrReplenishDeclined)
	_, err = r.Replenish(context.Background(), 2, "Right")
	assert.ErrorIs(t, err, chart.ErrReplenishDeclined)
}
