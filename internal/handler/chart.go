package handler // handler defines http handlers

import (
    "context"       // DB timeouts
    "encoding/json" // chart body persistence
    "errors"        // sentinel comparison
    "net/http"      // status codes
    "strconv"       // limit parsing
    "time"          // timeouts

    "github.com/labstack/echo/v4" // echo request context
    "go.uber.org/zap"             // structured logging

    "github.com/iliyamo/exam-seating/internal/chart"      // generation service
    "github.com/iliyamo/exam-seating/internal/model"      // chart model
    "github.com/iliyamo/exam-seating/internal/repository" // persistence
    "github.com/iliyamo/exam-seating/internal/seating"    // layout
    "github.com/iliyamo/exam-seating/internal/sheet"      // xlsx rendering
)

// ChartSettings configure every generator built by the handlers.
type ChartSettings struct {
    Layout           seating.Layout
    ReplenishDrained bool
    Events           chart.EventSink // optional
    Logger           *zap.Logger
}

// newGenerator builds a generator with the given replenishment source.
func (s ChartSettings) newGenerator(repl chart.ReplenishmentPort) *chart.Generator {
    g := chart.NewGenerator(s.Layout, s.Logger)
    g.Replenisher = repl
    g.ReplenishDrained = s.ReplenishDrained
    g.Events = s.Events
    return g
}

// ChartHandler generates charts from stored rooms and rosters.
type ChartHandler struct {
    Rooms    *repository.RoomRepo   // Rooms resolves room ids
    Rosters  *repository.RosterRepo // Rosters seeds and replenishes queues
    Charts   *repository.ChartRepo  // Charts stores results
    Settings ChartSettings
}

// NewChartHandler constructs a ChartHandler and panics if any dependency is nil
func NewChartHandler(rooms *repository.RoomRepo, rosters *repository.RosterRepo, charts *repository.ChartRepo, settings ChartSettings) *ChartHandler {
    if rooms == nil || rosters == nil || charts == nil {
        panic("nil repository passed to NewChartHandler")
    }
    return &ChartHandler{Rooms: rooms, Rosters: rosters, Charts: charts, Settings: settings}
}

// generateRequest is the body of POST /v1/charts.  RoomIDs are seated in
// the given order; RosterIDs holds the starting roster for each seat
// position, left to right.
type generateRequest struct {
    RoomIDs   []uint64 `json:"room_ids"`
    RosterIDs []uint64 `json:"roster_ids"`
}

// chartSummary is the listing form of a stored chart.
type chartSummary struct {
    ID         string    `json:"id"`
    RoomCount  int       `json:"room_count"`
    SeatCount  int       `json:"seat_count"`
    BlankSeats int       `json:"blank_seats"`
    CreatedAt  time.Time `json:"created_at"`
}

func summarize(c model.Chart) chartSummary {
    return chartSummary{ID: c.ID, RoomCount: c.RoomCount, SeatCount: c.SeatCount, BlankSeats: c.BlankSeats, CreatedAt: c.CreatedAt}
}

// GenerateChart handles POST /v1/charts.  Exhausted positions are refilled
// from the owner's next stored roster for that position, in upload order.
func (h *ChartHandler) GenerateChart(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req generateRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.RoomIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_ids required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    rooms, err := h.Rooms.GetManyByOwner(ctx, req.RoomIDs, uid)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rooms failed"})
    }
    specs := make([]seating.RoomSpec, len(rooms))
    for i, r := range rooms {
        specs[i] = roomSpec(r)
    }

    lists := make([][]string, len(req.RosterIDs))
    seeded := make(map[int]uint64, len(req.RosterIDs))
    for i, id := range req.RosterIDs {
        ro, err := h.Rosters.GetByIDAndOwner(ctx, id, uid)
        if err != nil {
            if errors.Is(err, repository.ErrRosterNotFound) {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "roster " + strconv.FormatUint(id, 10) + " not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rosters failed"})
        }
        if ro.Position != i+1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "roster " + strconv.FormatUint(id, 10) + " belongs to position " + strconv.Itoa(ro.Position)})
        }
        lists[i] = ro.Identifiers
        seeded[i+1] = ro.ID
    }

    gen := h.Settings.newGenerator(chart.NewStoreReplenisher(h.Rosters, uid, seeded))
    ch, err := gen.Generate(ctx, chart.Request{OwnerID: uid, Rooms: specs, Rosters: lists})
    if err != nil {
        return c.JSON(generationStatus(err), echo.Map{"error": err.Error()})
    }

    body, err := json.Marshal(ch)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode chart failed"})
    }
    workbook, err := sheet.Bytes(roomSheets(ch))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render workbook failed"})
    }
    rec := &model.Chart{
        ID:         ch.ID,
        OwnerID:    uid,
        RoomCount:  len(ch.Rooms),
        SeatCount:  ch.Seats(),
        BlankSeats: ch.Blank(),
        Body:       body,
        Workbook:   workbook,
        CreatedAt:  ch.CreatedAt,
    }
    if err := h.Charts.Create(ctx, rec); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save chart failed"})
    }
    return c.JSONBlob(http.StatusCreated, body)
}

// ListCharts handles GET /v1/charts?limit=N
func (h *ChartHandler) ListCharts(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    limit, _ := strconv.Atoi(c.QueryParam("limit")) // 0 selects the repository default
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    charts, err := h.Charts.ListByOwner(ctx, uid, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list charts failed"})
    }
    items := make([]chartSummary, 0, len(charts))
    for _, ch := range charts {
        items = append(items, summarize(ch))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// loadChart resolves :id for the current owner, writing the error response itself.
func (h *ChartHandler) loadChart(c echo.Context) (*model.Chart, error) {
    uid, err := getUserID(c)
    if err != nil {
        return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    ch, err := h.Charts.GetByIDAndOwner(ctx, c.Param("id"), uid)
    if err != nil {
        if errors.Is(err, repository.ErrChartNotFound) {
            return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "chart not found"})
        }
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load chart failed"})
    }
    return ch, nil
}

// GetChart handles GET /v1/charts/:id and returns the stored chart JSON.
func (h *ChartHandler) GetChart(c echo.Context) error {
    ch, err := h.loadChart(c)
    if ch == nil {
        return err
    }
    return c.JSONBlob(http.StatusOK, ch.Body)
}

// DownloadChart handles GET /v1/charts/:id/xlsx
func (h *ChartHandler) DownloadChart(c echo.Context) error {
    ch, err := h.loadChart(c)
    if ch == nil {
        return err
    }
    return sendWorkbook(c, "seating_chart_"+ch.ID+".xlsx", ch.Workbook)
}
