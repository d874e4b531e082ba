package handler // handler defines http handlers

import (
    "context"  // request-scoped timeouts for DB calls
    "errors"   // sentinel comparison
    "net/http" // status codes
    "strings"  // trimming input
    "time"     // timeouts

    "github.com/labstack/echo/v4" // echo request context

    "github.com/iliyamo/exam-seating/internal/model"      // room model
    "github.com/iliyamo/exam-seating/internal/repository" // room persistence
    "github.com/iliyamo/exam-seating/internal/sheet"      // default position names
)

// maxPositions is the widest bench supported: Left, Middle and Right.
var maxPositions = len(sheet.Positions)

// RoomHandler manages a coordinator's saved rooms.
type RoomHandler struct {
    Rooms *repository.RoomRepo // Rooms provides room persistence
}

// NewRoomHandler constructs a RoomHandler and panics if the repository is nil
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
    if rooms == nil {
        panic("nil repository passed to NewRoomHandler")
    }
    return &RoomHandler{Rooms: rooms}
}

// createRoomRequest is the body of POST /v1/rooms.
type createRoomRequest struct {
    RoomNumber    string   `json:"room_number"`     // printed title, unique per owner
    Rows          int      `json:"rows"`            // physical rows of benches
    Benches       int      `json:"benches"`         // benches per row
    PositionNames []string `json:"position_names"`  // name per seat position, left to right
    PerBench      int      `json:"students_per_bench"` // used when position_names is omitted
}

// toRoom validates the request and fills default position names.
func (r createRoomRequest) toRoom(ownerID uint64) (*model.Room, string) {
    number := strings.TrimSpace(r.RoomNumber)
    if number == "" {
        return nil, "room_number required"
    }
    if r.Rows < 0 || r.Benches < 0 {
        return nil, "rows and benches must not be negative"
    }
    names := make([]string, 0, len(r.PositionNames))
    for _, n := range r.PositionNames {
        names = append(names, strings.TrimSpace(n))
    }
    if len(names) == 0 && r.PerBench > 0 {
        if r.PerBench > maxPositions {
            return nil, "students_per_bench must be between 1 and 3"
        }
        names = append(names, sheet.Positions[:r.PerBench]...)
    }
    if len(names) > maxPositions {
        return nil, "at most 3 seat positions per bench"
    }
    for i, n := range names {
        if n == "" {
            names[i] = sheet.Positions[i]
        }
    }
    return &model.Room{
        OwnerID:       ownerID,
        RoomNumber:    number,
        SeatRows:      uint32(r.Rows),
        BenchesPerRow: uint32(r.Benches),
        PositionNames: names,
    }, ""
}

// CreateRoom handles POST /v1/rooms
func (h *RoomHandler) CreateRoom(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createRoomRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    room, msg := req.toRoom(uid)
    if room == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Rooms.Create(ctx, room); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
    }
    return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/rooms
func (h *RoomHandler) ListRooms(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    rooms, err := h.Rooms.ListByOwner(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
    }
    if rooms == nil {
        rooms = []*model.Room{} // render [] rather than null
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// GetRoom handles GET /v1/rooms/:id
func (h *RoomHandler) GetRoom(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    room, err := h.Rooms.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
    }
    return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Rooms.DeleteByIDAndOwner(ctx, id, uid); err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
