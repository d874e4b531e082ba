package handler // handler defines http handlers

import (
    "context"  // DB timeouts
    "errors"   // sentinel comparison
    "net/http" // status codes
    "strconv"  // position parsing
    "strings"  // input trimming
    "time"     // timeouts

    "github.com/labstack/echo/v4" // echo request context

    "github.com/iliyamo/exam-seating/internal/model"      // roster model
    "github.com/iliyamo/exam-seating/internal/repository" // roster persistence
    "github.com/iliyamo/exam-seating/internal/sheet"      // roll number workbooks
)

// RosterHandler manages uploaded identifier lists.
type RosterHandler struct {
    Rosters  *repository.RosterRepo // Rosters provides roster persistence
    MaxBytes int64                  // upload limit for multipart bodies
}

// NewRosterHandler constructs a RosterHandler and panics if the repository is nil
func NewRosterHandler(rosters *repository.RosterRepo, maxBytes int64) *RosterHandler {
    if rosters == nil {
        panic("nil repository passed to NewRosterHandler")
    }
    return &RosterHandler{Rosters: rosters, MaxBytes: maxBytes}
}

// createRosterRequest is the JSON form of POST /v1/rosters.
type createRosterRequest struct {
    Name        string   `json:"name"`
    Position    string   `json:"position"` // 1-based number or Left/Middle/Right
    Identifiers []string `json:"identifiers"`
}

// parsePosition accepts "1".."3" or a position label, case-insensitive.
func parsePosition(s string) (int, bool) {
    s = strings.TrimSpace(s)
    if n, err := strconv.Atoi(s); err == nil {
        return n, n >= 1 && n <= maxPositions
    }
    for i, p := range sheet.Positions {
        if strings.EqualFold(s, p) {
            return i + 1, true
        }
    }
    return 0, false
}

// CreateRoster handles POST /v1/rosters.  A multipart body carries an xlsx
// in "file" with a "Roll Number" column plus "position" and optional "name"
// fields; a JSON body carries the identifiers directly.
func (h *RosterHandler) CreateRoster(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req createRosterRequest
    if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
        if h.MaxBytes > 0 {
            c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.MaxBytes)
        }
        fh, err := c.FormFile("file")
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
        }
        f, err := fh.Open()
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open file"})
        }
        defer f.Close()
        ids, err := sheet.ReadRoster(f)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        req = createRosterRequest{Name: c.FormValue("name"), Position: c.FormValue("position"), Identifiers: ids}
        if strings.TrimSpace(req.Name) == "" {
            req.Name = fh.Filename
        }
    } else if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    pos, ok := parsePosition(req.Position)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "position must be 1-3 or Left/Middle/Right"})
    }
    ids := make([]string, 0, len(req.Identifiers))
    for _, id := range req.Identifiers {
        if id = strings.TrimSpace(id); id != "" {
            ids = append(ids, id)
        }
    }
    if len(ids) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifiers required"})
    }
    name := strings.TrimSpace(req.Name)
    if name == "" {
        name = sheet.Positions[pos-1]
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    ro := &model.Roster{OwnerID: uid, Name: name, Position: pos, Identifiers: ids}
    if err := h.Rosters.Create(ctx, ro); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create roster failed"})
    }
    return c.JSON(http.StatusCreated, model.RosterSummary{
        ID: ro.ID, Name: ro.Name, Position: ro.Position, Count: len(ro.Identifiers), CreatedAt: ro.CreatedAt,
    })
}

// ListRosters handles GET /v1/rosters
func (h *RosterHandler) ListRosters(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    items, err := h.Rosters.ListByOwner(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rosters failed"})
    }
    if items == nil {
        items = []model.RosterSummary{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeleteRoster handles DELETE /v1/rosters/:id
func (h *RosterHandler) DeleteRoster(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid roster id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Rosters.DeleteByIDAndOwner(ctx, id, uid); err != nil {
        if errors.Is(err, repository.ErrRosterNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "roster not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete roster failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
