package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getUserID
    "net/http" // status codes for error translation
    "strconv" // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/exam-seating/internal/chart"      // generated charts
    "github.com/iliyamo/exam-seating/internal/model"      // stored rooms
    "github.com/iliyamo/exam-seating/internal/seating"    // engine errors and specs
    "github.com/iliyamo/exam-seating/internal/sheet"      // workbook rendering
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// getUserID extracts the user_id set by JWTAuth and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) { // JWTAuth stores uint64; other forms tolerated
    case uint64:
        if t != 0 {
            return t, nil
        }
    case float64:
        if t > 0 {
            return uint64(t), nil
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id != 0
}

// roomSpec converts a stored room to the engine's RoomSpec.  The room
// number is the title printed on the chart.
func roomSpec(r *model.Room) seating.RoomSpec {
    return seating.RoomSpec{
        RoomID:        r.RoomNumber,
        Rows:          int(r.SeatRows),
        Benches:       int(r.BenchesPerRow),
        PositionNames: append([]string(nil), r.PositionNames...),
    }
}

// roomSheets pairs each room of a chart with its grid for the workbook writer.
func roomSheets(ch *chart.Chart) []sheet.RoomSheet {
    out := make([]sheet.RoomSheet, len(ch.Rooms))
    for i, r := range ch.Rooms {
        out[i] = sheet.RoomSheet{Spec: r.Spec, Cells: r.Cells}
    }
    return out
}

// sendWorkbook writes an xlsx attachment.
func sendWorkbook(c echo.Context, filename string, body []byte) error {
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
    return c.Blob(http.StatusOK, xlsxContentType, body)
}

// generationStatus maps chart generation errors to HTTP statuses: request
// shape problems are the caller's fault, everything else is ours.
func generationStatus(err error) int {
    switch {
    case errors.Is(err, chart.ErrNoRooms),
        errors.Is(err, chart.ErrPositionMismatch),
        errors.Is(err, seating.ErrQueueCountMismatch),
        errors.Is(err, seating.ErrNegativeDimension),
        errors.Is(err, seating.ErrGroupTooNarrow):
        return http.StatusBadRequest
    default:
        return http.StatusInternalServerError
    }
}
