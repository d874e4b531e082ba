package handler // handler defines http handlers

import (
    "context"        // generation timeout
    "fmt"            // error messages naming form fields
    "mime/multipart" // uploaded file headers
    "net/http"       // status codes
    "strings"        // field names
    "time"           // timeout

    "github.com/labstack/echo/v4" // echo request context

    "github.com/iliyamo/exam-seating/internal/chart" // generation service
    "github.com/iliyamo/exam-seating/internal/sheet" // workbook parsing and rendering
)

// Multipart field names of the public upload form.
const (
    fieldRoomDetails = "room_details_file"
    rollSuffix       = "_roll_numbers" // left_roll_numbers, middle_roll_numbers, ...
    extraSuffix      = "_extra"        // left_extra, ... may repeat; consumed in order
)

// UploadHandler generates a chart from uploaded workbooks without storing
// anything.  Follow-up roll number files per position are supplied up front
// and used, in order, when that position runs out.
type UploadHandler struct {
    Settings ChartSettings
    MaxBytes int64 // limit for the whole multipart body
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(settings ChartSettings, maxBytes int64) *UploadHandler {
    return &UploadHandler{Settings: settings, MaxBytes: maxBytes}
}

// Upload handles POST /v1/charts/upload.  The response is the xlsx chart,
// or the chart as JSON with ?format=json.
func (h *UploadHandler) Upload(c echo.Context) error {
    if h.MaxBytes > 0 {
        c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.MaxBytes)
    }
    form, err := c.MultipartForm()
    if err != nil {
        if strings.Contains(err.Error(), "request body too large") {
            return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "upload too large"})
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
    }

    detailsFile, err := one(form, fieldRoomDetails)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    details, err := readDetails(detailsFile)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("%s: %v", fieldRoomDetails, err)})
    }

    rosters := make([][]string, details.PerBench)
    extras := make(map[int][][]string)
    for i := 0; i < details.PerBench; i++ {
        prefix := strings.ToLower(sheet.Positions[i])
        fh, err := one(form, prefix+rollSuffix)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        if rosters[i], err = readRoster(fh); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("%s: %v", prefix+rollSuffix, err)})
        }
        for _, fh := range form.File[prefix+extraSuffix] {
            ids, err := readRoster(fh)
            if err != nil {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("%s %q: %v", prefix+extraSuffix, fh.Filename, err)})
            }
            extras[i+1] = append(extras[i+1], ids)
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()
    gen := h.Settings.newGenerator(chart.NewStaticReplenisher(extras))
    ch, err := gen.Generate(ctx, chart.Request{Rooms: details.Specs(), Rosters: rosters})
    if err != nil {
        return c.JSON(generationStatus(err), echo.Map{"error": err.Error()})
    }

    if c.QueryParam("format") == "json" {
        return c.JSON(http.StatusOK, ch)
    }
    body, err := sheet.Bytes(roomSheets(ch))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render workbook failed"})
    }
    return sendWorkbook(c, "seating_chart.xlsx", body)
}

// one returns the single file posted under name.
func one(form *multipart.Form, name string) (*multipart.FileHeader, error) {
    files := form.File[name]
    if len(files) == 0 {
        return nil, fmt.Errorf("%s required", name)
    }
    return files[0], nil
}

func readDetails(fh *multipart.FileHeader) (sheet.RoomDetails, error) {
    f, err := fh.Open()
    if err != nil {
        return sheet.RoomDetails{}, err
    }
    defer f.Close()
    return sheet.ReadRoomDetails(f)
}

func readRoster(fh *multipart.FileHeader) ([]string, error) {
    f, err := fh.Open()
    if err != nil {
        return nil, err
    }
    defer f.Close()
    return sheet.ReadRoster(f)
}
