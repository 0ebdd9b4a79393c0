package timetable

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursefit-backend/internal/extraction"
	"coursefit-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches timetable routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/timetable/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "image is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	result, err := h.Svc.UploadTimetable(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", "only image timetables are supported", nil)
		case errors.Is(err, extraction.ErrNoContent):
			respond.Error(c, http.StatusBadRequest, "validation_error", "no lectures found in the image", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process timetable", nil)
		}
		return
	}

	respond.OK(c, toResponse(result))
}

type lectureResponse struct {
	Name      string   `json:"name"`
	Room      string   `json:"room"`
	DayOfWeek []string `json:"dayOfWeek"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
}

type uploadResponse struct {
	Lectures []lectureResponse `json:"lectures"`
}

func toResponse(result UploadResult) uploadResponse {
	out := uploadResponse{Lectures: make([]lectureResponse, 0, len(result.Lectures))}
	for _, lecture := range result.Lectures {
		out.Lectures = append(out.Lectures, lectureResponse{
			Name:      lecture.Name,
			Room:      lecture.Room,
			DayOfWeek: lecture.Days,
			StartTime: lecture.StartTime,
			EndTime:   lecture.EndTime,
		})
	}
	return out
}
