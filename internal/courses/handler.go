package courses

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches course routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommend/course/upload", h.upload)
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

	result, err := h.Svc.UploadTranscript(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", "only image or PDF transcripts are supported", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process transcript", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toUploadResponse(result))
}

type courseResponse struct {
	ID         int64  `json:"id"`
	CourseCode string `json:"courseCode"`
	Title      string `json:"title"`
	Grade      string `json:"grade"`
	Category   string `json:"category"`
}

type uploadResponse struct {
	Saved   []courseResponse `json:"saved"`
	Skipped int              `json:"skipped"`
}

func toUploadResponse(result UploadResult) uploadResponse {
	out := uploadResponse{
		Saved:   make([]courseResponse, 0, len(result.Saved)),
		Skipped: result.Skipped,
	}
	for _, course := range result.Saved {
		out.Saved = append(out.Saved, courseResponse{
			ID:         course.ID,
			CourseCode: course.CourseCode,
			Title:      course.Title,
			Grade:      string(course.Grade),
			Category:   course.Category.Label(),
		})
	}
	return out
}
