package recommend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"coursefit-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches recommendation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommend", h.recommend)
	rg.GET("/recommend/similar", h.similar)
}

func (h *Handler) recommend(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.Course = strings.TrimSpace(req.Course)
	req.Grade = strings.TrimSpace(req.Grade)
	req.TargetType = strings.TrimSpace(req.TargetType)

	// course and grade are optional; history seeding covers an empty topic.
	if req.TargetType == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "targetType is required", nil)
		return
	}
	c.Set("targetType", req.TargetType)

	resp := h.Svc.Recommend(c.Request.Context(), req)
	if len(resp.Recommendations) > 0 && resp.Recommendations[0].Metadata["source"] == "fallback" {
		c.Set("recommendSource", "fallback")
	} else {
		c.Set("recommendSource", "model")
	}
	respond.OK(c, resp)
}

func (h *Handler) similar(c *gin.Context) {
	// Explicit courseId params override the default history-derived seeds.
	courseIDs := c.QueryArray("courseId")
	cleaned := courseIDs[:0]
	for _, id := range courseIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	recs := h.Svc.Similar(c.Request.Context(), SimilarRequest{
		CourseIDs:  cleaned,
		TargetType: c.Query("targetType"),
		Limit:      limit,
	})
	respond.OK(c, Response{Recommendations: recs})
}
