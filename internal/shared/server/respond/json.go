package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with the given status. Recommendation and upload
// handlers go through these helpers so every response shares one shape.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 response; the recommendation endpoints use it even
// for empty result lists.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}
