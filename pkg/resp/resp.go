package resp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
)

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func List(c *gin.Context, data any, p Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false, "error": apperr.CodeValidation, "message": msg,
	})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false, "error": apperr.CodeUnauthenticated, "message": msg,
	})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false, "error": apperr.CodeForbidden, "message": msg,
	})
}

// Error renders any service error. Typed apperr values keep their status and
// code; everything else becomes an opaque 500 so internals never leak.
func Error(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		body := gin.H{
			"success": false,
			"error":   ae.Code,
			"message": ae.Message,
		}
		if ae.Retryable {
			body["retryable"] = true
		}
		if ae.UpgradeRequired {
			body["upgrade_required"] = true
			body["tier"] = ae.Tier
			body["upgradeUrl"] = ae.UpgradeURL
		}
		c.JSON(ae.Status, body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false, "error": "INTERNAL_ERROR", "message": "internal server error",
	})
}
