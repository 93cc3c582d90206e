package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every error the read API returns has the same envelope:
//
//	{ "error": { "code": "not_found", "message": "Content not found" } }
//
// Handlers pick a code and a human-readable message; raw error strings from
// stores or providers never reach the client.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, gin.H{"error": apiError{Code: code, Message: msg}})
}

func BadRequest(ctx *gin.Context, msg string) {
	writeError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	writeError(ctx, http.StatusNotFound, "not_found", msg)
}

func Internal(ctx *gin.Context, msg string) {
	writeError(ctx, http.StatusInternalServerError, "internal_error", msg)
}

func Conflict(ctx *gin.Context, msg string) {
	writeError(ctx, http.StatusConflict, "conflict", msg)
}

// ServiceUnavailable covers upstream AI provider outages surfaced by the
// semantic search endpoint.
func ServiceUnavailable(ctx *gin.Context, msg string) {
	writeError(ctx, http.StatusServiceUnavailable, "unavailable", msg)
}
