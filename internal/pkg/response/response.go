package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/pkg/apperr"
)

const internalMessage = "Internal server error"

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPage   int   `json:"totalPage"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"hasNextPage"`
}

func success(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true, "result": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func failure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"result":  false,
		"code":    status,
		"message": message,
	})
}

// OK sends a 200 envelope with payload keys merged at the top level.
func OK(c *gin.Context, message string, payload gin.H) {
	success(c, http.StatusOK, message, payload)
}

// Created sends a 201 envelope.
func Created(c *gin.Context, message string, payload gin.H) {
	success(c, http.StatusCreated, message, payload)
}

// Paged sends a 200 envelope carrying pagination metadata.
func Paged(c *gin.Context, message string, payload gin.H, pagination Pagination) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["pagination"] = pagination
	success(c, http.StatusOK, message, payload)
}

// Error translates a service error into the failure envelope. Unclassified
// errors are attached to the context for the request logger and hidden.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		InternalError(c, err)
		return
	}
	failure(c, kind.HTTPStatus(), apperr.MessageOf(err, internalMessage))
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	failure(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	failure(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	failure(c, http.StatusForbidden, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	failure(c, http.StatusNotFound, message)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	failure(c, http.StatusConflict, message)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	failure(c, http.StatusTooManyRequests, "Too many requests, slow down")
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	failure(c, http.StatusMethodNotAllowed, "Method not allowed")
}

// InternalError sends a 500 error response without leaking err to the client.
func InternalError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	failure(c, http.StatusInternalServerError, internalMessage)
}
