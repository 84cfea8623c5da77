package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes returned in the envelope.
const (
	CodeMissingFields = "MISSING_FIELDS"
	CodeInvalidDomain = "INVALID_DOMAIN"
	CodeNotAuthorized = "NOT_AUTHORIZED"
	CodeNoSubmissions = "NO_SUBMISSIONS"
	CodeMemberExists  = "MEMBER_EXISTS"
	CodeInvalidPeriod = "INVALID_PERIOD"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL"
)

// ErrorBody carries a machine-readable code plus a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error code and message.
func BadRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: &ErrorBody{Code: code, Message: msg}})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: &ErrorBody{Code: CodeNotAuthorized, Message: msg}})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: &ErrorBody{Code: CodeNotAuthorized, Message: msg}})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: &ErrorBody{Code: CodeNotFound, Message: msg}})
}

// Conflict sends 409 with the given code.
func Conflict(c *gin.Context, code, msg string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: &ErrorBody{Code: code, Message: msg}})
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: &ErrorBody{Code: CodeInternal, Message: msg}})
}
