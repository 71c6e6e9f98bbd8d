package dto

import "net/http"

// Transport-level error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeStaleWrite = "STALE_WRITE"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 422: they are business rules the
// request violated, not malformed input.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeStaleWrite: http.StatusConflict,

	// Missing resources
	"NOT_FOUND":           http.StatusNotFound,
	"INVOICE_NOT_FOUND":   http.StatusNotFound,
	"QUOTATION_NOT_FOUND": http.StatusNotFound,
	"PAYMENT_NOT_FOUND":   http.StatusNotFound,
	"CLIENT_NOT_FOUND":    http.StatusNotFound,

	// Malformed input
	"INVALID_AMOUNT":           http.StatusBadRequest,
	"INVALID_CLIENT":           http.StatusBadRequest,
	"INVALID_CLIENT_CODE":      http.StatusBadRequest,
	"INVALID_CLIENT_NAME":      http.StatusBadRequest,
	"INVALID_DOCUMENT_KIND":    http.StatusBadRequest,
	"INVALID_DUE_DATE":         http.StatusBadRequest,
	"INVALID_INVOICE":          http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER":   http.StatusBadRequest,
	"INVALID_ITEM":             http.StatusBadRequest,
	"INVALID_ITEMS":            http.StatusBadRequest,
	"INVALID_METHOD":           http.StatusBadRequest,
	"INVALID_PAYMENT_TERMS":    http.StatusBadRequest,
	"INVALID_QUOTATION_NUMBER": http.StatusBadRequest,
	"INVALID_RECIPIENT":        http.StatusBadRequest,
	"INVALID_REMINDER_TYPE":    http.StatusBadRequest,

	// Conflicts
	"ALREADY_EXISTS":              http.StatusConflict,
	"CLIENT_CODE_TAKEN":           http.StatusConflict,
	"CLIENT_NOT_DELETED":          http.StatusConflict,
	"QUOTATION_ALREADY_CONVERTED": http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for a domain error code.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
