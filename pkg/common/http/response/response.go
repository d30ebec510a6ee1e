package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/item-store/pkg/common/apperr"
)

const (
	CodeSuccess          = 200
	CodeParamInvalid     = 422
	CodeValidationFailed = 422
	CodeNotFound         = 404
	CodeInternalServer   = 500

	msgSuccess = "success"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}

// SuccessResponse writes data with HTTP 200.
func SuccessResponse(c *gin.Context, code int, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: msgSuccess,
		Data:    data,
		Success: true,
	})
}

// ErrorResponse writes err with an empty data list. An apperr.AppError in the
// chain decides the code and status; otherwise code is used.
func ErrorResponse(c *gin.Context, code int, err error) {
	status := StatusFor(code)
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}
	if appErr, ok := apperr.As(err); ok {
		code = appErr.Code
		status = appErr.HTTPStatus
		if status == 0 {
			status = StatusFor(code)
		}
	}

	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: message,
		Data:    []any{},
		Success: false,
	})
}

// StatusFor maps a response code to its HTTP status. Validation failures are
// reported as 400 with code 422.
func StatusFor(code int) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeParamInvalid:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
