package request

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/item-store/pkg/common/apperr"
	"github.com/huynhanx03/item-store/pkg/common/http/response"
	"github.com/huynhanx03/item-store/pkg/common/http/validation"
)

// ParseRequest binds the JSON body into T and validates it.
func ParseRequest[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperr.MapError("request", err, response.CodeParamInvalid, apperr.MsgParseFailed, http.StatusBadRequest)
	}

	if ok, msg := validation.IsRequestValid(req); !ok {
		return nil, apperr.MapError("request", errors.New(msg), response.CodeValidationFailed, apperr.MsgValidateFailed, http.StatusBadRequest)
	}

	return &req, nil
}
