package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/item-store/pkg/common/apperr"
	"github.com/huynhanx03/item-store/pkg/common/http/handler"
	"github.com/huynhanx03/item-store/pkg/common/http/response"
	"github.com/huynhanx03/item-store/pkg/item"
)

const serviceName = "item cache"

var errNotFound = errors.New("not found")

// ItemService is the cache surface served over HTTP.
type ItemService interface {
	Save(ctx context.Context, items []item.Item) bool
	Get(ctx context.Context, items []item.Item) []item.Item
	Delete(ctx context.Context, items []item.Item) bool
}

// ItemsRequest is the body of every item endpoint.
type ItemsRequest struct {
	Items []item.Item `json:"items" validate:"dive"`
}

// StateResponse reports the outcome of a write.
type StateResponse struct {
	State bool `json:"state"`
}

// NewRouter builds the gin engine with middleware and item routes.
func NewRouter(service ItemService, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger), AccessLog(logger), CORS())

	r.GET("/health", func(c *gin.Context) {
		response.SuccessResponse(c, response.CodeSuccess, nil)
	})

	h := &itemHandler{service: service}
	items := r.Group("/items")
	items.POST("/get", handler.Wrap(h.get))
	items.POST("/save", handler.Wrap(h.save))
	items.POST("/delete", handler.Wrap(h.delete))

	r.NoRoute(func(c *gin.Context) {
		response.ErrorResponse(c, response.CodeNotFound, errNotFound)
	})

	return r
}

type itemHandler struct {
	service ItemService
}

func (h *itemHandler) get(ctx context.Context, req *ItemsRequest) ([]item.Item, error) {
	return h.service.Get(ctx, req.Items), nil
}

func (h *itemHandler) save(ctx context.Context, req *ItemsRequest) (StateResponse, error) {
	if !h.service.Save(ctx, req.Items) {
		return StateResponse{}, apperr.NewError(serviceName, response.CodeInternalServer, apperr.MsgSaveFailed, http.StatusInternalServerError, nil)
	}
	return StateResponse{State: true}, nil
}

func (h *itemHandler) delete(ctx context.Context, req *ItemsRequest) (StateResponse, error) {
	if !h.service.Delete(ctx, req.Items) {
		return StateResponse{}, apperr.NewError(serviceName, response.CodeInternalServer, apperr.MsgDeleteFailed, http.StatusInternalServerError, nil)
	}
	return StateResponse{State: true}, nil
}
