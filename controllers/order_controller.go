package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/resp"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
	"github.com/Performile1/Performile-Version-1-sub000/services"
	"github.com/Performile1/Performile-Version-1-sub000/utils"
)

type OrderController struct {
	Svc     *services.OrderService
	SubRepo *repository.SubscriptionRepository
}

func NewOrderController(svc *services.OrderService, subRepo *repository.SubscriptionRepository) *OrderController {
	return &OrderController{Svc: svc, SubRepo: subRepo}
}

// POST /orders — merchant opens a pending delivery.
func (oc *OrderController) Create(c *gin.Context) {
	var req services.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	m, err := oc.SubRepo.MerchantByUserID(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.Forbidden(c, "not a merchant account")
			return
		}
		resp.Error(c, err)
		return
	}

	order, err := oc.Svc.Create(c.Request.Context(), m.ID, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, order)
}

// GET /orders/:id
func (oc *OrderController) Detail(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}

	order, err := oc.Svc.Get(c.Request.Context(), uint(id))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /courier/orders/:id/status — the courier advances the delivery
// lifecycle on its own order.
func (oc *OrderController) CourierUpdateStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	uid := utils.CurrentUserID(c)
	ctx := c.Request.Context()

	var err error
	switch req.Status {
	case entity.StatusConfirmed:
		err = oc.Svc.Confirm(ctx, uid, uint(id))
	case entity.StatusPickedUp:
		err = oc.Svc.PickUp(ctx, uid, uint(id))
	case entity.StatusInTransit:
		err = oc.Svc.Transit(ctx, uid, uint(id))
	case entity.StatusDelivered:
		err = oc.Svc.Deliver(ctx, uid, uint(id))
	case entity.StatusFailed:
		err = oc.Svc.Fail(ctx, uid, uint(id))
	case entity.StatusCancelled:
		err = oc.Svc.Cancel(ctx, uid, uint(id))
	default:
		resp.BadRequest(c, "invalid status")
		return
	}
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Message(c, "order updated")
}

// PATCH /admin/orders/:id/status — corrective action, may leave terminal
// states.
func (oc *OrderController) AdminSetStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		resp.BadRequest(c, "invalid order id")
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	if err := oc.Svc.AdminSetStatus(c.Request.Context(), uint(id), req.Status); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Message(c, "order status corrected")
}
