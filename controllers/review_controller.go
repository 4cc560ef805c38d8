package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Performile1/Performile-Version-1-sub000/pkg/resp"
	"github.com/Performile1/Performile-Version-1-sub000/services"
	"github.com/Performile1/Performile-Version-1-sub000/utils"
)

type ReviewController struct {
	Svc *services.ReviewService
}

func NewReviewController(svc *services.ReviewService) *ReviewController {
	return &ReviewController{Svc: svc}
}

// POST /reviews — consumer reviews their own delivered order.
func (rc *ReviewController) Create(c *gin.Context) {
	var req services.CreateReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	rev, err := rc.Svc.Create(c.Request.Context(), utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, rev)
}

type moderateReq struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// PATCH /admin/reviews/:id/status
func (rc *ReviewController) Moderate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		resp.BadRequest(c, "invalid review id")
		return
	}
	var req moderateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	if err := rc.Svc.Moderate(c.Request.Context(), uint(id), req.Status); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Message(c, "review "+req.Status)
}
