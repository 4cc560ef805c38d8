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

type AnalyticsController struct {
	Analytics   *services.AnalyticsService
	CourierRepo *repository.CourierRepository
	SubRepo     *repository.SubscriptionRepository
}

func NewAnalyticsController(
	analytics *services.AnalyticsService,
	courierRepo *repository.CourierRepository,
	subRepo *repository.SubscriptionRepository,
) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, CourierRepo: courierRepo, SubRepo: subRepo}
}

// GET /courier/checkout-analytics?days=
func (ac *AnalyticsController) ForCourier(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	role := utils.CurrentRole(c)
	isAdmin := role == entity.RoleAdmin

	var courierID uint
	var tier string
	if isAdmin {
		// Admin inspects any courier via ?courierId=.
		id, _ := strconv.ParseUint(c.Query("courierId"), 10, 64)
		if id == 0 {
			resp.BadRequest(c, "courierId is required for admin queries")
			return
		}
		courierID = uint(id)
	} else {
		courier, err := ac.CourierRepo.GetByUserID(c.Request.Context(), utils.CurrentUserID(c))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Forbidden(c, "not a courier account")
				return
			}
			resp.Error(c, err)
			return
		}
		courierID = courier.ID
		tier = courier.Tier
	}

	out, err := ac.Analytics.ForCourier(c.Request.Context(), courierID, tier, isAdmin, days)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// GET /merchant/checkout-analytics?days=
func (ac *AnalyticsController) ForMerchant(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	role := utils.CurrentRole(c)
	isAdmin := role == entity.RoleAdmin

	var merchantID uint
	var tier string
	if isAdmin {
		id, _ := strconv.ParseUint(c.Query("merchantId"), 10, 64)
		if id == 0 {
			resp.BadRequest(c, "merchantId is required for admin queries")
			return
		}
		merchantID = uint(id)
	} else {
		m, err := ac.SubRepo.MerchantByUserID(c.Request.Context(), utils.CurrentUserID(c))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Forbidden(c, "not a merchant account")
				return
			}
			resp.Error(c, err)
			return
		}
		merchantID = m.ID
		tier = m.Tier
	}

	out, err := ac.Analytics.ForMerchant(c.Request.Context(), merchantID, tier, isAdmin, days)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}
