package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/resp"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
	"github.com/Performile1/Performile-Version-1-sub000/services"
	"github.com/Performile1/Performile-Version-1-sub000/utils"
)

type CheckoutController struct {
	Ranking  *services.RankingService
	Gate     *services.SubscriptionGate
	SubRepo  *repository.SubscriptionRepository
	Checkout *repository.CheckoutRepository
}

func NewCheckoutController(
	ranking *services.RankingService,
	gate *services.SubscriptionGate,
	subRepo *repository.SubscriptionRepository,
	checkoutRepo *repository.CheckoutRepository,
) *CheckoutController {
	return &CheckoutController{Ranking: ranking, Gate: gate, SubRepo: subRepo, Checkout: checkoutRepo}
}

// POST /checkout/rank — merchant storefront asks for ranked couriers. The
// audit rows are durable before this responds.
func (cc *CheckoutController) Rank(c *gin.Context) {
	var req services.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	// The merchant is the authenticated caller, not whatever the payload
	// claims.
	role := utils.CurrentRole(c)
	if role != entity.RoleAdmin {
		m, err := cc.SubRepo.MerchantByUserID(c.Request.Context(), utils.CurrentUserID(c))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Forbidden(c, "not a merchant account")
				return
			}
			resp.Error(c, err)
			return
		}
		req.MerchantID = m.ID

		// Opening a new destination market counts against the tier.
		lim, err := cc.Gate.LimitsFor(c.Request.Context(), m.Tier, false)
		if err != nil {
			resp.Error(c, err)
			return
		}
		markets, err := cc.Checkout.MerchantMarkets(c.Request.Context(), m.ID)
		if err != nil {
			resp.Error(c, apperr.DataUnavailable(err))
			return
		}
		if err := cc.Gate.CheckMarketBreadth(lim, markets, req.DestCountry); err != nil {
			resp.Error(c, err)
			return
		}
	}

	result, err := cc.Ranking.Rank(c.Request.Context(), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, result)
}

type trackReq struct {
	SessionID        string  `json:"sessionId"`
	CourierID        uint    `json:"courierId" binding:"required"`
	MerchantID       uint    `json:"merchantId" binding:"required"`
	PositionShown    int     `json:"positionShown" binding:"required,min=1"`
	TrustScoreAtTime float64 `json:"trustScoreAtTime"`
	PriceAtTime      int64   `json:"priceAtTime"`
	EtaMinutes       int     `json:"etaMinutes"`
	OrderValueCents  int64   `json:"orderValueCents"`
	WeightKg         float64 `json:"weightKg"`
	DestCountry      string  `json:"destCountry"`
	DestPostal       string  `json:"destPostal"`
}

// POST /checkout-analytics/track — public append-only endpoint for
// storefronts that render their own courier list.
func (cc *CheckoutController) Track(c *gin.Context) {
	var req trackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	row := &entity.CheckoutPosition{
		SessionID:        req.SessionID,
		CourierID:        req.CourierID,
		MerchantID:       req.MerchantID,
		PositionShown:    req.PositionShown,
		TrustScoreAtTime: req.TrustScoreAtTime,
		PriceAtTime:      req.PriceAtTime,
		EtaMinutes:       req.EtaMinutes,
		OrderValueCents:  req.OrderValueCents,
		WeightKg:         req.WeightKg,
		DestCountry:      req.DestCountry,
		DestPostal:       req.DestPostal,
	}
	id, err := cc.Ranking.Track(c.Request.Context(), row)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"positionId": id, "sessionId": row.SessionID})
}

type selectReq struct {
	SessionID string `json:"sessionId" binding:"required"`
	CourierID uint   `json:"courierId" binding:"required"`
}

// POST /checkout-analytics/select — the consumer completed checkout with one
// courier; flips was_selected exactly once.
func (cc *CheckoutController) Select(c *gin.Context) {
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	if err := cc.Ranking.MarkSelected(c.Request.Context(), req.SessionID, req.CourierID); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Message(c, "courier selection recorded")
}
