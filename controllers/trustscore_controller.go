package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/resp"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
	"github.com/Performile1/Performile-Version-1-sub000/services"
	"github.com/Performile1/Performile-Version-1-sub000/utils"
)

type TrustScoreController struct {
	Cache       *services.ScoreCache
	Gate        *services.SubscriptionGate
	ScoreRepo   *repository.TrustScoreRepository
	CourierRepo *repository.CourierRepository
	SubRepo     *repository.SubscriptionRepository
}

func NewTrustScoreController(
	cache *services.ScoreCache,
	gate *services.SubscriptionGate,
	scoreRepo *repository.TrustScoreRepository,
	courierRepo *repository.CourierRepository,
	subRepo *repository.SubscriptionRepository,
) *TrustScoreController {
	return &TrustScoreController{
		Cache: cache, Gate: gate, ScoreRepo: scoreRepo,
		CourierRepo: courierRepo, SubRepo: subRepo,
	}
}

// callerTier resolves the subscription tier for gating. Anonymous callers
// get the free tier; admins bypass.
func (tc *TrustScoreController) callerTier(c *gin.Context) (tier string, isAdmin bool) {
	role := utils.CurrentRole(c)
	if role == entity.RoleAdmin {
		return "", true
	}
	uid := utils.CurrentUserID(c)
	if uid == 0 {
		return entity.TierFree, false
	}
	switch role {
	case entity.RoleMerchant:
		if m, err := tc.SubRepo.MerchantByUserID(c.Request.Context(), uid); err == nil {
			return m.Tier, false
		}
	case entity.RoleCourier:
		if courier, err := tc.CourierRepo.GetByUserID(c.Request.Context(), uid); err == nil {
			return courier.Tier, false
		}
	}
	return entity.TierFree, false
}

// GET /trustscores?country=&postal=&min_reviews=&page=&limit=
func (tc *TrustScoreController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	minReviews, _ := strconv.Atoi(c.DefaultQuery("min_reviews", "0"))

	tier, isAdmin := tc.callerTier(c)
	lim, err := tc.Gate.LimitsFor(c.Request.Context(), tier, isAdmin)
	if err != nil {
		resp.Error(c, err)
		return
	}

	// The tier caps the global ranked window inside the query; paging past
	// it returns empty pages, never couriers beyond the cap.
	rows, total, err := tc.ScoreRepo.List(c.Request.Context(), repository.ListFilter{
		Country:    c.Query("country"),
		Postal:     c.Query("postal"),
		MinReviews: minReviews,
		Page:       page,
		Limit:      limit,
		Cap:        lim.MaxCouriers,
	})
	if err != nil {
		resp.Error(c, err)
		return
	}

	hidden := 0
	if lim.MaxCouriers > 0 && total > int64(lim.MaxCouriers) {
		hidden = int(total) - lim.MaxCouriers
	}

	c.JSON(200, gin.H{
		"success":      true,
		"data":         rows,
		"pagination":   resp.Pagination{Page: page, Limit: limit, Total: total},
		"subscription": tc.Gate.View(lim, hidden),
	})
}

// GET /trustscores/:id — served from the score cache.
func (tc *TrustScoreController) GetOne(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		resp.BadRequest(c, "invalid courier id")
		return
	}

	ts, cached, err := tc.Cache.Get(c.Request.Context(), uint(id), false)
	if err != nil {
		resp.Error(c, err)
		return
	}
	c.JSON(200, gin.H{"success": true, "data": ts, "cached": cached})
}

// PUT /trustscores/:id/update — admin or the owning courier forces a
// recompute.
func (tc *TrustScoreController) ForceRefresh(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		resp.BadRequest(c, "invalid courier id")
		return
	}

	role := utils.CurrentRole(c)
	if role != entity.RoleAdmin {
		courier, err := tc.CourierRepo.GetByUserID(c.Request.Context(), utils.CurrentUserID(c))
		if err != nil || courier.ID != uint(id) {
			resp.Forbidden(c, "not your courier profile")
			return
		}
	}

	tc.Cache.Invalidate(uint(id))
	if _, err := tc.Cache.Recompute(c.Request.Context(), uint(id)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.Message(c, "trust score recomputed")
}

// POST /admin/trustscores/refresh — recompute everything now.
func (tc *TrustScoreController) RefreshAll(c *gin.Context) {
	n, err := tc.Cache.RefreshAll(c.Request.Context())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"refreshed": n})
}

type compareReq struct {
	CourierIDs []uint `json:"courierIds" binding:"required,min=2,max=5"`
}

type comparisonMetrics struct {
	BestTrustScore     uint    `json:"bestTrustScore"`
	BestOnTimeRate     uint    `json:"bestOnTimeRate"`
	BestCompletionRate uint    `json:"bestCompletionRate"`
	AvgTrustScore      float64 `json:"avgTrustScore"`
}

// POST /trustscores/compare — side-by-side comparison of 2-5 couriers,
// served from the dashboard-TTL cache.
func (tc *TrustScoreController) Compare(c *gin.Context) {
	var req compareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, "courierIds must contain 2 to 5 courier ids")
		return
	}

	scores := make([]*entity.TrustScore, 0, len(req.CourierIDs))
	for _, id := range req.CourierIDs {
		ts, _, err := tc.Cache.Get(c.Request.Context(), id, true)
		if err != nil {
			resp.Error(c, err)
			return
		}
		scores = append(scores, ts)
	}

	cm := comparisonMetrics{}
	var sum, bestScore, bestOnTime, bestCompletion float64
	for i, ts := range scores {
		sum += ts.Score
		if i == 0 || ts.Score > bestScore {
			bestScore, cm.BestTrustScore = ts.Score, ts.CourierID
		}
		if i == 0 || ts.OnTimeRate > bestOnTime {
			bestOnTime, cm.BestOnTimeRate = ts.OnTimeRate, ts.CourierID
		}
		if i == 0 || ts.CompletionRate > bestCompletion {
			bestCompletion, cm.BestCompletionRate = ts.CompletionRate, ts.CourierID
		}
	}
	cm.AvgTrustScore = sum / float64(len(scores))

	resp.OK(c, gin.H{"couriers": scores, "comparison_metrics": cm})
}
