package services

import (
	"github.com/Performile1/Performile-Version-1-sub000/configs"
)

// Weights are the trust score sub-metric weights. They should sum to 1; the
// score is clamped to [0,100] so a mistuned set cannot escape the range.
type Weights struct {
	Completion float64 `json:"completion"`
	OnTime     float64 `json:"onTime"`
	Rating     float64 `json:"rating"`
	Response   float64 `json:"response"`
}

func DefaultWeights() Weights {
	return Weights{Completion: 0.35, OnTime: 0.30, Rating: 0.20, Response: 0.15}
}

// ScoreResult is the calculator output: a 0-100 composite plus its component
// breakdown.
type ScoreResult struct {
	TrustScore    float64 `json:"trustScore"`
	LowConfidence bool    `json:"lowConfidence"`

	CompletionRate    float64 `json:"completionRate"`
	OnTimeRate        float64 `json:"onTimeRate"`
	RatingComponent   float64 `json:"ratingComponent"`
	ResponseComponent float64 `json:"responseComponent"`
}

// TrustScoreService combines aggregated metrics into the composite score.
// Pure computation, no I/O.
type TrustScoreService struct {
	Weights    Weights
	MinReviews int

	// Response latency at or below FullScoreMinutes scores 100; the component
	// decays linearly to 0 at ZeroScoreMinutes.
	FullScoreMinutes float64
	ZeroScoreMinutes float64
}

func NewTrustScoreService(cfg *configs.Config) *TrustScoreService {
	return &TrustScoreService{
		Weights: Weights{
			Completion: cfg.WeightCompletion,
			OnTime:     cfg.WeightOnTime,
			Rating:     cfg.WeightRating,
			Response:   cfg.WeightResponse,
		},
		MinReviews:       cfg.MinReviews,
		FullScoreMinutes: 30,
		ZeroScoreMinutes: 24 * 60,
	}
}

// Compute maps metrics to a trust score:
//
//	0.35*completion_rate + 0.30*on_time_rate + 0.20*(avg_rating/5*100) + 0.15*response
//
// Zero orders scores 0 with low_confidence; fewer reviews than the threshold
// still scores but is flagged low_confidence. Missing response data scores
// the response component 100 (absence of a negative signal is not penalized).
func (s *TrustScoreService) Compute(m CourierMetrics) ScoreResult {
	res := ScoreResult{
		CompletionRate:    m.CompletionRate(),
		OnTimeRate:        m.OnTimeRate(),
		RatingComponent:   clamp(m.AverageRating/5*100, 0, 100),
		ResponseComponent: s.responseComponent(m.AvgResponseMinutes),
	}

	if m.TotalOrders == 0 {
		res.LowConfidence = true
		return res
	}
	res.LowConfidence = m.TotalReviews < int64(s.MinReviews)

	score := s.Weights.Completion*res.CompletionRate +
		s.Weights.OnTime*res.OnTimeRate +
		s.Weights.Rating*res.RatingComponent +
		s.Weights.Response*res.ResponseComponent
	res.TrustScore = clamp(score, 0, 100)
	return res
}

func (s *TrustScoreService) responseComponent(avgMinutes *float64) float64 {
	if avgMinutes == nil {
		return 100
	}
	m := *avgMinutes
	if m <= s.FullScoreMinutes {
		return 100
	}
	if m >= s.ZeroScoreMinutes {
		return 0
	}
	return 100 * (s.ZeroScoreMinutes - m) / (s.ZeroScoreMinutes - s.FullScoreMinutes)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
