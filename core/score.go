package core

import (
	"math"

	"github.com/prismscan/prism/schema"
)

// severityPenalties is the per-issue deduction applied to category
// scores.
var severityPenalties = map[schema.Severity]float64{
	schema.SeverityCritical: 4.0,
	schema.SeverityHigh:     2.5,
	schema.SeverityMedium:   1.0,
	schema.SeverityLow:      0.3,
}

// Scoring constants.
const (
	maxScore          = 10.0
	complexityCeiling = 40.0 // complexity metric value that maps to a zero score
	densityWeight     = 0.5  // weight of issue density in the quality score
	duplicationWeight = 0.5  // weight of the duplication ratio in the quality score
	commentBonus      = 0.2  // reward for a healthy comment ratio
)

// Scores bundles every normalized score derived from one analysis.
// Quality lives on a 0-1 scale; the rest on 0-10.
type Scores struct {
	Security    float64
	Complexity  float64
	Performance float64
	Quality     float64
	Global      float64
}

// ComputeScores derives all scores from merged issues and metrics.
// It is pure and deterministic: identical inputs always produce
// identical outputs, adding an issue never raises its category score,
// and empty inputs produce maximum scores.
func ComputeScores(issues []schema.Issue, metrics map[string]float64, mode schema.ScoreMode) Scores {
	scores := Scores{
		Security:    categoryScore(issues, schema.CategorySecurity),
		Complexity:  complexityScore(metrics),
		Performance: categoryScore(issues, schema.CategoryPerformance),
		Quality:     qualityScore(len(issues), metrics),
	}
	scores.Global = globalScore(scores, mode)
	return scores
}

// categoryScore starts at the maximum and subtracts one severity
// penalty per issue in the given category, floored at zero.
func categoryScore(issues []schema.Issue, cat schema.Category) float64 {
	score := maxScore
	for _, issue := range issues {
		if issue.Category != cat {
			continue
		}
		score -= severityPenalties[issue.Severity]
	}
	return clamp(score, 0, maxScore)
}

// complexityScore maps the raw complexity metric onto 0-10, where
// complexityCeiling or above scores zero. A missing metric reads as
// zero complexity and scores the maximum.
func complexityScore(metrics map[string]float64) float64 {
	return maxScore * (1 - clamp01(metrics[schema.MetricComplexity]/complexityCeiling))
}

// qualityScore combines issue density, duplication and comment ratios
// into a 0-1 maintainability figure. Density saturates at one issue
// per ten lines; the comment bonus saturates at a 25% comment ratio.
func qualityScore(issueCount int, metrics map[string]float64) float64 {
	loc := math.Max(1, metrics[schema.MetricLinesOfCode])
	density := float64(issueCount) / loc
	score := 1 -
		densityWeight*math.Min(1, 10*density) -
		duplicationWeight*metrics[schema.MetricDuplicationRatio] +
		commentBonus*math.Min(1, 4*metrics[schema.MetricCommentRatio])
	return clamp01(score)
}

// globalScore folds the component scores into one weighted 0-10
// figure. Quality is rescaled from its 0-1 range before weighting.
func globalScore(scores Scores, mode schema.ScoreMode) float64 {
	weights := schema.GetScoreWeights(mode)
	return weights[schema.ComponentSecurity]*scores.Security +
		weights[schema.ComponentQuality]*(maxScore*scores.Quality) +
		weights[schema.ComponentComplexity]*scores.Complexity +
		weights[schema.ComponentPerformance]*scores.Performance
}

func clamp(value, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, value))
}

func clamp01(value float64) float64 {
	return clamp(value, 0, 1)
}
