// Package scoring turns the latest soil and vision readings of a plot into
// a discrete status, a continuous 0-100 health score and a list of
// human-readable risk factors.
//
// Both views are derived from one rule table per metric so the "live
// status" and "snapshot" computations cannot drift apart. Two entry points
// exist because they start from different baselines: Evaluate scores down
// from 100 for the on-request view, EvaluateSnapshot deducts from a fixed
// base of 70 and accumulates risk factors for the daily snapshot.
package scoring

import (
	"math"

	"orchard-bridge/models"
)

// Baselines and special scores.
const (
	liveBaseScore     = 100
	snapshotBaseScore = 70
	offlineScore      = 50
)

// Vision thresholds and adjustments.
const (
	ndviGood          = 0.6
	ndviPoor          = 0.4
	ndviBonus         = 10
	ndviPenalty       = 15
	pestPenalty       = 15
	irrigationPenalty = 10
	stressModerate    = 40.0
	stressHigh        = 70.0
	stressModPenalty  = 10
	stressHighPenalty = 25
)

// metricRule holds every threshold for one soil metric: the score bands
// (ideal, acceptable, outside) and the independent status bands (warning,
// critical). An infinite bound means the band is open on that side.
type metricRule struct {
	name string

	idealLo, idealHi float64
	accepLo, accepHi float64
	minorPenalty     int
	majorPenalty     int

	warnLo, warnHi float64
	critLo, critHi float64

	lowFactor  string
	highFactor string
}

var rules = []metricRule{
	{
		name:    "moisture",
		idealLo: 18, idealHi: 28,
		accepLo: 14, accepHi: 32,
		minorPenalty: 10, majorPenalty: 25,
		warnLo: 15, warnHi: 30,
		critLo: 10, critHi: 35,
		lowFactor:  "Low soil moisture",
		highFactor: "High soil moisture",
	},
	{
		name:    "ph",
		idealLo: 6.0, idealHi: 7.5,
		accepLo: 5.5, accepHi: 8.0,
		minorPenalty: 10, majorPenalty: 25,
		warnLo: 6.0, warnHi: 7.5,
		critLo: 5.5, critHi: 8.0,
		lowFactor:  "Low soil pH",
		highFactor: "High soil pH",
	},
	{
		// Heat is the dangerous side for mango root zones, so only the
		// upper bound ever classifies as critical.
		name:    "temperature",
		idealLo: 18, idealHi: 32,
		accepLo: 15, accepHi: 38,
		minorPenalty: 10, majorPenalty: 20,
		warnLo: 15, warnHi: 35,
		critLo: math.Inf(-1), critHi: 40,
		lowFactor:  "Low soil temperature",
		highFactor: "High soil temperature",
	},
}

// Result is the scoring outcome for one plot.
type Result struct {
	Status      string
	Score       int
	RiskLevel   string
	RiskFactors []string
}

func (r metricRule) metric(soil *models.SoilReading) *float64 {
	switch r.name {
	case "moisture":
		return soil.Moisture
	case "ph":
		return soil.PH
	default:
		return soil.Temperature
	}
}

// factorFor picks the low or high label depending on which side of the
// ideal band the value breached.
func (r metricRule) factorFor(v float64) string {
	if v < r.idealLo {
		return r.lowFactor
	}
	return r.highFactor
}

// Evaluate computes the live, reading-driven view of a plot: status from
// the warning/critical bands, score deducted from 100, risk factors for
// every breach beyond the acceptable band.
func Evaluate(soil *models.SoilReading, vision *models.VisionReading) Result {
	if soil == nil {
		return Result{Status: models.StatusOffline, Score: offlineScore}
	}

	res := Result{Status: models.StatusOK, Score: liveBaseScore}

	for _, rule := range rules {
		v := rule.metric(soil)
		if v == nil {
			continue
		}
		switch {
		case *v >= rule.idealLo && *v <= rule.idealHi:
			// no penalty
		case *v >= rule.accepLo && *v <= rule.accepHi:
			res.Score -= rule.minorPenalty
		default:
			res.Score -= rule.majorPenalty
			res.RiskFactors = append(res.RiskFactors, rule.factorFor(*v))
		}

		if *v < rule.critLo || *v > rule.critHi {
			res.Status = models.StatusCritical
		} else if res.Status == models.StatusOK && (*v < rule.warnLo || *v > rule.warnHi) {
			res.Status = models.StatusWarning
		}
	}

	applyVision(&res, vision)

	res.Score = clamp(res.Score)
	return res
}

// EvaluateSnapshot computes the deduction-based daily view: score deducted
// from a fixed base of 70, a risk factor accumulated for every applied
// penalty, status derived from the accumulated state with single
// disqualifying rules promoting straight to critical, and a risk level from
// the factor count.
func EvaluateSnapshot(soil *models.SoilReading, vision *models.VisionReading) Result {
	if soil == nil {
		return Result{Status: models.StatusOffline, Score: offlineScore, RiskLevel: models.RiskBaixo}
	}

	res := Result{Status: models.StatusOK, Score: snapshotBaseScore}

	for _, rule := range rules {
		v := rule.metric(soil)
		if v == nil {
			continue
		}
		switch {
		case *v >= rule.idealLo && *v <= rule.idealHi:
			// no penalty
		case *v >= rule.accepLo && *v <= rule.accepHi:
			res.Score -= rule.minorPenalty
			res.RiskFactors = append(res.RiskFactors, rule.factorFor(*v))
			escalate(&res, models.StatusWarning)
		default:
			res.Score -= rule.majorPenalty
			res.RiskFactors = append(res.RiskFactors, rule.factorFor(*v))
			escalate(&res, models.StatusWarning)
		}
	}

	// Disqualifying rules: any one of these makes the day critical no
	// matter what the deductions sum to.
	if soil.Moisture != nil && (*soil.Moisture < 15 || *soil.Moisture > 35) {
		escalate(&res, models.StatusCritical)
	}
	if soil.Temperature != nil && *soil.Temperature > 35 {
		escalate(&res, models.StatusCritical)
	}

	applyVision(&res, vision)

	res.Score = clamp(res.Score)
	res.RiskLevel = riskLevel(len(res.RiskFactors), res.Status)
	return res
}

// applyVision folds the vision-derived adjustments into an in-progress
// result. Shared verbatim between both views.
func applyVision(res *Result, vision *models.VisionReading) {
	if vision == nil {
		return
	}

	if vision.NDVI != nil {
		if *vision.NDVI >= ndviGood {
			res.Score += ndviBonus
		} else if *vision.NDVI < ndviPoor {
			res.Score -= ndviPenalty
			res.RiskFactors = append(res.RiskFactors, "Low vegetation index")
		}
	}

	if vision.PestsDetected {
		res.Score -= pestPenalty
		res.RiskFactors = append(res.RiskFactors, "Pests detected")
		escalate(res, models.StatusWarning)
	}
	if vision.IrrigationFailures > 0 {
		res.Score -= irrigationPenalty
		res.RiskFactors = append(res.RiskFactors, "Irrigation failures")
		escalate(res, models.StatusWarning)
	}

	if vision.WaterStressLevel != nil {
		stress := *vision.WaterStressLevel
		if stress > stressHigh {
			res.Score -= stressHighPenalty
			res.RiskFactors = append(res.RiskFactors, "High water stress")
			escalate(res, models.StatusCritical)
		} else if stress > stressModerate {
			res.Score -= stressModPenalty
			// Moderate stress only lifts an otherwise clean plot.
			if res.Status == models.StatusOK {
				res.Status = models.StatusWarning
			}
		}
	}
}

// escalate raises the status, never lowers it.
func escalate(res *Result, status string) {
	if res.Status == models.StatusCritical {
		return
	}
	if status == models.StatusCritical || res.Status == models.StatusOK {
		res.Status = status
	}
}

// riskLevel maps the accumulated factor count and status to a level.
func riskLevel(factorCount int, status string) string {
	switch {
	case factorCount >= 3 || status == models.StatusCritical:
		return models.RiskCritico
	case factorCount == 2:
		return models.RiskAlto
	case factorCount == 1:
		return models.RiskMedio
	default:
		return models.RiskBaixo
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
