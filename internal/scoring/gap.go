// Package scoring evaluates employees against goal skill requirements:
// readiness, risk and time-to-readiness per employee, coverage per skill, and
// the candidate ordering used by the planner.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// Model constants.
const (
	// HoursPerMonth approximates one working month.
	HoursPerMonth = 160.0
	// MinMonthlyCapacity guarantees progress even at full workload.
	MinMonthlyCapacity = 8.0
	// NeverReady is the time-to-readiness reported when no capacity exists.
	NeverReady = 99.0

	PrereqTax           = 0.2
	ReadinessDecay      = 15.0
	DeliveryRiskScale   = 3.0
	OverutilizationFrom = 0.85
	OverutilizationSpan = 0.15

	deliveryWeight        = 0.5
	attritionWeight       = 0.35
	overutilizationWeight = 0.15
)

// Score evaluates one employee against one skill requirement. It has no side
// effects and returns identical output for identical input; absent data
// resolves to the documented defaults.
func Score(emp models.Employee, skillID string, target level.Level, catalog *models.SkillCatalog, deadlineMonths float64) models.GapMetrics {
	current := emp.LevelOf(skillID)
	steps := current.StepsTo(target)

	baseHours := 0
	for from := current; from < target; from = from.Next() {
		baseHours += catalog.HoursForStep(from, from.Next(), models.DefaultStepHours)
	}

	var unmet []string
	for _, p := range catalog.Prereqs(skillID) {
		if !emp.Holds(p) {
			unmet = append(unmet, p)
		}
	}
	tax := PrereqTax * float64(len(unmet))
	totalHours := roundInt(float64(baseHours) * (1 + tax))

	workload := emp.WorkloadOr(models.DefaultWorkload)
	available := MonthlyCapacity(workload)
	ttr := NeverReady
	if available > 0 {
		ttr = float64(totalHours) / available
	}

	readiness := ReadinessFromTTR(ttr)

	delivery := DeliveryRisk(ttr, deadlineMonths)
	overutil := OverutilizationRisk(workload)
	attrition := emp.AttritionOr(models.DefaultAttrition) * 100.0
	risk := clampScore(roundInt(deliveryWeight*delivery + attritionWeight*attrition + overutilizationWeight*overutil))

	var reasons []string
	if steps > 0 {
		reasons = append(reasons, fmt.Sprintf("Gap: %s %s (%d step(s))", skillID, level.Transition(current, target), steps))
	}
	if len(unmet) > 0 {
		reasons = append(reasons, "Unmet prereqs: "+strings.Join(unmet, ", "))
	}
	reasons = append(reasons,
		fmt.Sprintf("Workload %d%%", int(workload*100)),
		fmt.Sprintf("TTR ~ %.1f mo vs deadline %.1f mo", ttr, deadlineMonths),
	)

	return models.GapMetrics{
		EmployeeID:   emp.ID,
		Name:         emp.Name,
		Role:         emp.Role,
		SkillID:      skillID,
		CurrentLevel: current.String(),
		TargetLevel:  target.String(),
		GapSteps:     steps,
		TotalHours:   totalHours,
		TTRMonths:    roundTenth(ttr),
		Readiness:    readiness,
		Risk:         risk,
		Reasons:      reasons,
	}
}

// MonthlyCapacity is the learning hours per month left over by workload.
func MonthlyCapacity(workload float64) float64 {
	return math.Max(MinMonthlyCapacity, (1.0-workload)*HoursPerMonth)
}

// ReadinessFromTTR maps time-to-readiness onto 0..100 with linear decay.
func ReadinessFromTTR(ttr float64) int {
	return clampScore(roundInt(100 - ReadinessDecay*ttr))
}

// DeliveryRisk is zero while ttr meets the deadline and ramps along a sigmoid
// afterwards, reaching half risk three months late.
func DeliveryRisk(ttr, deadlineMonths float64) float64 {
	if ttr <= deadlineMonths {
		return 0
	}
	return sigmoid((ttr-deadlineMonths)/DeliveryRiskScale) * 100.0
}

// OverutilizationRisk is zero up to 85% workload and 100 at full workload.
func OverutilizationRisk(workload float64) float64 {
	return math.Max(0, workload-OverutilizationFrom) * (100.0 / OverutilizationSpan)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// roundInt rounds half to even, matching the reference scoring runtime.
func roundInt(x float64) int {
	return int(math.RoundToEven(x))
}

// roundTenth rounds to one decimal place from the exact binary value.
func roundTenth(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return v
}

func clampScore(v int) int {
	return min(100, max(0, v))
}
