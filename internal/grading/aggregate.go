package grading

import (
	"fmt"
	"math"
)

// AutoScore is the automatic result over the objective questions of a test.
// Open questions contribute to neither Earned nor Total.
type AutoScore struct {
	Earned  float64 `json:"earned"`
	Total   float64 `json:"total"`
	Percent int     `json:"percent"`
	Grade   string  `json:"grade"`
}

// GradeScale maps an unrounded percentage (0..100) to a grade label. The
// scale is a policy, not a branch in the engine, so deployments can swap
// the numeric 2-6 scale for letter grades.
type GradeScale func(percent float64) string

// NumericScale is the default continuous 2-6 scale: 2 + 4 * ratio, clamped
// to [2, 6]. An empty objective total maps to the minimum grade.
func NumericScale(percent float64) string {
	grade := 2 + 4*(percent/100)
	if grade < 2 {
		grade = 2
	}
	if grade > 6 {
		grade = 6
	}
	return fmt.Sprintf("%.2f", grade)
}

// LetterScale is the discrete A-F preset.
func LetterScale(percent float64) string {
	switch {
	case percent >= 90:
		return "A"
	case percent >= 80:
		return "B"
	case percent >= 70:
		return "C"
	case percent >= 60:
		return "D"
	default:
		return "F"
	}
}

// ScaleByName resolves a configured scale preset, falling back to the
// numeric scale for unknown names.
func ScaleByName(name string) GradeScale {
	switch name {
	case "letter":
		return LetterScale
	default:
		return NumericScale
	}
}

// Aggregate folds per-question verdicts into the automatic score. Only
// objective questions feed the totals; a test with no objective questions
// has percent 0 and the scale's minimum grade.
func Aggregate(questions []Question, verdicts []Verdict, scale GradeScale) AutoScore {
	if scale == nil {
		scale = NumericScale
	}

	var earned, total float64
	for i, q := range questions {
		if i >= len(verdicts) || !q.IsObjective() {
			continue
		}
		earned += verdicts[i].PointsEarned
		total += verdicts[i].PointsPossible
	}

	percent := 0.0
	if total > 0 {
		percent = earned / total * 100
	}

	return AutoScore{
		Earned:  earned,
		Total:   total,
		Percent: int(math.Round(percent)),
		Grade:   scale(percent),
	}
}
