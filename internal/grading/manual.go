package grading

import (
	"encoding/json"
	"strconv"
)

// Review lifecycle of a submission. Transitions are monotonic: setting
// manual fields never removes earlier data.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusReviewed    = "reviewed"
)

// ManualOverride carries everything a teacher layers on top of the
// automatic score: per-question points for open questions or corrections,
// and an optional final grade with a comment. Points keys are stringified
// question indices, which is the exact wire format of the manual_points
// column.
type ManualOverride struct {
	Points  map[string]float64 `json:"points"`
	Grade   string             `json:"grade,omitempty"`
	Comment string             `json:"comment,omitempty"`
}

// ParseManualPoints decodes a stored manual_points column. Malformed text
// degrades to an empty map.
func ParseManualPoints(raw string) map[string]float64 {
	if raw == "" {
		return map[string]float64{}
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]float64{}
	}
	return m
}

func EncodeManualPoints(m map[string]float64) string {
	if len(m) == 0 {
		return "{}"
	}
	out, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ApplyManualPoints returns a new points map with the award for one
// question index set, leaving the input and all other indices untouched.
func ApplyManualPoints(points map[string]float64, questionIndex int, award float64) map[string]float64 {
	merged := make(map[string]float64, len(points)+1)
	for k, v := range points {
		merged[k] = v
	}
	merged[strconv.Itoa(questionIndex)] = award
	return merged
}

// ApplyManualReview returns the override with the final grade and comment
// set. Per-question points survive the merge.
func ApplyManualReview(o ManualOverride, grade, comment string) ManualOverride {
	o.Grade = grade
	o.Comment = comment
	return o
}

// ManualPointsFor looks up the teacher's award for a question index.
func (o ManualOverride) ManualPointsFor(questionIndex int) (float64, bool) {
	v, ok := o.Points[strconv.Itoa(questionIndex)]
	return v, ok
}

// ReviewStatus derives the lifecycle state from which manual fields are set.
func (o ManualOverride) ReviewStatus() string {
	if o.Grade != "" {
		return StatusReviewed
	}
	if len(o.Points) > 0 {
		return StatusUnderReview
	}
	return StatusSubmitted
}

// EffectiveGrade is what students and teachers see: the manual grade when
// present, else the automatic one.
func EffectiveGrade(autoGrade string, o ManualOverride) string {
	if o.Grade != "" {
		return o.Grade
	}
	return autoGrade
}
