package grading

// Verdict is the per-question scoring outcome. IsCorrect carries no meaning
// for open or unknown question types.
type Verdict struct {
	IsCorrect      bool    `json:"is_correct"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
}

// Score compares a normalized answer against the question's answer key.
//
//   - single: full points iff the selected index equals the key.
//   - multiple: full points iff the selected set equals the key set exactly,
//     same size and same members. Subsets and supersets score zero.
//   - open: never auto-scored, zero points until a manual override.
//   - unknown type: zero-point ungraded.
func Score(q Question, ans NormalizedAnswer) Verdict {
	switch q.Type {
	case TypeSingle:
		v := Verdict{PointsPossible: q.PointsPossible()}
		correct, ok := q.CorrectIndex()
		if !ok {
			return v
		}
		if ans.Kind == SingleChoice && ans.Index == correct {
			v.IsCorrect = true
			v.PointsEarned = v.PointsPossible
		}
		return v

	case TypeMultiple:
		v := Verdict{PointsPossible: q.PointsPossible()}
		correct := q.CorrectSet()
		if len(correct) == 0 {
			return v
		}
		if ans.Kind == MultipleChoice && equalIndexSet(ans.Indices, correct) {
			v.IsCorrect = true
			v.PointsEarned = v.PointsPossible
		}
		return v

	case TypeOpen:
		return Verdict{PointsPossible: q.PointsPossible()}

	default:
		return Verdict{}
	}
}

// equalIndexSet assumes both slices are sorted sets, which is what
// CorrectSet and Normalize produce.
func equalIndexSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
