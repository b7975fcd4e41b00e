package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	TypeSingle   = "single"
	TypeMultiple = "multiple"
	TypeOpen     = "open"
)

var ErrInvalidQuestion = errors.New("invalid question")

// Question is one test item as stored in the tests table (JSON array in the
// questions column). Correct is kept raw because its shape depends on the
// question type: a scalar index for single choice, an index array for
// multiple choice, absent for open questions.
type Question struct {
	Text    string          `json:"text"`
	Type    string          `json:"type"`
	Options []string        `json:"options,omitempty"`
	Correct json.RawMessage `json:"correct,omitempty"`
	Points  float64         `json:"points,omitempty"`
	Image   string          `json:"image,omitempty"`
}

type Test struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatorID *int64     `json:"creator_id,omitempty"`
	Questions []Question `json:"questions"`
}

// AnswerKey returns the positional key under which the student's answer for
// question i is stored in the raw answer bag.
func AnswerKey(i int) string {
	return fmt.Sprintf("q%d", i)
}

// PointsPossible is the question weight, defaulting to 1 when unset or
// non-positive.
func (q Question) PointsPossible() float64 {
	if q.Points > 0 {
		return q.Points
	}
	return 1
}

// IsObjective reports whether the question is auto-gradable.
func (q Question) IsObjective() bool {
	return q.Type == TypeSingle || q.Type == TypeMultiple
}

// CorrectIndex decodes the answer key of a single-choice question.
func (q Question) CorrectIndex() (int, bool) {
	var v interface{}
	if err := json.Unmarshal(q.Correct, &v); err != nil {
		return 0, false
	}
	return toIndex(v)
}

// CorrectSet decodes the answer key of a multiple-choice question into a
// sorted set of option indices. A scalar key is treated as a one-element set.
func (q Question) CorrectSet() []int {
	var v interface{}
	if err := json.Unmarshal(q.Correct, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case []interface{}:
		return toIndexSet(t)
	default:
		if idx, ok := toIndex(v); ok {
			return []int{idx}
		}
		return nil
	}
}

// ValidateQuestions checks the authoring invariants before a test is stored:
// known type, non-empty text, options present for objective questions, and
// answer-key indices referencing valid options.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: test must have at least one question", ErrInvalidQuestion)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has empty text", ErrInvalidQuestion, i)
		}
		switch q.Type {
		case TypeSingle:
			if len(q.Options) < 2 {
				return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidQuestion, i)
			}
			idx, ok := q.CorrectIndex()
			if !ok || idx < 0 || idx >= len(q.Options) {
				return fmt.Errorf("%w: question %d has an answer key outside its options", ErrInvalidQuestion, i)
			}
		case TypeMultiple:
			if len(q.Options) < 2 {
				return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidQuestion, i)
			}
			set := q.CorrectSet()
			if len(set) == 0 {
				return fmt.Errorf("%w: question %d has an empty answer key", ErrInvalidQuestion, i)
			}
			for _, idx := range set {
				if idx < 0 || idx >= len(q.Options) {
					return fmt.Errorf("%w: question %d has an answer key outside its options", ErrInvalidQuestion, i)
				}
			}
		case TypeOpen:
			// no answer key to validate
		default:
			return fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidQuestion, i, q.Type)
		}
	}
	return nil
}

// StripAnswerKeys returns a copy of the questions without answer keys, for
// serving a test to students.
func StripAnswerKeys(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	for i := range out {
		out[i].Correct = nil
	}
	return out
}

func toIndex(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toIndexSet(items []interface{}) []int {
	set := map[int]struct{}{}
	for _, it := range items {
		if idx, ok := toIndex(it); ok {
			set[idx] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Submission is the persisted record produced by one grading request. Only
// the manual override fields change after creation.
type Submission struct {
	ID           int64          `json:"id"`
	TestID       int64          `json:"test_id"`
	StudentName  string         `json:"student_name"`
	StudentClass string         `json:"student_class"`
	RawAnswers   RawAnswerBag   `json:"answers"`
	AutoGrade    string         `json:"auto_grade"`
	Override     ManualOverride `json:"manual_override"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}
