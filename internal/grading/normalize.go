package grading

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawAnswerBag is the untrusted answer payload exactly as the student
// submitted it: positional key q{i} mapped to an absent, scalar, or list
// value. It is also the wire format of the submissions.answers column.
type RawAnswerBag map[string]interface{}

// ParseAnswerBag decodes a stored answers column. Malformed JSON degrades to
// an empty bag so a corrupt record still renders through the recovery path.
func ParseAnswerBag(raw []byte) RawAnswerBag {
	if len(raw) == 0 {
		return RawAnswerBag{}
	}
	var bag RawAnswerBag
	if err := json.Unmarshal(raw, &bag); err != nil {
		return RawAnswerBag{}
	}
	if bag == nil {
		return RawAnswerBag{}
	}
	return bag
}

func (b RawAnswerBag) Encode() string {
	if b == nil {
		return "{}"
	}
	out, err := json.Marshal(b)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type AnswerKind int

const (
	NoAnswer AnswerKind = iota
	SingleChoice
	MultipleChoice
	OpenText
)

// NormalizedAnswer is the canonical form of one raw bag entry. Exactly one
// of Index, Indices, Text is meaningful, selected by Kind.
type NormalizedAnswer struct {
	Kind    AnswerKind
	Index   int
	Indices []int
	Text    string
}

// Normalize converts the raw bag entry for a question into its canonical
// form. It never fails: any value that cannot be coerced for the question's
// type degrades to NoAnswer so one malformed answer cannot abort grading.
//
// Coercion policy, per question type:
//   - single: a list takes its first element; a non-numeric value is NoAnswer.
//   - multiple: a scalar wraps into a one-element set; non-numeric members
//     are dropped silently; an empty result is NoAnswer.
//   - open: a list takes its first element; scalars are stringified.
func Normalize(q Question, raw interface{}) NormalizedAnswer {
	if raw == nil {
		return NormalizedAnswer{Kind: NoAnswer}
	}

	switch q.Type {
	case TypeSingle:
		v := raw
		if list, ok := raw.([]interface{}); ok {
			if len(list) == 0 {
				return NormalizedAnswer{Kind: NoAnswer}
			}
			v = list[0]
		}
		idx, ok := toIndex(v)
		if !ok {
			return NormalizedAnswer{Kind: NoAnswer}
		}
		return NormalizedAnswer{Kind: SingleChoice, Index: idx}

	case TypeMultiple:
		items, ok := raw.([]interface{})
		if !ok {
			items = []interface{}{raw}
		}
		set := toIndexSet(items)
		if len(set) == 0 {
			return NormalizedAnswer{Kind: NoAnswer}
		}
		return NormalizedAnswer{Kind: MultipleChoice, Indices: set}

	case TypeOpen:
		v := raw
		if list, ok := raw.([]interface{}); ok {
			if len(list) == 0 {
				return NormalizedAnswer{Kind: NoAnswer}
			}
			v = list[0]
		}
		text := coerceText(v)
		if strings.TrimSpace(text) == "" {
			return NormalizedAnswer{Kind: OpenText, Text: ""}
		}
		return NormalizedAnswer{Kind: OpenText, Text: text}

	default:
		return NormalizedAnswer{Kind: NoAnswer}
	}
}

func coerceText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
