package grading

import (
	"reflect"
	"testing"
)

func TestNormalizeSingle(t *testing.T) {
	q := Question{Type: TypeSingle, Options: []string{"a", "b", "c"}}

	tests := []struct {
		name string
		raw  interface{}
		want NormalizedAnswer
	}{
		{name: "absent", raw: nil, want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "string index", raw: "1", want: NormalizedAnswer{Kind: SingleChoice, Index: 1}},
		{name: "numeric index", raw: float64(2), want: NormalizedAnswer{Kind: SingleChoice, Index: 2}},
		{name: "list takes first", raw: []interface{}{"0", "2"}, want: NormalizedAnswer{Kind: SingleChoice, Index: 0}},
		{name: "empty list", raw: []interface{}{}, want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "non numeric degrades", raw: "banana", want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "fractional degrades", raw: float64(1.5), want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "bool degrades", raw: true, want: NormalizedAnswer{Kind: NoAnswer}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(q, tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestNormalizeMultiple(t *testing.T) {
	q := Question{Type: TypeMultiple, Options: []string{"a", "b", "c"}}

	tests := []struct {
		name string
		raw  interface{}
		want NormalizedAnswer
	}{
		{name: "absent", raw: nil, want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "list sorted deduped", raw: []interface{}{"2", "0", "2"}, want: NormalizedAnswer{Kind: MultipleChoice, Indices: []int{0, 2}}},
		{name: "scalar wraps", raw: "1", want: NormalizedAnswer{Kind: MultipleChoice, Indices: []int{1}}},
		{name: "non numeric members dropped", raw: []interface{}{"0", "x", float64(2)}, want: NormalizedAnswer{Kind: MultipleChoice, Indices: []int{0, 2}}},
		{name: "all dropped is no answer", raw: []interface{}{"x", "y"}, want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "empty list", raw: []interface{}{}, want: NormalizedAnswer{Kind: NoAnswer}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(q, tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestNormalizeOpen(t *testing.T) {
	q := Question{Type: TypeOpen}

	tests := []struct {
		name string
		raw  interface{}
		want NormalizedAnswer
	}{
		{name: "absent", raw: nil, want: NormalizedAnswer{Kind: NoAnswer}},
		{name: "plain text", raw: "photosynthesis", want: NormalizedAnswer{Kind: OpenText, Text: "photosynthesis"}},
		{name: "list takes first", raw: []interface{}{"first", "second"}, want: NormalizedAnswer{Kind: OpenText, Text: "first"}},
		{name: "number stringified", raw: float64(42), want: NormalizedAnswer{Kind: OpenText, Text: "42"}},
		{name: "blank text stays empty", raw: "   ", want: NormalizedAnswer{Kind: OpenText, Text: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(q, tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestNormalizeUnknownType(t *testing.T) {
	got := Normalize(Question{Type: "essayish"}, "whatever")
	if got.Kind != NoAnswer {
		t.Fatalf("expected NoAnswer for unknown type, got %+v", got)
	}
}

func TestParseAnswerBag(t *testing.T) {
	bag := ParseAnswerBag([]byte(`{"q0":"1","q1":["0","2"]}`))
	if len(bag) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(bag))
	}
	if bag["q0"] != "1" {
		t.Fatalf("expected q0=1, got %v", bag["q0"])
	}

	if got := ParseAnswerBag([]byte(`{invalid`)); len(got) != 0 {
		t.Fatalf("malformed bag should degrade to empty, got %v", got)
	}
	if got := ParseAnswerBag(nil); got == nil {
		t.Fatalf("nil input should yield usable empty bag")
	}
}

func TestAnswerBagEncodeRoundTrip(t *testing.T) {
	raw := `{"q0":"1","q1":["0","2"]}`
	bag := ParseAnswerBag([]byte(raw))
	back := ParseAnswerBag([]byte(bag.Encode()))
	if !reflect.DeepEqual(bag, back) {
		t.Fatalf("round trip mismatch: %v vs %v", bag, back)
	}
}
