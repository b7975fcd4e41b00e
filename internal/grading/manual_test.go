package grading

import "testing"

func TestApplyManualPointsLeavesInputUntouched(t *testing.T) {
	original := map[string]float64{"0": 1.5}
	merged := ApplyManualPoints(original, 2, 4)

	if len(original) != 1 {
		t.Fatalf("input map was mutated: %v", original)
	}
	if merged["0"] != 1.5 || merged["2"] != 4 {
		t.Fatalf("unexpected merge result: %v", merged)
	}
}

func TestManualPointsWireFormat(t *testing.T) {
	merged := ApplyManualPoints(ParseManualPoints(`{"1":2.5}`), 3, 1)
	encoded := EncodeManualPoints(merged)
	back := ParseManualPoints(encoded)
	if back["1"] != 2.5 || back["3"] != 1 {
		t.Fatalf("round trip lost data: %s -> %v", encoded, back)
	}

	if got := ParseManualPoints("not json"); len(got) != 0 {
		t.Fatalf("malformed column should degrade to empty map, got %v", got)
	}
	if got := EncodeManualPoints(nil); got != "{}" {
		t.Fatalf("empty map should encode as {}, got %s", got)
	}
}

func TestReviewStatusTransitions(t *testing.T) {
	o := ManualOverride{Points: map[string]float64{}}
	if got := o.ReviewStatus(); got != StatusSubmitted {
		t.Fatalf("expected %s, got %s", StatusSubmitted, got)
	}

	o.Points = ApplyManualPoints(o.Points, 1, 3)
	if got := o.ReviewStatus(); got != StatusUnderReview {
		t.Fatalf("expected %s, got %s", StatusUnderReview, got)
	}

	o = ApplyManualReview(o, "5.50", "good effort")
	if got := o.ReviewStatus(); got != StatusReviewed {
		t.Fatalf("expected %s, got %s", StatusReviewed, got)
	}
	if len(o.Points) != 1 {
		t.Fatalf("review must not drop manual points, got %v", o.Points)
	}

	// repeated updates stay allowed and monotonic
	o = ApplyManualReview(o, "6.00", "revised")
	if o.Grade != "6.00" || o.Comment != "revised" {
		t.Fatalf("expected updated review, got %+v", o)
	}
}

func TestEffectiveGrade(t *testing.T) {
	if got := EffectiveGrade("4.00", ManualOverride{}); got != "4.00" {
		t.Fatalf("expected auto grade, got %s", got)
	}
	if got := EffectiveGrade("4.00", ManualOverride{Grade: "5.00"}); got != "5.00" {
		t.Fatalf("expected manual grade to win, got %s", got)
	}
}
