package observability

import "testing"

func TestNormalizedPath(t *testing.T) {
	got := normalizedPath("/api/v1/tests/123/submissions/9")
	want := "/api/v1/tests/{id}/submissions/{id}"
	if got != want {
		t.Fatalf("normalizedPath mismatch got=%s want=%s", got, want)
	}
}

func TestNormalizedPathMasksShareTokens(t *testing.T) {
	got := normalizedPath("/api/v1/results/0b0d7a1e-9f3c-4f64-8a7d-1f2e3d4c5b6a")
	want := "/api/v1/results/{token}"
	if got != want {
		t.Fatalf("normalizedPath mismatch got=%s want=%s", got, want)
	}
}
