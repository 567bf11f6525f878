package diag

import "testing"

func TestBagMergeAndCount(t *testing.T) {
	b := NewBag()
	b.Warn("skipped_nan_heading", "heading was NaN at index 3")
	b.Warn("skipped_nan_heading", "heading was NaN at index 9")

	other := NewBag()
	other.Warn("skipped_nan_heading", "heading was NaN at index 1")
	other.Warn("no_observations_in_window", "t=100 has no nearby observations")

	b.Merge(other)

	if got := b.Count("skipped_nan_heading"); got != 3 {
		t.Fatalf("Count(skipped_nan_heading) = %d, want 3", got)
	}
	if got := b.Count("no_observations_in_window"); got != 1 {
		t.Fatalf("Count(no_observations_in_window) = %d, want 1", got)
	}
	if len(b.Warnings) != 4 {
		t.Fatalf("len(Warnings) = %d, want 4", len(b.Warnings))
	}
}

func TestErrorKindString(t *testing.T) {
	err := Invalid("lat", "out of range")
	if err.Kind != InvalidInput {
		t.Fatalf("Kind = %v, want InvalidInput", err.Kind)
	}
	if err.Error() == "" {
		t.Fatal("Error() returned empty string")
	}
}

func TestAbortNilIsNeverRequested(t *testing.T) {
	var a *Abort
	if a.Requested() {
		t.Fatal("nil *Abort reported Requested() == true")
	}
}

func TestAbortSetRequested(t *testing.T) {
	a := &Abort{}
	if a.Requested() {
		t.Fatal("fresh Abort reported Requested() == true")
	}
	a.Set()
	if !a.Requested() {
		t.Fatal("Abort.Set() did not make Requested() true")
	}
}
