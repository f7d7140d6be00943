package ladder

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStandardLadder(t *testing.T) {
	got := Standard()
	labels := make([]string, len(got))
	for i, r := range got {
		labels[i] = r.Label
		if r.Position != i {
			t.Errorf("%s: position = %d, want %d", r.Label, r.Position, i)
		}
		if r.SegmentDuration != 4*time.Second || r.GOP != 150 {
			t.Errorf("%s: segment/gop = %v/%d", r.Label, r.SegmentDuration, r.GOP)
		}
	}
	want := []string{
		"480x270@365k", "640x360@730k", "960x540@2000k",
		"1280x720@3000k", "1920x1080@4500k", "1920x1080@8500k",
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("ladder labels mismatch (-want +got):\n%s", diff)
	}
}

func TestStandardReturnsCopy(t *testing.T) {
	a := Standard()
	a[0].Label = "mutated"
	if Standard()[0].Label != "480x270@365k" {
		t.Fatal("Standard must not expose the package ladder")
	}
}

func TestByLabel(t *testing.T) {
	r, ok := ByLabel("1280x720@3000k")
	if !ok {
		t.Fatal("expected label to be found")
	}
	if r.Profile != "main" || r.AudioBitrate != "128k" || r.Resolution() != "1280x720" {
		t.Errorf("unexpected spec: %+v", r)
	}
	if _, ok := ByLabel("nope"); ok {
		t.Error("unexpected match")
	}
}

func TestIsRenditionFolder(t *testing.T) {
	tests := map[string]bool{
		"640x360@730k":   true,
		"1920x1080@8500k": true,
		"preview_images": false,
		"640x360@730":    false,
		"axb@1k":         false,
		"main":           false,
	}
	for name, want := range tests {
		if got := IsRenditionFolder(name); got != want {
			t.Errorf("IsRenditionFolder(%q) = %v, want %v", name, got, want)
		}
	}
}
