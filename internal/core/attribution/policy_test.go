package attribution

import (
	"math"
	"testing"
)

func TestDeskZone(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name  string
		zones []string
		want  string
		ok    bool
	}{
		{"single desk", []string{"desk_7"}, "desk_7", true},
		{"desk among tags", []string{"entrance", "desk_44", "hallway"}, "desk_44", true},
		{"first desk wins positionally", []string{"desk_12", "desk_7"}, "desk_12", true},
		{"no desk", []string{"entrance", "kitchen"}, "", false},
		{"empty", nil, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := p.DeskZone(tc.zones)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("DeskZone(%v) = (%q, %v), want (%q, %v)", tc.zones, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestPickFace(t *testing.T) {
	p := DefaultPolicy()

	t.Run("nearest delta wins", func(t *testing.T) {
		got := p.PickFace([]FaceSighting{
			{Identity: "Ali Raza", Confidence: 0.7, Timestamp: 5200},
			{Identity: "Sara Khan", Confidence: 0.99, Timestamp: 5250},
		}, 5000)
		if got == nil || got.Identity != "Ali Raza" {
			t.Fatalf("want nearest sighting, got %+v", got)
		}
	})

	t.Run("tie broken by confidence", func(t *testing.T) {
		got := p.PickFace([]FaceSighting{
			{Identity: "Ali Raza", Confidence: 0.7, Timestamp: 4900},
			{Identity: "Sara Khan", Confidence: 0.9, Timestamp: 5100},
		}, 5000)
		if got == nil || got.Identity != "Sara Khan" {
			t.Fatalf("want higher-confidence sighting on tie, got %+v", got)
		}
	})

	t.Run("window boundary inclusive", func(t *testing.T) {
		if got := p.PickFace([]FaceSighting{{Identity: "X", Confidence: 1, Timestamp: 5300}}, 5000); got == nil {
			t.Fatal("delta == WindowSecs should qualify")
		}
		if got := p.PickFace([]FaceSighting{{Identity: "X", Confidence: 1, Timestamp: 5301}}, 5000); got != nil {
			t.Fatalf("delta > WindowSecs should not qualify, got %+v", got)
		}
	})

	t.Run("anonymous sightings skipped", func(t *testing.T) {
		if got := p.PickFace([]FaceSighting{{Identity: "", Confidence: 1, Timestamp: 5000}}, 5000); got != nil {
			t.Fatalf("unlabeled sighting must not attribute, got %+v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := p.PickFace(nil, 5000); got != nil {
			t.Fatalf("want nil, got %+v", got)
		}
	})
}

func TestCombine(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name string
		zone string
		face *FaceSighting
		want Result
	}{
		{
			name: "zone confirmed by face",
			zone: "Ali Raza",
			face: &FaceSighting{Identity: "Ali Raza", Confidence: 0.95, Timestamp: 5010},
			want: Result{Identity: "Ali Raza", Confidence: 0.95, Method: MethodZoneMatchFaceConfirmed},
		},
		{
			name: "zone and face disagree",
			zone: "Ali Raza",
			face: &FaceSighting{Identity: "Sara Khan", Confidence: 0.9, Timestamp: 5010},
			want: Result{Identity: "Sara Khan", Confidence: 0.72, Method: MethodFaceOnly},
		},
		{
			name: "zone only",
			zone: "Khalid Ahmed",
			want: Result{Identity: "Khalid Ahmed", Confidence: 0.9, Method: MethodZoneOnly},
		},
		{
			name: "face only",
			face: &FaceSighting{Identity: "Hira Memon", Confidence: 0.88, Timestamp: 5010},
			want: Result{Identity: "Hira Memon", Confidence: 0.88, Method: MethodFaceOnly},
		},
		{
			name: "neither",
			want: Result{Identity: Unknown, Confidence: 0, Method: MethodUnresolved},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Combine(tc.zone, tc.face)
			if got.Identity != tc.want.Identity || got.Method != tc.want.Method {
				t.Fatalf("Combine = %+v, want %+v", got, tc.want)
			}
			if math.Abs(got.Confidence-tc.want.Confidence) > 1e-9 {
				t.Fatalf("confidence = %v, want %v", got.Confidence, tc.want.Confidence)
			}
		})
	}
}

func TestCombineSpellingVariantsStillConfirm(t *testing.T) {
	p := DefaultPolicy()
	// recognizer labels rarely match the chart byte-for-byte
	got := p.Combine("Ali Raza", &FaceSighting{Identity: "ali  raza", Confidence: 0.95})
	if got.Method != MethodZoneMatchFaceConfirmed {
		t.Fatalf("case/space variant should confirm, got %+v", got)
	}
	if got.Identity != "Ali Raza" {
		t.Fatalf("chart spelling should win, got %q", got.Identity)
	}
}
