package moments

import "testing"

func f(v float64) *float64 { return &v }

func TestValidateAndRankFiltering(t *testing.T) {
	tests := []struct {
		name string
		in   RawMoment
		keep bool
	}{
		{"valid 30s moment", RawMoment{StartTime: f(10), EndTime: f(40), ViralScore: f(80)}, true},
		{"duration exactly 90", RawMoment{StartTime: f(0), EndTime: f(90), ViralScore: f(50)}, true},
		{"duration exactly 15", RawMoment{StartTime: f(5), EndTime: f(20), ViralScore: f(50)}, true},
		{"duration 95 dropped", RawMoment{StartTime: f(0), EndTime: f(95), ViralScore: f(99)}, false},
		{"duration 14 dropped", RawMoment{StartTime: f(0), EndTime: f(14), ViralScore: f(99)}, false},
		{"zero score dropped", RawMoment{StartTime: f(10), EndTime: f(40), ViralScore: f(0)}, false},
		{"missing score dropped", RawMoment{StartTime: f(10), EndTime: f(40)}, false},
		{"missing start dropped", RawMoment{EndTime: f(40), ViralScore: f(80)}, false},
		{"missing end dropped", RawMoment{StartTime: f(10), ViralScore: f(80)}, false},
		{"end before start dropped", RawMoment{StartTime: f(40), EndTime: f(10), ViralScore: f(80)}, false},
		{"end equals start dropped", RawMoment{StartTime: f(40), EndTime: f(40), ViralScore: f(80)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAndRank([]RawMoment{tt.in})
			if kept := len(got) == 1; kept != tt.keep {
				t.Errorf("kept = %v, want %v", kept, tt.keep)
			}
		})
	}
}

func TestValidateAndRankRecomputesDuration(t *testing.T) {
	// A lying duration field must be ignored.
	raw := []RawMoment{{StartTime: f(10), EndTime: f(40), ViralScore: f(80), Duration: f(500)}}
	got := ValidateAndRank(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 moment, got %d", len(got))
	}
	if got[0].Duration != 30 {
		t.Errorf("Duration = %v, want 30 (recomputed from end-start)", got[0].Duration)
	}
}

func TestValidateAndRankStableOrdering(t *testing.T) {
	raw := []RawMoment{
		{StartTime: f(0), EndTime: f(30), ViralScore: f(50), Title: "fifty"},
		{StartTime: f(100), EndTime: f(130), ViralScore: f(90), Title: "ninety-first"},
		{StartTime: f(200), EndTime: f(230), ViralScore: f(90), Title: "ninety-second"},
		{StartTime: f(300), EndTime: f(330), ViralScore: f(30), Title: "thirty"},
	}

	got := ValidateAndRank(raw)
	want := []string{"ninety-first", "ninety-second", "fifty", "thirty"}
	if len(got) != len(want) {
		t.Fatalf("expected %d moments, got %d", len(want), len(got))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("moment[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}

	// Determinism: ranking the same input again must give the same order.
	again := ValidateAndRank(raw)
	for i := range got {
		if got[i] != again[i] {
			t.Errorf("moment[%d] differs between identical calls", i)
		}
	}
}

func TestValidateAndRankTruncatesToTen(t *testing.T) {
	var raw []RawMoment
	for i := 0; i < 15; i++ {
		raw = append(raw, RawMoment{
			StartTime:  f(float64(i * 100)),
			EndTime:    f(float64(i*100 + 30)),
			ViralScore: f(float64(i + 1)),
		})
	}
	got := ValidateAndRank(raw)
	if len(got) != MaxMoments {
		t.Fatalf("expected %d moments, got %d", MaxMoments, len(got))
	}
	// Highest scores survive the cut.
	if got[0].ViralScore != 15 {
		t.Errorf("top score = %v, want 15", got[0].ViralScore)
	}
}

func TestValidateAndRankEmptyInput(t *testing.T) {
	if got := ValidateAndRank(nil); len(got) != 0 {
		t.Errorf("expected empty result for nil input, got %d", len(got))
	}
	if got := ValidateAndRank([]RawMoment{}); len(got) != 0 {
		t.Errorf("expected empty result for empty input, got %d", len(got))
	}
}
