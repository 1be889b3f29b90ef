package interview

import "testing"

func TestDefaultFlowTotal(t *testing.T) {
	flow := DefaultFlow()
	if got := flow.TotalQuestions(); got != 19 {
		t.Errorf("Expected 19 total questions, got %d", got)
	}
}

func TestPhaseForBoundaries(t *testing.T) {
	flow := DefaultFlow()

	tests := []struct {
		count int
		phase string
	}{
		{0, "greeting"},
		{1, "greeting"},
		{2, "easy"},
		{8, "easy"},
		{9, "moderate"},
		{12, "moderate"},
		{13, "scenario"},
		{14, "scenario"},
		{15, "hard"},
		{17, "hard"},
		{18, "expert"},
		{19, "expert"},
		{20, PhaseCompleted},
		{100, PhaseCompleted},
	}

	for _, tt := range tests {
		if got := flow.PhaseFor(tt.count); got != tt.phase {
			t.Errorf("PhaseFor(%d): expected %q, got %q", tt.count, tt.phase, got)
		}
	}
}

func TestPhaseForNeverRegresses(t *testing.T) {
	flow := DefaultFlow()
	order := map[string]int{
		"greeting": 0, "easy": 1, "moderate": 2,
		"scenario": 3, "hard": 4, "expert": 5, PhaseCompleted: 6,
	}

	prev := -1
	for count := 0; count <= 25; count++ {
		rank, ok := order[flow.PhaseFor(count)]
		if !ok {
			t.Fatalf("PhaseFor(%d) returned unknown phase %q", count, flow.PhaseFor(count))
		}
		if rank < prev {
			t.Errorf("Phase regressed at count %d", count)
		}
		prev = rank
	}
}

func TestNewFlowCustomQuotas(t *testing.T) {
	flow := NewFlow([]PhaseQuota{
		{Name: "warmup", Count: 2},
		{Name: "main", Count: 3},
	})

	if got := flow.TotalQuestions(); got != 5 {
		t.Errorf("Expected 5 total questions, got %d", got)
	}
	if got := flow.PhaseFor(2); got != "warmup" {
		t.Errorf("Expected warmup at count 2, got %q", got)
	}
	if got := flow.PhaseFor(3); got != "main" {
		t.Errorf("Expected main at count 3, got %q", got)
	}
	if got := flow.PhaseFor(6); got != PhaseCompleted {
		t.Errorf("Expected completed at count 6, got %q", got)
	}
}
