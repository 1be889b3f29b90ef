// Package interview implements the scripted interview: phase
// progression derived from the question counter, and the per-turn
// orchestration between the store and the completion gateway.
package interview

// PhaseCompleted is the label reported once the counter passes the
// total question budget.
const PhaseCompleted = "completed"

// PhaseQuota is one named stage of the interview and its question count.
type PhaseQuota struct {
	Name  string
	Count int
}

// Flow is the immutable phase ladder. Phase is a pure function of the
// cumulative question count: the counter falls into the first phase
// whose cumulative boundary it does not exceed.
type Flow struct {
	quotas     []PhaseQuota
	boundaries []int
	total      int
}

// NewFlow builds a flow from ordered per-phase question counts.
func NewFlow(quotas []PhaseQuota) *Flow {
	f := &Flow{quotas: quotas}
	cum := 0
	for _, q := range quotas {
		cum += q.Count
		f.boundaries = append(f.boundaries, cum)
	}
	f.total = cum
	return f
}

// DefaultFlow is the production interview script: 19 questions across
// six phases.
func DefaultFlow() *Flow {
	return NewFlow([]PhaseQuota{
		{Name: "greeting", Count: 1},
		{Name: "easy", Count: 7},
		{Name: "moderate", Count: 4},
		{Name: "scenario", Count: 2},
		{Name: "hard", Count: 3},
		{Name: "expert", Count: 2},
	})
}

// PhaseFor maps a question count to its phase label. Boundaries are
// inclusive: count 1 is still "greeting", count 8 is still "easy", and
// anything past the total is "completed".
func (f *Flow) PhaseFor(questionCount int) string {
	for i, boundary := range f.boundaries {
		if questionCount <= boundary {
			return f.quotas[i].Name
		}
	}
	return PhaseCompleted
}

// TotalQuestions is the interview-completion threshold: reaching or
// exceeding it on a turn completes the interview.
func (f *Flow) TotalQuestions() int {
	return f.total
}
