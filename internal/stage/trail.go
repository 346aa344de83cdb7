package stage

import (
	"sync"
)

// Trail collects the decision trail of one stage invocation: ordered
// reasoning steps, named decisions, and generative-text usage. Safe for
// concurrent use — fan-out stages append from multiple goroutines.
type Trail struct {
	mu sync.Mutex

	reasoning []string
	decisions map[string]any

	llmCalls         int
	promptTokens     int
	completionTokens int
}

// NewTrail returns an empty trail. Execute creates one per invocation;
// collaborator tests construct their own.
func NewTrail() *Trail {
	return &Trail{decisions: make(map[string]any)}
}

// Reason appends one reasoning step.
func (t *Trail) Reason(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reasoning = append(t.reasoning, step)
}

// Decide appends a reasoning step and records the decision made at it.
func (t *Trail) Decide(step string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reasoning = append(t.reasoning, step)
	t.decisions[step] = value
}

// AddUsage accrues generative-text usage for cost accounting.
func (t *Trail) AddUsage(calls, promptTokens, completionTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.llmCalls += calls
	t.promptTokens += promptTokens
	t.completionTokens += completionTokens
}

// usage returns the accrued counters and the derived cost at the given
// per-1K-token rates.
func (t *Trail) usage(inPer1K, outPer1K float64) (calls, tokens int, costUSD float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cost := float64(t.promptTokens)/1000*inPer1K + float64(t.completionTokens)/1000*outPer1K
	return t.llmCalls, t.promptTokens + t.completionTokens, cost
}

// steps returns copies of the reasoning list and decision map.
func (t *Trail) steps() ([]string, map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	reasoning := make([]string, len(t.reasoning))
	copy(reasoning, t.reasoning)
	decisions := make(map[string]any, len(t.decisions))
	for k, v := range t.decisions {
		decisions[k] = v
	}
	return reasoning, decisions
}
