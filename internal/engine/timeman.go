package engine

import "time"

// TimeManager tracks a wall-clock search budget for iterative deepening.
// The stop rule is deliberately simple, not a UCI-style allocator: stop once
// elapsed time reaches the budget, or once so little budget remains that
// another iteration - assumed to cost at least as much as the one that just
// finished - probably cannot complete.
type TimeManager struct {
	budget    time.Duration
	startTime time.Time
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Start begins timing a search against the given wall-clock budget.
func (tm *TimeManager) Start(budget time.Duration) {
	tm.budget = budget
	tm.startTime = time.Now()
}

// Elapsed returns the time elapsed since Start.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Budget returns the total time budget for this search.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// ShouldStop reports whether the search has used its full budget.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.budget
}

// ShouldStartNextIteration reports whether another iterative-deepening
// iteration is worth starting, given how long the last completed iteration
// took: only if the remaining budget is at least three times that cost.
func (tm *TimeManager) ShouldStartNextIteration(lastIterationTime time.Duration) bool {
	remaining := tm.budget - tm.Elapsed()
	if remaining <= 0 {
		return false
	}
	if lastIterationTime <= 0 {
		return true
	}
	return remaining >= 3*lastIterationTime
}
