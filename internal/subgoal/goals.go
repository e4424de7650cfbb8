package subgoal

import (
	"sync"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
	"github.com/notpogix/twitch-subgoal-overlay/internal/metrics"
)

// DefaultGoal is returned for channels that never had a goal set.
const DefaultGoal = 50

// GoalTracker holds per-channel subscriber goals. State is memory-only
// and resets to DefaultGoal on restart.
type GoalTracker struct {
	mu    sync.RWMutex
	goals map[string]int
}

func NewGoalTracker() *GoalTracker {
	return &GoalTracker{
		goals: make(map[string]int),
	}
}

// SetGoal stores the goal for a channel, overwriting any previous value.
// Goals must be positive.
func (g *GoalTracker) SetGoal(channelID string, goal int) error {
	if goal <= 0 {
		return domain.ErrInvalidGoal
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.goals[channelID] = goal
	metrics.GoalUpdatesTotal.Inc()
	return nil
}

// GetGoal returns the goal for a channel, or DefaultGoal if none was set.
func (g *GoalTracker) GetGoal(channelID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	goal, ok := g.goals[channelID]
	if !ok {
		return DefaultGoal
	}
	return goal
}
