package reinforcement

import (
	"math"

	. "gridplan/grid_world"
)

// worstValue seeds the running maximum of an action search.
const worstValue = -1e18

// Candidate is the one-step lookahead of a single action from a state.
type Candidate struct {
	Action Action
	Next   State
	// Value is the raw lookahead: reward + gamma*V(next), with no successor term on terminal moves.
	Value float64
	// Obstacle reports whether Next is an obstacle cell.
	Obstacle bool
	// DistBefore and DistAfter are the Manhattan distances to the goal from the state and from Next.
	DistBefore, DistAfter int
}

func (c *Candidate) closer() bool {
	return c.DistAfter < c.DistBefore
}

func (c *Candidate) farther() bool {
	return c.DistAfter > c.DistBefore
}

// ActionSelector picks the greedy action among the lookahead candidates of one state.
// The incumbent is returned if no candidate beats the initial running maximum.
// Both solvers want to avoid obstacles and make progress toward the goal, but they
// express that preference through different selectors, which can pick differently.
type ActionSelector interface {
	Select(incumbent Action, candidates []Candidate) Candidate
}

// LexicographicTieBreak is the value iteration selector. A candidate wins outright if its value
// exceeds the running best by more than Eps. Within Eps, candidates are ranked on the tuple
// (avoids obstacle, moves closer to goal) and a strictly better tuple replaces the incumbent,
// carrying its own value even if that value is slightly lower.
type LexicographicTieBreak struct {
	Eps float64
}

// DefaultTieBreak is the selector used by value iteration.
var DefaultTieBreak = LexicographicTieBreak{Eps: 1e-9}

type tieKey struct {
	avoidsObstacle, closer bool
}

// greater is the lexicographic tuple order over (false < true).
func (k tieKey) greater(other tieKey) bool {
	if k.avoidsObstacle != other.avoidsObstacle {
		return k.avoidsObstacle
	}
	return k.closer && !other.closer
}

func (tb LexicographicTieBreak) Select(incumbent Action, candidates []Candidate) (best Candidate) {
	best = Candidate{Action: incumbent, Value: worstValue}
	bestKey := tieKey{}
	for _, c := range candidates {
		key := tieKey{avoidsObstacle: !c.Obstacle, closer: c.closer()}
		if c.Value > best.Value+tb.Eps ||
			(math.Abs(c.Value-best.Value) <= tb.Eps && key.greater(bestKey)) {
			best = c
			bestKey = key
		}
	}
	return
}

// BiasedScore is the policy iteration selector. Rather than breaking ties, it perturbs each
// candidate's value by small additive biases and takes the strict maximum of the perturbed scores.
// A bias can therefore override a raw value gap smaller than itself.
type BiasedScore struct {
	CloserBias   float64
	FartherBias  float64
	ObstacleBias float64
}

// DefaultBiasedScore is the selector used by policy iteration.
var DefaultBiasedScore = BiasedScore{
	CloserBias:   0.001,
	FartherBias:  -0.001,
	ObstacleBias: -0.01,
}

// Score returns the biased value of a candidate.
func (bs BiasedScore) Score(c Candidate) (score float64) {
	score = c.Value
	switch {
	case c.closer():
		score += bs.CloserBias
	case c.farther():
		score += bs.FartherBias
	}
	if c.Obstacle {
		score += bs.ObstacleBias
	}
	return
}

func (bs BiasedScore) Select(incumbent Action, candidates []Candidate) (best Candidate) {
	best = Candidate{Action: incumbent, Value: worstValue}
	bestScore := worstValue
	for _, c := range candidates {
		if score := bs.Score(c); score > bestScore {
			bestScore = score
			best = c
		}
	}
	return
}

// lookahead fills buf with one candidate per action from s against the value arena v.
func lookahead(
	cfg *Config,
	table *stateTable,
	v []float64,
	s State,
	buf []Candidate,
) []Candidate {
	buf = buf[:0]
	distBefore := Manhattan(s, cfg.Goal)
	for _, a := range Actions {
		next, reward, done := Step(cfg, s, a)
		buf = append(buf, Candidate{
			Action:     a,
			Next:       next,
			Value:      backup(cfg, table, v, next, reward, done),
			Obstacle:   cfg.IsObstacle(next),
			DistBefore: distBefore,
			DistAfter:  Manhattan(next, cfg.Goal),
		})
	}
	return buf
}

// backup is the deterministic Bellman backup of a single transition.
func backup(
	cfg *Config,
	table *stateTable,
	v []float64,
	next State,
	reward float64,
	done bool,
) float64 {
	if done {
		return reward
	}
	return reward + cfg.Gamma*table.valueOf(v, next)
}
