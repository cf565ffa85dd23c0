package hyper

import (
	"time"

	"github.com/nexaroute/vrpcore/goal"
	"github.com/nexaroute/vrpcore/insertion"
	"github.com/nexaroute/vrpcore/population"
	"github.com/nexaroute/vrpcore/solution"
)

// arm is one bandit action's running state: a bounded window of
// rewards (improvement of the primary objective per wall-clock second),
// from which the median estimate is taken (spec.md §4.10 "State:
// (median-estimate per action, selection-phase)").
type arm struct {
	pair    Pair
	rewards []float64
}

func (a *arm) record(reward float64, window int) {
	a.rewards = append(a.rewards, reward)
	if len(a.rewards) > window {
		a.rewards = a.rewards[len(a.rewards)-window:]
	}
}

func (a *arm) median() float64 {
	if len(a.rewards) == 0 {
		return 0
	}
	sorted := append([]float64(nil), a.rewards...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// DynamicSelective is a multi-armed bandit over (ruin, recreate) pairs
// (spec.md §4.10 "Dynamic Selective"). Each pair's action probability
// is renormalized every generation from its median reward estimate;
// a slow-search detector widens exploration when every arm's recent
// median reward has collapsed toward zero, rather than letting the
// bandit exploit a local optimum it can no longer escape.
type DynamicSelective struct {
	Pairs        []Pair
	Evaluator    *insertion.Evaluator
	Goal         *goal.Goal
	RemovalLimit int
	Rand         RNG

	// RewardWindow bounds how many recent rewards each arm's median is
	// computed over (default 20).
	RewardWindow int
	// StallThreshold is the median-reward floor below which the slow-
	// search detector widens exploration (default 1e-9).
	StallThreshold float64
	// ExploreFloor is the minimum selection weight every arm keeps even
	// when its median reward is at or below StallThreshold, so a cold
	// or temporarily unlucky arm is never starved out entirely.
	ExploreFloor float64

	arms []*arm
}

// NewDynamicSelective builds a bandit over pairs with sane defaults.
func NewDynamicSelective(g *goal.Goal, ev *insertion.Evaluator, removalLimit int, rng RNG, pairs []Pair) *DynamicSelective {
	h := &DynamicSelective{
		Pairs:          pairs,
		Evaluator:      ev,
		Goal:           g,
		RemovalLimit:   removalLimit,
		Rand:           rng,
		RewardWindow:   20,
		StallThreshold: 1e-9,
		ExploreFloor:   0.05,
	}
	h.arms = make([]*arm, len(pairs))
	for i, p := range pairs {
		h.arms[i] = &arm{pair: p}
	}
	return h
}

// Search implements Heuristic.
func (h *DynamicSelective) Search(sc SearchContext, parents []*solution.Solution) []*solution.Solution {
	children := make([]*solution.Solution, 0, len(parents))
	weights := h.weights(sc.Phase)
	for _, parent := range parents {
		idx := h.chooseIndex(weights)
		a := h.arms[idx]

		start := time.Now()
		parentFitness := h.Goal.FitnessVector(parent)
		child := applyPair(sc.Ctx, a.pair, parent, h.Evaluator, h.RemovalLimit)
		elapsed := time.Since(start)
		childFitness := h.Goal.FitnessVector(child)

		a.record(reward(parentFitness, childFitness, elapsed), h.RewardWindow)
		children = append(children, child)
	}
	return children
}

// reward is the improvement of the primary (first) objective per
// wall-clock second; a longer, unproductive run scores no better than
// a quick one that made no progress.
func reward(parentFitness, childFitness []float64, elapsed time.Duration) float64 {
	if len(parentFitness) == 0 || len(childFitness) == 0 {
		return 0
	}
	improvement := parentFitness[0] - childFitness[0]
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	return improvement / seconds
}

// weights renormalizes each arm's selection weight from its median
// reward every generation (spec.md "Action probabilities are
// renormalized each generation"). During Exploitation, arms with a
// negative or stalled median are pinned to ExploreFloor so the bandit
// still occasionally retries them; during Exploration every arm gets
// at least ExploreFloor regardless of its median, the "slower"
// strategy the slow-search detector switches to when the whole bandit
// has stalled.
func (h *DynamicSelective) weights(phase population.Phase) []float64 {
	weights := make([]float64, len(h.arms))
	stalled := h.isStalled()
	for i, a := range h.arms {
		m := a.median()
		switch {
		case stalled || phase == population.Exploration:
			weights[i] = h.ExploreFloor + positive(m)
		case m > h.StallThreshold:
			weights[i] = m
		default:
			weights[i] = h.ExploreFloor
		}
	}
	return weights
}

// isStalled reports whether every arm's median reward has collapsed to
// (or below) StallThreshold, the slow-search detector's trigger for
// widening exploration (spec.md "a slow-search detector switches the
// agent to a slower exploration strategy").
func (h *DynamicSelective) isStalled() bool {
	for _, a := range h.arms {
		if a.median() > h.StallThreshold {
			return false
		}
	}
	return len(h.arms) > 0
}

func positive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func (h *DynamicSelective) chooseIndex(weights []float64) int {
	if len(h.arms) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return h.Rand.IntN(len(h.arms))
	}
	target := h.Rand.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	return len(h.arms) - 1
}
