// Package nsga2 implements the two shared primitives spec.md §4.11
// calls out as cross-cutting: Deb's non-dominated sort and NSGA-II
// crowding distance. Both population.Elitism and population.Rosomaxa
// use these to break ties within a dominance front instead of each
// re-deriving the same ranking.
package nsga2

import (
	"math"
	"sort"
)

// Ranked is anything nsga2 can sort: a fitness vector plus an opaque
// payload the caller gets back unchanged, so nsga2 stays independent of
// solution.Solution.
type Ranked[T any] struct {
	Fitness []float64
	Value   T
}

// dominates reports whether a is no worse than b on every component and
// strictly better on at least one, the same relation goal.Goal.Dominates
// computes over a *solution.Solution pair.
func dominates(a, b []float64) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	strictlyBetter := false
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			strictlyBetter = true
		case a[i] > b[i]:
			return false
		}
	}
	return strictlyBetter
}

// Sort partitions items into successive non-dominated fronts (Deb et
// al.'s fast non-dominated sort): front 0 is dominated by nothing,
// front 1 is dominated only by members of front 0, and so on.
func Sort[T any](items []Ranked[T]) [][]Ranked[T] {
	n := len(items)
	dominatedBy := make([][]int, n)
	dominationCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(items[i].Fitness, items[j].Fitness) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if dominates(items[j].Fitness, items[i].Fitness) {
				dominationCount[i]++
			}
		}
	}

	var fronts [][]Ranked[T]
	remaining := dominationCount
	current := make([]int, 0)
	for i := 0; i < n; i++ {
		if remaining[i] == 0 {
			current = append(current, i)
		}
	}
	seen := make([]bool, n)

	for len(current) > 0 {
		front := make([]Ranked[T], 0, len(current))
		var next []int
		for _, i := range current {
			seen[i] = true
			front = append(front, items[i])
			for _, j := range dominatedBy[i] {
				if seen[j] {
					continue
				}
				remaining[j]--
				if remaining[j] == 0 {
					next = append(next, j)
				}
			}
		}
		fronts = append(fronts, front)
		current = next
	}
	return fronts
}

// CrowdingDistance scores each member of a single front by how isolated
// it is in objective space: the sum, over every objective, of the
// normalized distance between its two nearest neighbours along that
// objective. Boundary solutions (min or max on any objective) get
// +Inf so they are never discarded first.
func CrowdingDistance[T any](front []Ranked[T]) []float64 {
	n := len(front)
	distances := make([]float64, n)
	if n == 0 {
		return distances
	}
	if n <= 2 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		return distances
	}

	numObjectives := len(front[0].Fitness)
	for m := 0; m < numObjectives; m++ {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return front[order[a]].Fitness[m] < front[order[b]].Fitness[m]
		})

		lo := front[order[0]].Fitness[m]
		hi := front[order[n-1]].Fitness[m]
		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < n-1; k++ {
			prev := front[order[k-1]].Fitness[m]
			next := front[order[k+1]].Fitness[m]
			distances[order[k]] += (next - prev) / (hi - lo)
		}
	}
	return distances
}
