// Package rosomaxa implements a growing self-organizing map (GSOM) over
// solution fitness vectors (spec.md §4.11 "Rosomaxa"): each node is a
// neuron with a weight vector in fitness space plus a small bounded
// sub-population of the solutions that have mapped to it. Training
// nudges the best-matching node (and its neighbours) toward the
// incoming solution's fitness vector; nodes whose accumulated error
// crosses a threshold trigger network growth.
//
// The grid itself — width/height, 4-connected neighbour offsets, and
// the boundary/interior distinction growth and contraction both need —
// follows the donor gridgraph package's 2-D grid/connectivity idiom,
// adapted from a static land/water grid to one that grows over time.
package rosomaxa

import "math"

// neighborOffsets4 mirrors gridgraph.Conn4's N/E/S/W offsets.
var neighborOffsets4 = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Node is one neuron: a weight vector in fitness space, an accumulated
// error used to decide when to grow, and a small bounded sub-population
// of solution-shaped payloads that have mapped here (kept generic over
// T so this package never imports solution.Solution).
type Node[T any] struct {
	X, Y    int
	Weights []float64
	Error   float64

	members   []T
	fitnesses [][]float64
	capacity  int
	better    func(a, b []float64) bool // reports whether a should be kept over b
}

// Members returns the node's current bounded sub-population in the
// order it was absorbed; it is not sorted by fitness.
func (n *Node[T]) Members() []T { return n.members }

// absorb inserts (fitness, value) into the node's bounded
// sub-population, evicting the worst member under better() on overflow.
func (n *Node[T]) absorb(fitness []float64, value T, better func(a, b []float64) bool) {
	n.members = append(n.members, value)
	n.fitnesses = append(n.fitnesses, fitness)
	if len(n.members) <= n.capacity {
		return
	}
	worst := 0
	for i := 1; i < len(n.fitnesses); i++ {
		if better(n.fitnesses[worst], n.fitnesses[i]) {
			worst = i
		}
	}
	n.members = append(n.members[:worst], n.members[worst+1:]...)
	n.fitnesses = append(n.fitnesses[:worst], n.fitnesses[worst+1:]...)
}

// Network is the growing 2-D grid of nodes.
type Network[T any] struct {
	Width, Height int
	nodes         map[[2]int]*Node[T]

	dims          int
	learningRate  float64
	growThreshold float64
	nodeCapacity  int
	better        func(a, b []float64) bool
}

// Option configures a Network at construction.
type Option[T any] func(*Network[T])

// WithLearningRate sets the SOM update step size (default 0.3).
func WithLearningRate[T any](rate float64) Option[T] {
	return func(n *Network[T]) { n.learningRate = rate }
}

// WithGrowThreshold sets the accumulated-error level that triggers a
// boundary node to spawn a new row/column (default 10.0).
func WithGrowThreshold[T any](threshold float64) Option[T] {
	return func(n *Network[T]) { n.growThreshold = threshold }
}

// WithNodeCapacity sets each node's bounded sub-population size
// (default 3).
func WithNodeCapacity[T any](capacity int) Option[T] {
	return func(n *Network[T]) { n.nodeCapacity = capacity }
}

// New builds a 2x2 seed network over fitness vectors of length dims.
// better(a, b) must report whether fitness vector a should be preferred
// over b (the same polarity as goal.Goal.Compare(a, b) < 0).
func New[T any](dims int, better func(a, b []float64) bool, opts ...Option[T]) *Network[T] {
	n := &Network[T]{
		Width: 2, Height: 2,
		nodes:         make(map[[2]int]*Node[T]),
		dims:          dims,
		learningRate:  0.3,
		growThreshold: 10.0,
		nodeCapacity:  3,
		better:        better,
	}
	for _, opt := range opts {
		opt(n)
	}
	for y := 0; y < n.Height; y++ {
		for x := 0; x < n.Width; x++ {
			n.nodes[[2]int{x, y}] = &Node[T]{X: x, Y: y, Weights: make([]float64, dims), capacity: n.nodeCapacity, better: better}
		}
	}
	return n
}

// Size returns the current node count.
func (n *Network[T]) Size() int { return len(n.nodes) }

// Nodes returns every node in the network, in no particular order.
func (n *Network[T]) Nodes() []*Node[T] {
	out := make([]*Node[T], 0, len(n.nodes))
	for _, node := range n.nodes {
		out = append(out, node)
	}
	return out
}

// bmu finds the node whose weight vector is nearest to fitness
// (Euclidean distance), the "best matching unit" in SOM terminology.
func (n *Network[T]) bmu(fitness []float64) *Node[T] {
	var best *Node[T]
	bestDist := math.Inf(1)
	for _, node := range n.nodes {
		d := squaredDistance(node.Weights, fitness)
		if d < bestDist {
			bestDist = d
			best = node
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Train maps value (with its fitness vector) onto its best-matching
// node, nudges that node and its 4-connected neighbours toward fitness,
// accumulates the mapping error at the BMU, inserts value into the
// BMU's sub-population, and grows the network if the BMU's error
// crosses the configured threshold.
func (n *Network[T]) Train(fitness []float64, value T) *Node[T] {
	return n.train(fitness, value, true)
}

func (n *Network[T]) train(fitness []float64, value T, allowGrow bool) *Node[T] {
	best := n.bmu(fitness)
	dist := math.Sqrt(squaredDistance(best.Weights, fitness))
	best.Error += dist

	adjust(best.Weights, fitness, n.learningRate)
	for _, off := range neighborOffsets4 {
		if nb, ok := n.nodes[[2]int{best.X + off[0], best.Y + off[1]}]; ok {
			adjust(nb.Weights, fitness, n.learningRate*0.5)
		}
	}

	best.absorb(fitness, value, n.better)

	if allowGrow && best.Error > n.growThreshold && n.isBoundary(best) {
		n.grow(best)
		best.Error = 0
	}
	return best
}

func adjust(weights, target []float64, rate float64) {
	for i := range weights {
		if i >= len(target) {
			break
		}
		weights[i] += (target[i] - weights[i]) * rate
	}
}

// isBoundary reports whether node sits on the grid's edge, the only
// place GSOM growth is allowed to add a new row or column.
func (n *Network[T]) isBoundary(node *Node[T]) bool {
	return node.X == 0 || node.Y == 0 || node.X == n.Width-1 || node.Y == n.Height-1
}

// grow adds one new row or column adjacent to the boundary node that
// triggered growth, on whichever axis it sits on the edge of, seeding
// new nodes' weights from their nearest existing neighbour.
func (n *Network[T]) grow(node *Node[T]) {
	switch {
	case node.X == 0:
		n.insertColumn(-1)
	case node.X == n.Width-1:
		n.insertColumn(n.Width)
	case node.Y == 0:
		n.insertRow(-1)
	default:
		n.insertRow(n.Height)
	}
}

// insertColumn adds a new column at atX, or before the grid (shifting
// every existing column right) when atX is negative. New nodes' weights
// seed from whichever existing column ends up adjacent to them.
func (n *Network[T]) insertColumn(atX int) {
	prepend := atX < 0
	if prepend {
		shifted := make(map[[2]int]*Node[T], len(n.nodes))
		for _, v := range n.nodes {
			v.X++
			shifted[[2]int{v.X, v.Y}] = v
		}
		n.nodes = shifted
		atX = 0
	}
	neighborX := atX - 1
	if prepend {
		neighborX = atX + 1
	}
	for y := 0; y < n.Height; y++ {
		w := make([]float64, n.dims)
		if ref, ok := n.nodes[[2]int{neighborX, y}]; ok {
			copy(w, ref.Weights)
		}
		n.nodes[[2]int{atX, y}] = &Node[T]{X: atX, Y: y, Weights: w, capacity: n.nodeCapacity, better: n.better}
	}
	n.Width++
}

// insertRow mirrors insertColumn along the Y axis.
func (n *Network[T]) insertRow(atY int) {
	prepend := atY < 0
	if prepend {
		shifted := make(map[[2]int]*Node[T], len(n.nodes))
		for _, v := range n.nodes {
			v.Y++
			shifted[[2]int{v.X, v.Y}] = v
		}
		n.nodes = shifted
		atY = 0
	}
	neighborY := atY - 1
	if prepend {
		neighborY = atY + 1
	}
	for x := 0; x < n.Width; x++ {
		w := make([]float64, n.dims)
		if ref, ok := n.nodes[[2]int{x, neighborY}]; ok {
			copy(w, ref.Weights)
		}
		n.nodes[[2]int{x, atY}] = &Node[T]{X: x, Y: atY, Weights: w, capacity: n.nodeCapacity, better: n.better}
	}
	n.Height++
}

// Contract decimates the network, the companion operation to grow:
// every decimStep-th row and every decimStep-th column is removed, the
// remaining coordinates are renumbered to stay contiguous (keeping the
// grid connected), and every member that mapped to a removed node is
// retrained back into the surviving network with growth disabled, so
// the decimation itself never re-triggers a grow call. Mirrors the
// donor gsom::contraction's decimate-then-retrain shape, simplified
// from its centered-origin renumbering to this package's 0-anchored
// grid. A no-op once the grid is already too small to decimate, or if
// decimStep would remove every row or every column outright.
func (n *Network[T]) Contract(decimStep int) {
	if decimStep < 2 || n.Width <= 2 || n.Height <= 2 {
		return
	}

	keepX := keptIndices(n.Width, decimStep)
	keepY := keptIndices(n.Height, decimStep)
	if len(keepX) == 0 || len(keepY) == 0 {
		return
	}

	newXIndex := make(map[int]int, len(keepX))
	for i, x := range keepX {
		newXIndex[x] = i
	}
	newYIndex := make(map[int]int, len(keepY))
	for i, y := range keepY {
		newYIndex[y] = i
	}

	type removedMember struct {
		fitness []float64
		value   T
	}
	var removed []removedMember

	next := make(map[[2]int]*Node[T], len(keepX)*len(keepY))
	for coord, node := range n.nodes {
		nx, xok := newXIndex[coord[0]]
		ny, yok := newYIndex[coord[1]]
		if !xok || !yok {
			for i, m := range node.members {
				removed = append(removed, removedMember{fitness: node.fitnesses[i], value: m})
			}
			continue
		}
		node.X, node.Y = nx, ny
		next[[2]int{nx, ny}] = node
	}

	n.nodes = next
	n.Width = len(keepX)
	n.Height = len(keepY)

	for _, m := range removed {
		n.train(m.fitness, m.value, false)
	}
}

// keptIndices returns every index in [0, size) not divisible by step,
// the rows/columns that survive one decimation pass.
func keptIndices(size, step int) []int {
	out := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if i%step != 0 {
			out = append(out, i)
		}
	}
	return out
}

// BestNode returns the node holding the single best member under
// better(), used when SelectionPhase is Exploitation.
func (n *Network[T]) BestNode() *Node[T] {
	var best *Node[T]
	var bestFitness []float64
	for _, node := range n.nodes {
		for _, f := range node.fitnesses {
			if bestFitness == nil || n.better(f, bestFitness) {
				bestFitness = f
				best = node
			}
		}
	}
	return best
}
