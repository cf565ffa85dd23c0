// Package jobsindex implements model.JobsIndex: a neighbor-ordering
// oracle used by ruin operators (spec.md §4.9) and the tour-compactness
// objective to rank jobs by travel proximity. Built once per profile at
// problem-construction time and queried read-only afterward.
package jobsindex

import (
	"container/heap"

	"github.com/nexaroute/vrpcore/model"
)

// Index precomputes, for every (profile, job) pair, the full
// nearest-to-farthest neighbor ordering by distance from the job's
// first place. Queries are O(1) slice lookups; the heap-based ranking
// pass that builds them runs once at construction, mirroring the
// donor's Dijkstra min-heap ordering but over a complete graph rather
// than relaxing edges.
type Index struct {
	// neighbors[profile][job] is the precomputed nearest-to-farthest
	// job id ordering (excluding the job itself).
	neighbors map[model.ProfileIndex]map[model.JobID][]model.JobID
}

// Build constructs an Index over every job in jobs for every profile in
// profiles, using cost.Distance as the ranking metric.
func Build(cost model.TransportCost, jobs []model.Job, profiles []model.ProfileIndex) *Index {
	idx := &Index{neighbors: make(map[model.ProfileIndex]map[model.JobID][]model.JobID, len(profiles))}

	locationOf := make(map[model.JobID]model.Location, len(jobs))
	for _, j := range jobs {
		singles := j.Singles()
		if len(singles) == 0 || len(singles[0].Places) == 0 {
			continue
		}
		locationOf[j.ID()] = singles[0].Places[0].Location
	}

	for _, profile := range profiles {
		perJob := make(map[model.JobID][]model.JobID, len(jobs))
		for _, j := range jobs {
			from, ok := locationOf[j.ID()]
			if !ok {
				continue
			}
			perJob[j.ID()] = rankByDistance(cost, profile, j.ID(), from, jobs, locationOf)
		}
		idx.neighbors[profile] = perJob
	}

	return idx
}

// rankByDistance orders every other job by ascending distance from
// "from" using a min-heap, lazily, the same pattern the donor's
// dijkstra.runner uses for its priority queue.
func rankByDistance(cost model.TransportCost, profile model.ProfileIndex, self model.JobID, from model.Location, jobs []model.Job, locationOf map[model.JobID]model.Location) []model.JobID {
	pq := make(distancePQ, 0, len(jobs))
	heap.Init(&pq)
	for _, j := range jobs {
		if j.ID() == self {
			continue
		}
		loc, ok := locationOf[j.ID()]
		if !ok {
			continue
		}
		heap.Push(&pq, &distanceItem{id: j.ID(), dist: cost.Distance(profile, from, loc)})
	}

	out := make([]model.JobID, 0, pq.Len())
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*distanceItem)
		out = append(out, item.id)
	}
	return out
}

// Neighbors implements model.JobsIndex.
func (idx *Index) Neighbors(profile model.ProfileIndex, job model.JobID, limit int) []model.JobID {
	perJob, ok := idx.neighbors[profile]
	if !ok {
		return nil
	}
	ring := perJob[job]
	if limit <= 0 || limit >= len(ring) {
		out := make([]model.JobID, len(ring))
		copy(out, ring)
		return out
	}
	out := make([]model.JobID, limit)
	copy(out, ring[:limit])
	return out
}

type distanceItem struct {
	id   model.JobID
	dist float64
}

type distancePQ []*distanceItem

func (pq distancePQ) Len() int            { return len(pq) }
func (pq distancePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq distancePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *distancePQ) Push(x interface{}) { *pq = append(*pq, x.(*distanceItem)) }
func (pq *distancePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
