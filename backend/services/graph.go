package services

import "sort"

type edgePair struct {
	source uint
	target uint
}

// topoSort orders nodes with Kahn's algorithm, smallest id first among
// ready nodes. ok is false when the edges contain a cycle.
func topoSort(nodeIDs []uint, edges []edgePair) (order []uint, ok bool) {
	indegree := make(map[uint]int, len(nodeIDs))
	for _, id := range nodeIDs {
		indegree[id] = 0
	}
	next := make(map[uint][]uint, len(nodeIDs))
	for _, e := range edges {
		next[e.source] = append(next[e.source], e.target)
		indegree[e.target]++
	}

	var ready []uint
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	order = make([]uint, 0, len(indegree))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, t := range next[id] {
			indegree[t]--
			if indegree[t] == 0 {
				ready = insertSorted(ready, t)
			}
		}
	}
	return order, len(order) == len(indegree)
}

func insertSorted(s []uint, v uint) []uint {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// validateEdges checks that every edge joins two distinct known nodes, has
// no duplicate and that the whole set is acyclic.
func validateEdges(nodeIDs []uint, edges []edgePair) error {
	known := make(map[uint]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		known[id] = struct{}{}
	}
	seen := make(map[edgePair]struct{}, len(edges))
	for _, e := range edges {
		if e.source == e.target {
			return ErrInvalidEdge
		}
		if _, ok := known[e.source]; !ok {
			return ErrInvalidEdge
		}
		if _, ok := known[e.target]; !ok {
			return ErrInvalidEdge
		}
		if _, dup := seen[e]; dup {
			return ErrConflict
		}
		seen[e] = struct{}{}
	}
	if _, ok := topoSort(nodeIDs, edges); !ok {
		return ErrCycle
	}
	return nil
}
