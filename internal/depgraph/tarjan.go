package depgraph

import "sort"

// tarjanOrder runs Tarjan's strongly-connected-components algorithm over g
// and returns the evaluation order (file ids, dependencies before
// dependents) plus the list of non-trivial SCCs (size > 1), each of which
// is a dependency cycle (§4.1: "any SCC of size > 1 is a cycle error").
//
// Tarjan's algorithm emits SCCs in reverse topological order of the edge
// relation: if there is an edge u -> v between distinct SCCs, the SCC
// containing v completes (and is emitted) before the one containing u.
// Since an edge here means "u imports v", that is exactly dependency-
// before-dependent order, so no separate reversal step is needed.
func tarjanOrder(g *Graph) ([]int, [][]int) {
	t := &tarjan{
		g:       g,
		index:   make(map[int]int),
		lowlink: make(map[int]int),
		onStack: make(map[int]bool),
	}

	neighbors := make(map[int][]int, g.NumFiles)
	for from, tos := range g.adj {
		seen := make(map[int]bool)
		var uniq []int
		for _, to := range tos {
			if !seen[to] {
				seen[to] = true
				uniq = append(uniq, to)
			}
		}
		sort.Ints(uniq)
		neighbors[from] = uniq
	}
	t.neighbors = neighbors

	for _, id := range g.sortedIDs() {
		if _, ok := t.index[id]; !ok {
			t.strongConnect(id)
		}
	}

	var order []int
	var cycles [][]int
	for _, scc := range t.sccs {
		order = append(order, scc...)
		if len(scc) > 1 {
			cycles = append(cycles, scc)
		} else if len(scc) == 1 {
			// A single-node SCC with a self-loop edge is also a cycle, but
			// a plain self-import is reported separately as a warning
			// (rule 7), not a dependency_cycle error, so self-loops are
			// deliberately not flagged here.
			_ = scc
		}
	}

	return order, cycles
}

type tarjan struct {
	g         *Graph
	neighbors map[int][]int
	counter   int
	index     map[int]int
	lowlink   map[int]int
	onStack   map[int]bool
	stack     []int
	sccs      [][]int
}

func (t *tarjan) strongConnect(v int) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.neighbors[v] {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []int
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
