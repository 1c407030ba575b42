// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"container/heap"
)

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// adjacency indexes g by insertion position. outgoing[i] lists the nodes that
// depend on node i; indeg[i] counts the distinct dependencies of node i.
func adjacency(g *Graph) (outgoing [][]int, indeg []int) {
	index := make(map[Key]int, g.Len())
	for i, k := range g.keys {
		index[k] = i
	}

	outgoing = make([][]int, len(g.keys))
	indeg = make([]int, len(g.keys))
	for i, k := range g.keys {
		seen := map[int]struct{}{}
		for _, ref := range Refs(g.specs[k]) {
			j, ok := index[ref]
			if !ok {
				continue
			}
			if _, dup := seen[j]; dup {
				continue
			}
			seen[j] = struct{}{}
			outgoing[j] = append(outgoing[j], i)
			indeg[i]++
		}
	}
	return outgoing, indeg
}

// TopoOrder returns the keys of g such that every node follows all of the
// nodes it references. Among ready nodes the earliest inserted goes first, so
// the order is stable across runs. A cycle fails with ErrCyclicGraph.
func TopoOrder(g *Graph) ([]Key, error) {
	outgoing, indeg := adjacency(g)

	ready := &intMinHeap{}
	heap.Init(ready)
	for i := range indeg {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]Key, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, g.keys[n])
		for _, m := range outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}

	if len(out) != len(g.keys) {
		return nil, cycleError(findCycle(g, outgoing))
	}
	return out, nil
}

// findCycle walks g depth first in insertion order and returns one cycle as
// a closed path, e.g. a -> b -> a.
func findCycle(g *Graph, outgoing [][]int) []Key {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.keys))
	parent := make([]int, len(g.keys))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range outgoing[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.keys {
		if color[i] == white && dfs(i) {
			break
		}
	}

	// Read left to right, each node depends on the next.
	out := make([]Key, 0, len(cycle))
	for _, idx := range cycle {
		out = append(out, g.keys[idx])
	}
	return out
}
