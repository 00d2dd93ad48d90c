// Package graph models the depends-on relation between artifacts as an
// explicit directed graph, with iterative traversal that tolerates and
// reports cycles instead of recursing into them.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSelfEdge is returned when an edge would create a self-loop. An artifact
// depending on itself is always an error, distinct from a multi-node cycle.
var ErrSelfEdge = errors.New("self-referencing edge")

// ErrNodeNotFound is returned when an operation references an unknown node.
var ErrNodeNotFound = errors.New("node not found")

// Graph is a directed dependency graph over artifact ids. Unlike a strict
// DAG it accepts cycle-forming edges: cycles in user-authored documents are
// a reportable state that traversal must detect, not a construction failure.
type Graph struct {
	nodes map[string]bool
	// adjacency maps id → set of dependency ids (forward edges).
	adjacency map[string]map[string]bool
	// reverse maps id → set of dependent ids (backward edges).
	reverse map[string]map[string]bool
	// order remembers insertion order for deterministic edge iteration.
	order []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]bool),
		adjacency: make(map[string]map[string]bool),
		reverse:   make(map[string]map[string]bool),
	}
}

// AddNode registers an id. Adding an existing id is a no-op.
func (g *Graph) AddNode(id string) {
	if g.nodes[id] {
		return
	}
	g.nodes[id] = true
	g.adjacency[id] = make(map[string]bool)
	g.reverse[id] = make(map[string]bool)
	g.order = append(g.order, id)
}

// AddEdge records that from depends on to. Both nodes must exist.
// Self-loops are rejected; cycle-forming edges are accepted (see Graph doc).
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfEdge, from)
	}
	if !g.nodes[from] {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if !g.nodes[to] {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	g.adjacency[from][to] = true
	g.reverse[to][from] = true
	return nil
}

// Has reports whether the id is a known node.
func (g *Graph) Has(id string) bool {
	return g.nodes[id]
}

// Nodes returns all node ids, sorted alphabetically.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the transitive closure of ids the given node depends
// on, excluding the node itself, sorted alphabetically. The boolean reports
// whether traversal re-entered a node already on the current path, meaning
// the start node is involved in (or downstream of) a dependency cycle.
// Traversal is iterative with an explicit stack and on-path set, so cyclic
// input terminates instead of overflowing.
func (g *Graph) Dependencies(id string) ([]string, bool) {
	if !g.nodes[id] {
		return nil, false
	}

	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	cyclic := false

	type frame struct {
		id   string
		deps []string
		next int
	}
	push := func(id string) frame {
		onPath[id] = true
		return frame{id: id, deps: sortedKeys(g.adjacency[id])}
	}

	stack := []frame{push(id)}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.deps) {
			delete(onPath, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		dep := top.deps[top.next]
		top.next++

		if onPath[dep] {
			// Revisiting a node on the current path: stop this branch and
			// flag the traversal as cyclic.
			cyclic = true
			continue
		}
		if visited[dep] {
			continue
		}
		visited[dep] = true
		stack = append(stack, push(dep))
	}

	delete(visited, id)
	deps := make([]string, 0, len(visited))
	for v := range visited {
		deps = append(deps, v)
	}
	sort.Strings(deps)
	return deps, cyclic
}

// Dependents returns the transitive set of ids that depend on the given
// node, excluding the node itself, sorted alphabetically.
func (g *Graph) Dependents(id string) []string {
	if !g.nodes[id] {
		return nil
	}
	visited := make(map[string]bool)
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range g.reverse[cur] {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	delete(visited, id)
	out := make([]string, 0, len(visited))
	for v := range visited {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// WouldCycle reports whether adding an edge from → to would create a cycle,
// i.e. whether from is already reachable from to. Suggestion surfaces use
// this to filter candidates before they are ever written.
func (g *Graph) WouldCycle(from, to string) bool {
	if from == to {
		return true
	}
	if !g.nodes[from] || !g.nodes[to] {
		return false
	}
	deps, _ := g.Dependencies(to)
	for _, d := range deps {
		if d == from {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
