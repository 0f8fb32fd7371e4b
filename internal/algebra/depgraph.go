package algebra

import "sort"

// DependencyGraph tracks which variables depend on which, outside the AST.
// The REPL consults it before committing an assignment, so a cycle is
// rejected up front rather than discovered later during expansion.
//
// Forward edges map a variable to the set of variables it depends on; the
// reverse index maps a variable to its dependents. The two are kept
// mutually consistent through every mutation.
type DependencyGraph struct {
	edges   map[string]map[string]bool
	reverse map[string]map[string]bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		edges:   make(map[string]map[string]bool),
		reverse: make(map[string]map[string]bool),
	}
}

// AddVariable records that name depends on deps, replacing any previous
// dependency set. Stale reverse edges from the old set are pruned before
// the new ones are added.
func (g *DependencyGraph) AddVariable(name string, deps []string) {
	for old := range g.edges[name] {
		delete(g.reverse[old], name)
		if len(g.reverse[old]) == 0 {
			delete(g.reverse, old)
		}
	}

	set := make(map[string]bool, len(deps))
	for _, d := range deps {
		set[d] = true
		if g.reverse[d] == nil {
			g.reverse[d] = make(map[string]bool)
		}
		g.reverse[d][name] = true
	}
	g.edges[name] = set
}

// Remove forgets name entirely, both as a dependent and as a dependency.
func (g *DependencyGraph) Remove(name string) {
	for dep := range g.edges[name] {
		delete(g.reverse[dep], name)
		if len(g.reverse[dep]) == 0 {
			delete(g.reverse, dep)
		}
	}
	delete(g.edges, name)

	for dependent := range g.reverse[name] {
		delete(g.edges[dependent], name)
	}
	delete(g.reverse, name)
}

// Clear resets the graph to empty.
func (g *DependencyGraph) Clear() {
	g.edges = make(map[string]map[string]bool)
	g.reverse = make(map[string]map[string]bool)
}

// Dependencies returns the sorted direct dependencies of name.
func (g *DependencyGraph) Dependencies(name string) []string {
	return sortedKeys(g.edges[name])
}

// Dependents returns the sorted direct dependents of name.
func (g *DependencyGraph) Dependents(name string) []string {
	return sortedKeys(g.reverse[name])
}

// WouldCycle answers "if name were assigned newDeps, would a cycle form?"
// without mutating the graph. It searches the existing forward edges from
// each candidate dependency back to name. A self-reference is trivially a
// cycle.
func (g *DependencyGraph) WouldCycle(name string, newDeps []string) bool {
	for _, dep := range newDeps {
		if dep == name {
			return true
		}
		if g.reaches(dep, name, map[string]bool{}) {
			return true
		}
	}
	return false
}

func (g *DependencyGraph) reaches(from, target string, visited map[string]bool) bool {
	if visited[from] {
		return false
	}
	visited[from] = true
	for next := range g.edges[from] {
		if next == target || g.reaches(next, target, visited) {
			return true
		}
	}
	return false
}

// TransitiveDependents returns every variable that directly or indirectly
// depends on name, sorted. The REPL uses it to warn which bindings a
// change ripples into.
func (g *DependencyGraph) TransitiveDependents(name string) []string {
	out := make(map[string]bool)
	var visit func(string)
	visit = func(n string) {
		for dependent := range g.reverse[n] {
			if !out[dependent] {
				out[dependent] = true
				visit(dependent)
			}
		}
	}
	visit(name)
	return sortedKeys(out)
}

// TopologicalOrder returns all known variables ordered so that every
// dependency precedes its dependents, via Kahn's algorithm on out-degree
// (a variable's out-degree is its number of dependencies, so leaves come
// first). Returns nil if the graph contains a cycle.
func (g *DependencyGraph) TopologicalOrder() []string {
	nodes := make(map[string]bool)
	for name, deps := range g.edges {
		nodes[name] = true
		for dep := range deps {
			nodes[dep] = true
		}
	}

	outDegree := make(map[string]int, len(nodes))
	for name := range nodes {
		for dep := range g.edges[name] {
			if nodes[dep] {
				outDegree[name]++
			}
		}
	}

	var queue []string
	for name := range nodes {
		if outDegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // deterministic order among ties

	var order []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		var released []string
		for dependent := range g.reverse[n] {
			if !nodes[dependent] {
				continue
			}
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				released = append(released, dependent)
			}
		}
		sort.Strings(released)
		queue = append(queue, released...)
	}

	if len(order) != len(nodes) {
		return nil
	}
	return order
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
