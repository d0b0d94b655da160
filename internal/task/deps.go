package task

import "slices"

// Graph maps a task id to the ids it depends on. An edge A -> B means
// "A depends on B".
type Graph map[int][]int

// AllExist reports whether every id resolves to a node of g.
func AllExist(ids []int, g Graph) bool {
	for _, id := range ids {
		if _, ok := g[id]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the ids that do not resolve to a node of g, in input order
// without duplicates.
func Missing(ids []int, g Graph) []int {
	var missing []int
	for _, id := range ids {
		if _, ok := g[id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// HasSelfReference reports whether taskID appears in its own dependency list.
func HasSelfReference(taskID int, deps []int) bool {
	return slices.Contains(deps, taskID)
}

// WouldCreateCycle reports whether giving taskID the proposed dependencies
// closes a cycle. The existing edges of taskID are ignored; only the edges of
// every other task plus the proposed ones are considered. Self-reference must
// be checked separately with HasSelfReference.
func WouldCreateCycle(taskID int, proposed []int, g Graph) bool {
	return CyclePath(taskID, proposed, g) != nil
}

// CyclePath returns the cycle that the proposed dependencies would close,
// starting and ending at taskID, or nil if none would be created.
func CyclePath(taskID int, proposed []int, g Graph) []int {
	visited := make(map[int]bool)
	for _, dep := range proposed {
		if dep == taskID {
			continue
		}
		if path := pathTo(dep, taskID, g, visited); path != nil {
			return append([]int{taskID}, path...)
		}
	}
	return nil
}

// pathTo searches for a path from "from" to "target" through g, skipping the
// outgoing edges of target. Returns the path including both endpoints.
func pathTo(from, target int, g Graph, visited map[int]bool) []int {
	if from == target {
		return []int{target}
	}
	if visited[from] {
		return nil
	}
	visited[from] = true

	for _, next := range g[from] {
		if path := pathTo(next, target, g, visited); path != nil {
			return append([]int{from}, path...)
		}
	}
	return nil
}

// FindCycle searches the whole graph for a cycle and returns it as a closed
// path (first and last element equal), or nil if g is acyclic. Edges to ids
// that are not nodes of g are ignored. Nodes are visited in ascending order so
// the reported cycle is deterministic.
func FindCycle(g Graph) []int {
	const (
		white = iota
		grey
		black
	)
	color := make(map[int]int, len(g))
	var stack []int

	var visit func(id int) []int
	visit = func(id int) []int {
		color[id] = grey
		stack = append(stack, id)
		for _, dep := range g[id] {
			if _, ok := g[dep]; !ok {
				continue
			}
			switch color[dep] {
			case grey:
				start := slices.Index(stack, dep)
				cycle := append([]int(nil), stack[start:]...)
				return append(cycle, dep)
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	ids := make([]int, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if color[id] != white {
			continue
		}
		if cycle := visit(id); cycle != nil {
			return cycle
		}
	}
	return nil
}
