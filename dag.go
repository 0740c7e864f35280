package ecs

import "fmt"

// CyclicDependencyError reports an ordering cycle among the named systems,
// grounded on the original implementation's ScheduleBuildError::CyclicDependency.
type CyclicDependencyError struct {
	Names []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("ecs: cyclic system dependency among %v", e.Names)
}

// dagNode is one system's position in the ordering DAG: its outgoing
// edges (systems that must run after it) and remaining in-degree.
type dagNode struct {
	id       SystemId
	index    int // position within the owning phase's system slice
	edges    []int
	inDegree int
}

// dag is a Kahn-style dependency graph over a phase's systems, built from
// these edge sources (spec.md §4.6 step 1 and step 3):
//
//   - explicit ordering declared via SystemConfig.After
//   - access conflicts between two systems' AccessSets, with the edge
//     directed in submission order (earlier-submitted system runs first)
//   - any pair in which either system is Exclusive, also directed in
//     submission order
//
// Conflict edges are derived, never contradictory with themselves, so
// only explicit user ordering can introduce a cycle.
type dag struct {
	systems []*SystemConfig
	nodes   []dagNode
}

func buildDAG(systems []*SystemConfig) *dag {
	d := &dag{systems: systems, nodes: make([]dagNode, len(systems))}
	idxOf := make(map[SystemId]int, len(systems))
	for i, s := range systems {
		idxOf[s.Id] = i
		d.nodes[i] = dagNode{id: s.Id, index: i}
	}

	addEdge := func(from, to int) {
		if from == to {
			return
		}
		d.nodes[from].edges = append(d.nodes[from].edges, to)
		d.nodes[to].inDegree++
	}

	for i, s := range systems {
		for _, dep := range s.DependsOn {
			if j, ok := idxOf[dep]; ok {
				addEdge(j, i)
			}
		}
	}

	for i := 0; i < len(systems); i++ {
		for j := i + 1; j < len(systems); j++ {
			if systems[i].Exclusive || systems[j].Exclusive || systems[i].Access.ConflictsWith(&systems[j].Access) {
				addEdge(i, j)
			}
		}
	}

	return d
}

// topoSort returns systems in a valid execution order, or a
// CyclicDependencyError if the explicit ordering (not the derived
// conflict edges) contains a cycle.
func (d *dag) topoSort() ([]*SystemConfig, error) {
	inDegree := make([]int, len(d.nodes))
	for i, n := range d.nodes {
		inDegree[i] = n.inDegree
	}

	queue := make([]int, 0, len(d.nodes))
	for i, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]*SystemConfig, 0, len(d.systems))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, d.systems[i])
		for _, next := range d.nodes[i].edges {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(d.systems) {
		var stuck []string
		for i, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, d.systems[i].Name)
			}
		}
		return nil, &CyclicDependencyError{Names: stuck}
	}
	return order, nil
}

// layers groups topoSort's output into waves that may run concurrently:
// every system in a layer has no edge to any other system in that same
// layer, grounded on the original parallel executor's ready-queue
// dispatch (original_source/src/system/executor/parallel.rs).
func (d *dag) layers() ([][]*SystemConfig, error) {
	inDegree := make([]int, len(d.nodes))
	for i, n := range d.nodes {
		inDegree[i] = n.inDegree
	}

	var layers [][]*SystemConfig
	remaining := len(d.nodes)
	ready := make([]int, 0, len(d.nodes))
	for i, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}

	for len(ready) > 0 {
		layer := make([]*SystemConfig, 0, len(ready))
		var next []int
		for _, i := range ready {
			layer = append(layer, d.systems[i])
			remaining--
			for _, succ := range d.nodes[i].edges {
				inDegree[succ]--
				if inDegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		layers = append(layers, layer)
		ready = next
	}

	if remaining != 0 {
		var stuck []string
		for i, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, d.systems[i].Name)
			}
		}
		return nil, &CyclicDependencyError{Names: stuck}
	}
	return layers, nil
}
