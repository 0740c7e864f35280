package ecs

import "fmt"

// PhaseId indexes a registered phase, assigned by the name-interning
// cache below.
type PhaseId int

const noPhase PhaseId = -1

const maxPhases = 4096

// CyclicHierarchyError reports a cycle in the phase nesting graph,
// grounded on the original implementation's
// ScheduleBuildError::CyclicHierarchy (original_source/src/system/schedule.rs).
type CyclicHierarchyError struct {
	Names []string
}

func (e *CyclicHierarchyError) Error() string {
	return fmt.Sprintf("ecs: cyclic phase hierarchy among %v", e.Names)
}

// phaseNode is one phase: its own systems, its parent (noPhase at the
// root), and the explicit before/after ordering edges against its
// siblings.
type phaseNode struct {
	id       PhaseId
	name     string
	parent   PhaseId
	children []PhaseId
	before   []PhaseId // must run before these siblings
	systems  []*SystemConfig
}

// Schedule is the phase graph plus system registry of spec.md §4.6/§4.7:
// phases nest (sub-phases), siblings may be explicitly ordered, and
// Run walks the hierarchy depth-first, executing each phase's systems
// with the configured Executor before descending into its children.
// Phase names are interned through the teacher's SimpleCache (cache.go),
// its index doubling as the PhaseId.
type Schedule struct {
	w        *World
	executor Executor
	phases   *SimpleCache[phaseNode]
	roots    []PhaseId
	built    bool
}

// NewSchedule builds an empty schedule that executes with exec.
func NewSchedule(w *World, exec Executor) *Schedule {
	return &Schedule{w: w, executor: exec, phases: newSimpleCache[phaseNode](maxPhases)}
}

// AddPhase registers a top-level phase, or returns the existing one if
// name was already registered.
func (s *Schedule) AddPhase(name string) PhaseId {
	idx, err := s.phases.Register(name, phaseNode{name: name, parent: noPhase})
	if err != nil {
		s.w.fatal(err)
	}
	id := PhaseId(idx)
	s.phases.GetItem(idx).id = id
	if !containsPhase(s.roots, id) {
		s.roots = append(s.roots, id)
	}
	return id
}

// AddSubPhase registers name as a child phase of parent.
func (s *Schedule) AddSubPhase(parent PhaseId, name string) PhaseId {
	idx, err := s.phases.Register(name, phaseNode{name: name, parent: parent})
	if err != nil {
		s.w.fatal(err)
	}
	id := PhaseId(idx)
	node := s.phases.GetItem(idx)
	node.id = id
	node.parent = parent
	p := s.phases.GetItem(int(parent))
	if !containsPhase(p.children, id) {
		p.children = append(p.children, id)
	}
	return id
}

// AddPhaseBefore declares that phase must run before sibling within
// their shared parent.
func (s *Schedule) AddPhaseBefore(phase, sibling PhaseId) {
	node := s.phases.GetItem(int(phase))
	node.before = append(node.before, sibling)
}

// AddPhaseAfter declares that phase must run after sibling within their
// shared parent (the reverse of AddPhaseBefore).
func (s *Schedule) AddPhaseAfter(phase, sibling PhaseId) {
	node := s.phases.GetItem(int(sibling))
	node.before = append(node.before, phase)
}

// AddSystems attaches systems to phase, binding each system's params to
// the schedule's World the first time it is added to any phase.
func (s *Schedule) AddSystems(phase PhaseId, systems ...*SystemConfig) {
	node := s.phases.GetItem(int(phase))
	node.systems = append(node.systems, systems...)
	for _, cfg := range systems {
		cfg.bindParams(s.w)
	}
}

func containsPhase(ids []PhaseId, id PhaseId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Build validates that the hierarchy contains no cycles and that every
// sibling group can be ordered per its before/after edges. It must
// succeed before Run is called.
func (s *Schedule) Build() error {
	total := len(s.phases.items)
	visited := make([]int, total) // 0=unvisited 1=visiting 2=done
	var stack []string
	var visit func(id PhaseId) error
	visit = func(id PhaseId) error {
		switch visited[id] {
		case 2:
			return nil
		case 1:
			return &CyclicHierarchyError{Names: append(append([]string{}, stack...), s.phases.GetItem(int(id)).name)}
		}
		visited[id] = 1
		stack = append(stack, s.phases.GetItem(int(id)).name)
		for _, child := range s.phases.GetItem(int(id)).children {
			if err := visit(child); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		visited[id] = 2
		return nil
	}
	for _, root := range s.roots {
		if err := visit(root); err != nil {
			return err
		}
	}
	if _, err := s.orderSiblings(s.roots); err != nil {
		return err
	}
	for i := range s.phases.items {
		if _, err := s.orderSiblings(s.phases.items[i].children); err != nil {
			return err
		}
	}
	s.built = true
	return nil
}

// orderSiblings returns ids sorted so that every before edge is
// respected, via the same Kahn approach as dag.go's topoSort.
func (s *Schedule) orderSiblings(ids []PhaseId) ([]PhaseId, error) {
	index := make(map[PhaseId]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	inDegree := make([]int, len(ids))
	edges := make([][]int, len(ids))
	for i, id := range ids {
		for _, before := range s.phases.GetItem(int(id)).before {
			if j, ok := index[before]; ok {
				edges[i] = append(edges[i], j)
				inDegree[j]++
			}
		}
	}
	queue := make([]int, 0, len(ids))
	for i, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, i)
		}
	}
	out := make([]PhaseId, 0, len(ids))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		out = append(out, ids[i])
		for _, next := range edges[i] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(out) != len(ids) {
		var names []string
		for i, deg := range inDegree {
			if deg > 0 {
				names = append(names, s.phases.GetItem(int(ids[i])).name)
			}
		}
		return nil, &CyclicDependencyError{Names: names}
	}
	return out, nil
}

// Run executes phase's own systems, then its children in before/after
// order, depth-first — mirroring the original implementation's
// Systems.run DFS stack over the hierarchy
// (original_source/src/system/schedule.rs).
func (s *Schedule) Run(phase PhaseId) error {
	if !s.built {
		if err := s.Build(); err != nil {
			return err
		}
	}
	return s.runNode(phase)
}

// RunAll executes every root phase in before/after order.
func (s *Schedule) RunAll() error {
	if !s.built {
		if err := s.Build(); err != nil {
			return err
		}
	}
	ordered, err := s.orderSiblings(s.roots)
	if err != nil {
		return err
	}
	for _, id := range ordered {
		if err := s.runNode(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schedule) runNode(id PhaseId) error {
	node := s.phases.GetItem(int(id))
	if len(node.systems) > 0 {
		if err := s.executor.RunPhase(s.w, node.systems); err != nil {
			return err
		}
		s.w.flushCommands()
	}
	ordered, err := s.orderSiblings(node.children)
	if err != nil {
		return err
	}
	for _, child := range ordered {
		if err := s.runNode(child); err != nil {
			return err
		}
	}
	return nil
}
