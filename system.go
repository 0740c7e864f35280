package ecs

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// SystemId uniquely identifies one registered system within a World.
type SystemId uint32

var systemIdCounter uint64

func nextSystemId() SystemId {
	return SystemId(atomic.AddUint64(&systemIdCounter, 1))
}

// SystemParam is implemented by every argument kind a system function may
// declare (spec.md §4.5): World/*World, Res[R], ResMut[R], NonSendRes[R],
// NonSendResMut[R], a QueryN, Commands, Spawner, EventReader[E], and
// EventWriter[E]. init binds the param to a concrete World once, at
// system registration; access reports what the param reads or writes for
// the scheduler's conflict graph.
type SystemParam interface {
	init(w *World)
	access() []Access
	// send reports whether this param may be used from a worker
	// goroutine other than the one that invoked Executor.RunPhase.
	send() bool
	// exclusive reports whether the owning system must run with sole
	// access to the World (the World/*World and Spawner param kinds).
	exclusive() bool
}

// nonExclusive is embedded by every param kind that doesn't require
// sole World access, so each only has to answer exclusive() once here.
type nonExclusive struct{}

func (nonExclusive) exclusive() bool { return false }

// WorldParam is the direct World/*World system argument: it requires
// sole access, since the scheduler cannot otherwise bound what it
// touches.
type WorldParam struct {
	w *World
}

func (p *WorldParam) init(w *World)   { p.w = w }
func (p *WorldParam) access() []Access { return nil }
func (p *WorldParam) send() bool      { return true }
func (p *WorldParam) exclusive() bool { return true }
func (p *WorldParam) Get() *World     { return p.w }

// Res is a shared-read handle to resource R.
type Res[R any] struct {
	nonExclusive
	w  *World
	id ResourceId
}

func (p *Res[R]) init(w *World) {
	p.w = w
	id, ok := resourceIdFor[R](w)
	if !ok {
		id = AddResource[R](w, *new(R))
	}
	p.id = id
}
func (p *Res[R]) access() []Access { return []Access{{Resource: true, ID: uint32(p.id), Kind: AccessRead}} }
func (p *Res[R]) send() bool       { return true }

// Get returns a shared pointer to the resource's current value.
func (p *Res[R]) Get() *R {
	v, ok := p.w.resources.send[p.id]
	if !ok {
		p.w.fatal(fmt.Errorf("ecs: resource %T not present", *new(R)))
	}
	return v.(*R)
}

// ResMut is an exclusive-write handle to resource R.
type ResMut[R any] struct {
	nonExclusive
	w  *World
	id ResourceId
}

func (p *ResMut[R]) init(w *World) {
	p.w = w
	id, ok := resourceIdFor[R](w)
	if !ok {
		id = AddResource[R](w, *new(R))
	}
	p.id = id
}
func (p *ResMut[R]) access() []Access {
	return []Access{{Resource: true, ID: uint32(p.id), Kind: AccessWrite}}
}
func (p *ResMut[R]) send() bool { return true }

// Get returns an exclusive pointer to the resource's current value.
func (p *ResMut[R]) Get() *R {
	v, ok := p.w.resources.send[p.id]
	if !ok {
		p.w.fatal(fmt.Errorf("ecs: resource %T not present", *new(R)))
	}
	return v.(*R)
}

// NonSendRes is a shared-read handle to a resource pinned to the
// goroutine that called Executor.RunPhase (spec.md §5).
type NonSendRes[R any] struct {
	nonExclusive
	w  *World
	id ResourceId
}

func (p *NonSendRes[R]) init(w *World) {
	p.w = w
	rt := reflect.TypeFor[R]()
	p.id = w.resources.idFor(rt, true)
}
func (p *NonSendRes[R]) access() []Access {
	return []Access{{Resource: true, ID: uint32(p.id), Kind: AccessRead}}
}
func (p *NonSendRes[R]) send() bool { return false }

// Get returns the pinned resource's current value, fatal if called from
// any goroutine but the one that minted the active run token.
func (p *NonSendRes[R]) Get(token RunToken) *R {
	if token != p.w.currentRunToken() {
		p.w.fatal(&ErrNonSendFromWrongThread{Resource: p.w.resources.names[p.id]})
	}
	v, ok := p.w.resources.pinned[p.id]
	if !ok {
		p.w.fatal(fmt.Errorf("ecs: non-send resource %T not present", *new(R)))
	}
	return v.(*R)
}

// NonSendResMut is NonSendRes's exclusive-write counterpart.
type NonSendResMut[R any] struct {
	nonExclusive
	w  *World
	id ResourceId
}

func (p *NonSendResMut[R]) init(w *World) {
	p.w = w
	rt := reflect.TypeFor[R]()
	p.id = w.resources.idFor(rt, true)
}
func (p *NonSendResMut[R]) access() []Access {
	return []Access{{Resource: true, ID: uint32(p.id), Kind: AccessWrite}}
}
func (p *NonSendResMut[R]) send() bool { return false }

func (p *NonSendResMut[R]) Get(token RunToken) *R {
	if token != p.w.currentRunToken() {
		p.w.fatal(&ErrNonSendFromWrongThread{Resource: p.w.resources.names[p.id]})
	}
	v, ok := p.w.resources.pinned[p.id]
	if !ok {
		p.w.fatal(fmt.Errorf("ecs: non-send resource %T not present", *new(R)))
	}
	return v.(*R)
}

// queryParam adapts any QueryN to SystemParam; Q is built by the caller
// (it already carries its own World reference) and handed to the system
// function directly, so the param's only job here is access reporting.
type queryParam struct {
	nonExclusive
	q interface{ Access() []Access }
}

func (p *queryParam) init(w *World)    {}
func (p *queryParam) access() []Access { return p.q.Access() }
func (p *queryParam) send() bool       { return true }

// QueryParam adapts any QueryN into a SystemParam so it can be listed
// alongside Res/Commands/etc. in NewSystem's params slice.
func QueryParam(q interface{ Access() []Access }) SystemParam {
	return &queryParam{q: q}
}

// Commands and Spawner implement SystemParam directly (commands.go,
// spawner.go): both report no access since Commands defers its
// mutations and Spawner is exclusive by virtue of needing the World
// itself, not a conflicting access entry.

// SystemFunc is the shape every registered system implements: given the
// world, the active run token (for non-send params), and the frame this
// system last completed on, it performs its work and returns its new
// last-run frame (normally the world's current frame).
type SystemFunc func(w *World, token RunToken, lastRun Frame) Frame

// SystemConfig is the scheduler-facing extraction of one registered
// system (spec.md §4.5): a stable id, a display name, explicit ordering
// dependencies, its compacted access set, and the function to execute.
type SystemConfig struct {
	Id        SystemId
	Name      string
	DependsOn []SystemId
	Access    AccessSet
	Exclusive bool // World/*World param present => runs alone, no parallelism
	Send      bool // false => must run on the goroutine driving Executor.RunPhase
	Fn        SystemFunc
	params    []SystemParam
	bound     bool
	lastRun   Frame
}

// NewSystem builds a SystemConfig from a name, a function, and the
// params the function declares access through. Params are inspected once
// at registration, not per call; they are bound to a concrete World the
// first time the system is added to a Schedule (bindParams).
func NewSystem(name string, params []SystemParam, fn SystemFunc) *SystemConfig {
	cfg := &SystemConfig{Id: nextSystemId(), Name: name, Fn: fn, Send: true, params: params}
	for _, p := range params {
		if !p.send() {
			cfg.Send = false
		}
		if p.exclusive() {
			cfg.Exclusive = true
		}
	}
	return cfg
}

// bindParams calls init(w) on every param exactly once, the first time
// cfg is attached to a schedule, and only then computes the access set:
// resource params don't know their real ResourceId until init assigns
// it, so access() called any earlier would report every resource param
// as id 0 (system.go's Res/ResMut/NonSendRes/NonSendResMut).
func (cfg *SystemConfig) bindParams(w *World) {
	if cfg.bound {
		return
	}
	cfg.bound = true
	for _, p := range cfg.params {
		p.init(w)
		cfg.Access.AddAll(p.access())
	}
}

// After records an explicit ordering dependency: cfg must run after dep
// within their shared phase (spec.md §4.6 step 1).
func (cfg *SystemConfig) After(dep *SystemConfig) *SystemConfig {
	cfg.DependsOn = append(cfg.DependsOn, dep.Id)
	return cfg
}

// MarkExclusive marks cfg as requiring sole access to the World for its
// entire execution (the World/*World param case); it never runs
// concurrently with any other system in its phase.
func (cfg *SystemConfig) MarkExclusive() *SystemConfig {
	cfg.Exclusive = true
	return cfg
}
