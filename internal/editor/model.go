// Package editor owns the schematic state and exposes the editing
// operations that keep wires, components and topology consistent.
package editor

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"schematic-editor/internal/component"
	"schematic-editor/internal/config"
	"schematic-editor/internal/move"
	"schematic-editor/internal/netlist"
	"schematic-editor/internal/topology"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"
)

var (
	// ErrUnknownComponent is returned for a component ID not in the model.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrUnknownWire is returned for a wire ID not in the model.
	ErrUnknownWire = wire.ErrUnknownWire
	// ErrUnknownType is returned when placing an unsupported part type.
	ErrUnknownType = errors.New("unknown component type")
	// ErrDegenerateWire is returned when a drawn wire has no length.
	ErrDegenerateWire = errors.New("degenerate wire")
)

// EventType identifies model events.
type EventType int

const (
	EventLoaded EventType = iota
	EventComponentsChanged
	EventWiresChanged
	EventTopologyRebuilt
	EventSelectionChanged
	EventMoveStarted
	EventMoveFinished
	EventMoveAborted
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Snapshot is an undo point: value copies of the components and wires.
type Snapshot struct {
	Components []component.Component
	Wires      []wire.Wire
}

// MoveKind tells which strategy an active move uses.
type MoveKind int

const (
	MoveNone MoveKind = iota
	MoveCollapse
	MoveSlide
)

func (k MoveKind) String() string {
	switch k {
	case MoveCollapse:
		return "collapse"
	case MoveSlide:
		return "slide"
	default:
		return "none"
	}
}

// slideOrigin is the state restored when a slide is aborted.
type slideOrigin struct {
	pos   geometry.Point
	wires []wire.Wire
}

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator sets the wire ID source.
func WithIDGenerator(ids wire.IDGenerator) Option {
	return func(m *Model) { m.ids = ids }
}

// WithSnapshot registers the undo callback, invoked at the start of every
// topology-affecting operation. The callback must not call back into the
// Model.
func WithSnapshot(fn func(Snapshot)) Option {
	return func(m *Model) { m.onSnapshot = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithSnap replaces the grid snap function.
func WithSnap(fn func(geometry.Point) geometry.Point) Option {
	return func(m *Model) { m.snap = fn }
}

// WithParts sets the part types the model can place and resolve.
func WithParts(reg *component.Registry) Option {
	return func(m *Model) { m.parts = reg }
}

// WithConfig sets the engine settings.
func WithConfig(cfg *config.Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

// Model is the single owner of the schematic state. Mutating methods are
// meant to be called from one goroutine, one event at a time; every
// topology-affecting operation replaces the wire list wholesale and
// rebuilds the topology before returning. On and Emit may be used from
// any goroutine.
type Model struct {
	cfg        *config.Config
	parts      *component.Registry
	components *component.List
	wires      []wire.Wire
	topo       *topology.Topology

	moves     *move.Protocol
	slide     *move.Slide
	origSlide slideOrigin
	moveKind  MoveKind
	movingID  string
	selected  string

	ids        wire.IDGenerator
	snap       func(geometry.Point) geometry.Point
	onSnapshot func(Snapshot)
	logger     *log.Logger

	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

// New creates an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		cfg:        config.Default(),
		parts:      component.NewRegistry(),
		components: component.NewList(),
		ids:        wire.UUIDGenerator{},
		logger:     log.Default(),
		listeners:  make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.snap == nil {
		grid := m.cfg.Grid
		m.snap = func(p geometry.Point) geometry.Point { return geometry.Snap(p, grid) }
	}

	mo := m.cfg.MoveOptions()
	mo.Snap = m.snap
	mo.OnSnapshot = m.takeSnapshot
	mo.Logger = m.logger
	m.moves = move.NewProtocol(m.ids, mo)

	m.topo = topology.Build(nil, nil, m.cfg.TopologyOptions())
	return m
}

// On registers an event listener for the specified event type.
func (m *Model) On(event EventType, listener EventListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[event] = append(m.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (m *Model) Emit(event EventType, data interface{}) {
	m.mu.RLock()
	listeners := m.listeners[event]
	m.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Load replaces the whole state. Wires are normalized and deduplicated.
func (m *Model) Load(components []*component.Component, wires []wire.Wire) {
	m.cancelMove()
	m.parts.Resolve(components...)
	m.components = component.NewList(components...)
	m.wires = wire.Dedupe(wire.NormalizeAll(wires, m.ids))
	m.selected = ""
	m.Rebuild()
	m.Emit(EventLoaded, nil)
}

// Restore reinstates an undo snapshot.
func (m *Model) Restore(s Snapshot) {
	m.cancelMove()
	comps := make([]*component.Component, len(s.Components))
	for i := range s.Components {
		c := s.Components[i]
		comps[i] = &c
	}
	m.parts.Resolve(comps...)
	m.components = component.NewList(comps...)
	m.wires = wire.Clone(s.Wires)
	m.Rebuild()
	m.Emit(EventComponentsChanged, nil)
	m.Emit(EventWiresChanged, len(m.wires))
}

// Wires returns a copy of the wire list.
func (m *Model) Wires() []wire.Wire {
	return wire.Clone(m.wires)
}

// Components returns the live components.
func (m *Model) Components() []*component.Component {
	return append([]*component.Component(nil), m.components.Components...)
}

// Component returns the component with id, or nil.
func (m *Model) Component(id string) *component.Component {
	return m.components.Get(id)
}

// Topology returns the last built topology.
func (m *Model) Topology() *topology.Topology {
	return m.topo
}

// Selected returns the selected component ID.
func (m *Model) Selected() string {
	return m.selected
}

// ActiveMove returns the strategy and component of the move in progress.
func (m *Model) ActiveMove() (MoveKind, string) {
	return m.moveKind, m.movingID
}

// Rebuild recomputes the topology from the current state.
func (m *Model) Rebuild() *topology.Topology {
	m.topo = topology.Build(m.components.Components, m.wires, m.cfg.TopologyOptions())
	m.logger.Printf("topology: %d nodes, %d edges, %d swps, %d mapped components",
		len(m.topo.Nodes), len(m.topo.Edges), len(m.topo.SWPs), len(m.topo.CompToSWP))
	m.Emit(EventTopologyRebuilt, m.topo)
	return m.topo
}

// SWPForWire returns the SWP owning segment seg of the wire; a negative
// seg matches any segment.
func (m *Model) SWPForWire(wireID string, seg int) *topology.SWP {
	return m.topo.SWPForWire(wireID, seg)
}

// Nets groups the current wires into nets.
func (m *Model) Nets() []*netlist.Net {
	return netlist.Build(m.wires, m.components.Components, m.cfg.Tolerance)
}

// AssignNets writes every wire's NetID from the current nets.
func (m *Model) AssignNets() []*netlist.Net {
	nets := m.Nets()
	m.wires = netlist.Assign(m.wires, nets)
	m.Emit(EventWiresChanged, len(m.wires))
	return nets
}

// PlaceComponent drops a new part at the snapped position. Wires crossing
// its pins are split there, and the straight piece left between the pins
// of a two-pin part is removed so the part sits embedded in the run.
func (m *Model) PlaceComponent(typeName string, at geometry.Point, rotation float64) (*component.Component, error) {
	t, ok := m.parts.ParseType(typeName)
	if !ok {
		return nil, fmt.Errorf("place %q: %w", typeName, ErrUnknownType)
	}
	m.finishActive()
	m.takeSnapshot()

	p := m.snap(at)
	c := component.New(m.components.GenerateID(m.parts.Prefix(t)), t, p.X, p.Y)
	c.Rotation = rotation
	m.parts.Resolve(c)
	m.components.Add(c)

	pins := c.Pins()
	wires, _ := wire.BreakAtPins(pins, m.wires, m.ids, m.cfg.Tolerance)
	if c.IsTwoPin() {
		wires, _ = wire.DeleteBridge(pins, wires, m.cfg.Tolerance)
	}
	m.setWires(wires)

	m.logger.Printf("editor: placed %s at (%g, %g)", c.ID, c.X, c.Y)
	m.Emit(EventComponentsChanged, c.ID)
	return c, nil
}

// DeleteComponent removes a part. When a two-pin part had exactly one
// wire ending at each pin, those wires are mended across the gap.
func (m *Model) DeleteComponent(id string) error {
	c := m.components.Get(id)
	if c == nil {
		return fmt.Errorf("delete %s: %w", id, ErrUnknownComponent)
	}
	if m.movingID == id {
		m.cancelMove()
	} else {
		m.finishActive()
	}
	m.takeSnapshot()

	pins := c.Pins()
	m.components.Remove(id)
	if m.selected == id {
		m.selected = ""
	}

	wires := m.wires
	if len(pins) == 2 {
		ha := wire.EndpointsAt(wires, pins[0], m.cfg.Tolerance)
		hb := wire.EndpointsAt(wires, pins[1], m.cfg.Tolerance)
		if len(ha) == 1 && len(hb) == 1 {
			if mended, ok := wire.MendAtPoints(ha[0], hb[0], wires, m.ids, m.cfg.Stroke()); ok {
				wires = mended
			}
		}
	}
	m.setWires(wires)

	m.logger.Printf("editor: deleted %s", id)
	m.Emit(EventComponentsChanged, id)
	return nil
}

// DrawWire adds a wire through the snapped points using the default
// stroke. Existing wires are split where the new wire ends on them.
func (m *Model) DrawWire(points ...geometry.Point) error {
	snapped := make([]geometry.Point, len(points))
	for i, p := range points {
		snapped[i] = m.snap(p)
	}
	norm := wire.NormalizePolyline(snapped)
	if norm == nil {
		return ErrDegenerateWire
	}
	m.finishActive()
	m.takeSnapshot()

	w := wire.Wire{ID: m.ids.NewID(), Points: norm, Stroke: m.cfg.Stroke()}
	wires, _ := wire.BreakAtPins([]geometry.Point{w.First(), w.Last()}, m.wires, m.ids, m.cfg.Tolerance)
	wires = append(wires, w)
	wires, _ = wire.BreakAtPins(m.components.Pins(), wire.NormalizeAll(wires, m.ids), m.ids, m.cfg.Tolerance)
	m.setWires(wires)
	return nil
}

// DeleteWire removes a wire.
func (m *Model) DeleteWire(id string) error {
	if wire.IndexOf(m.wires, id) < 0 {
		return fmt.Errorf("delete wire %s: %w", id, ErrUnknownWire)
	}
	m.finishActive()
	m.takeSnapshot()

	wires, err := wire.Remove(m.wires, id)
	if err != nil {
		return err
	}
	m.setWires(wires)
	return nil
}

// Select changes the selected component. A move in progress for another
// component is finished first. An empty id clears the selection.
func (m *Model) Select(id string) error {
	if id != "" && m.components.Get(id) == nil {
		return fmt.Errorf("select %s: %w", id, ErrUnknownComponent)
	}
	if m.movingID != "" && m.movingID != id {
		m.finishActive()
	}
	if m.selected == id {
		return nil
	}
	m.selected = id
	m.Emit(EventSelectionChanged, id)
	return nil
}

// BeginMove starts dragging a component. Parts on a straight wire path
// collapse it; otherwise a slide is attempted. Beginning the move already
// in progress is a no-op. Returns move.ErrNotApplicable when neither
// strategy applies.
func (m *Model) BeginMove(id string) (MoveKind, error) {
	c := m.components.Get(id)
	if c == nil {
		return MoveNone, fmt.Errorf("begin move %s: %w", id, ErrUnknownComponent)
	}
	if m.movingID == id {
		return m.moveKind, nil
	}
	m.finishActive()

	wires, err := m.moves.Begin(m.components.Components, m.wires, m.topo, c)
	switch {
	case err == nil:
		m.wires = wires
		m.moveKind, m.movingID = MoveCollapse, id
		m.Emit(EventWiresChanged, len(m.wires))
	case errors.Is(err, move.ErrNotApplicable):
		mo := m.cfg.MoveOptions()
		mo.Snap, mo.Logger = m.snap, m.logger
		s, serr := move.NewSlide(m.wires, c, mo)
		if serr != nil {
			return MoveNone, fmt.Errorf("begin move %s: %w", id, serr)
		}
		m.takeSnapshot()
		m.slide = s
		m.origSlide = slideOrigin{pos: c.Center(), wires: wire.Clone(m.wires)}
		m.moveKind, m.movingID = MoveSlide, id
		m.logger.Printf("editor: %s is not on a straight wire path, sliding", id)
	default:
		return MoveNone, err
	}
	m.Emit(EventMoveStarted, id)
	return m.moveKind, nil
}

// UpdateMove moves the dragged component toward candidate. It reports
// false when the position was rejected.
func (m *Model) UpdateMove(id string, candidate geometry.Point) (bool, error) {
	c := m.components.Get(id)
	if c == nil {
		return false, fmt.Errorf("update move %s: %w", id, ErrUnknownComponent)
	}
	if m.movingID != id {
		return false, fmt.Errorf("update move %s: %w", id, move.ErrNoActiveMove)
	}
	switch m.moveKind {
	case MoveCollapse:
		return m.moves.Update(m.components.Components, c, candidate)
	case MoveSlide:
		wires, ok, err := m.slide.Update(m.components.Components, m.wires, c, candidate)
		if err != nil || !ok {
			return ok, err
		}
		m.wires = wires
		m.Emit(EventWiresChanged, len(m.wires))
		return true, nil
	}
	return false, fmt.Errorf("update move %s: %w", id, move.ErrNoActiveMove)
}

// FinishMove ends the drag, reconstructing a collapsed run around the
// component's final position.
func (m *Model) FinishMove(id string) error {
	c := m.components.Get(id)
	if c == nil {
		return fmt.Errorf("finish move %s: %w", id, ErrUnknownComponent)
	}
	if m.movingID != id {
		return fmt.Errorf("finish move %s: %w", id, move.ErrNoActiveMove)
	}
	if m.moveKind == MoveCollapse {
		wires, err := m.moves.Finish(m.components.Components, m.wires, c)
		if err != nil {
			return err
		}
		m.wires = wires
	}
	m.clearMove()
	m.Rebuild()
	m.Emit(EventWiresChanged, len(m.wires))
	m.Emit(EventMoveFinished, id)
	return nil
}

// AbortMove cancels the drag and restores the wires and the component
// position from before BeginMove.
func (m *Model) AbortMove(id string) error {
	c := m.components.Get(id)
	if c == nil {
		return fmt.Errorf("abort move %s: %w", id, ErrUnknownComponent)
	}
	if m.movingID != id {
		return fmt.Errorf("abort move %s: %w", id, move.ErrNoActiveMove)
	}
	m.abort(c)
	m.Emit(EventMoveAborted, id)
	return nil
}

func (m *Model) abort(c *component.Component) {
	switch m.moveKind {
	case MoveCollapse:
		if wires, err := m.moves.Abort(c); err == nil {
			m.wires = wires
		}
	case MoveSlide:
		c.SetCenter(m.origSlide.pos)
		m.wires = m.origSlide.wires
	}
	m.clearMove()
	m.Rebuild()
	m.Emit(EventWiresChanged, len(m.wires))
}

// finishActive completes a move in progress, if any.
func (m *Model) finishActive() {
	if m.movingID == "" {
		return
	}
	id := m.movingID
	if err := m.FinishMove(id); err != nil {
		m.logger.Printf("editor: finishing move of %s: %v", id, err)
		m.clearMove()
	}
}

// cancelMove aborts a move in progress, if any.
func (m *Model) cancelMove() {
	if m.movingID == "" {
		return
	}
	if c := m.components.Get(m.movingID); c != nil {
		m.abort(c)
		return
	}
	m.clearMove()
}

func (m *Model) clearMove() {
	m.moveKind, m.movingID, m.slide = MoveNone, "", nil
	m.origSlide = slideOrigin{}
}

// setWires stores a mutated wire list: it is normalized, unified around
// the component pins and the topology is rebuilt.
func (m *Model) setWires(wires []wire.Wire) {
	u := wire.Unifier{IDs: m.ids, Tolerance: m.cfg.Tolerance, Logger: m.logger}
	m.wires = wire.Dedupe(u.Unify(wires, m.components.Pins()))
	m.Rebuild()
	m.Emit(EventWiresChanged, len(m.wires))
}

func (m *Model) takeSnapshot() {
	if m.onSnapshot == nil {
		return
	}
	m.onSnapshot(Snapshot{
		Components: component.Snapshot(m.components.Components),
		Wires:      wire.Clone(m.wires),
	})
}
