// Copyright © 2024 Galvanized Logic Inc.

// Package space implements the simulation scheduler (spec.md §4): it
// owns the entity arena, the physics engines, the media registries,
// and the controllable entities, and drives them through the exact
// seven-phase tick sequence (spec.md §4.6) across a worker pool using
// one of the three load-balancing strategies (spec.md §4.7). This is
// the kernel's top-level type, the way vu.Eng is the teacher's
// top-level type threading scene, engines, and the render loop
// together (gazed/vu eng.go).
package space

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/swarmkit/arena/balance"
	"github.com/swarmkit/arena/controllable"
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/index"
	"github.com/swarmkit/arena/kernelerr"
	"github.com/swarmkit/arena/loopfn"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/media"
	"github.com/swarmkit/arena/physics"
	"github.com/swarmkit/arena/pool"
	"github.com/swarmkit/arena/query"
)

// fastMover is implemented by physics engines that can report their
// fastest body's speed, used for §4.7 sub-step selection. Engines that
// don't implement it are treated as always-slow.
type fastMover interface {
	FastestSpeed() float64
}

// Space is the scheduler tying entities, engines, media, and
// controllables together for one simulated arena.
type Space struct {
	cfg SceneConfig
	log *slog.Logger
	m   *metrics

	arena *entity.Arena

	mu            sync.Mutex // guards the slices below and dirty.
	engines       []physics.Engine
	engineByID    map[string]physics.Engine
	mediaByName   map[string]media.Medium
	controllables []*controllable.Entity

	idx index.Index

	pool            *pool.Pool
	strategy        balance.Strategy // controllable-entity phases: act, pre/post-step, sense_control.
	mediaStrategy   balance.Strategy // media phase, sized independently of controllable count.
	engineSplit     balance.Strategy // physics-engine work assignment, computed at engine-add time.

	hooks loopfn.Runner

	tick uint64
}

// New builds a Space from cfg. hooks may be the zero value if the
// caller registers no loop-function callbacks. logger defaults to
// slog.Default() if nil; reg may be nil to disable metrics.
func New(cfg SceneConfig, hooks loopfn.Runner, logger *slog.Logger, reg prometheus.Registerer) *Space {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Space{
		cfg:         cfg,
		log:         logger,
		m:           newMetrics(reg),
		arena:       entity.NewArena(),
		engineByID:  map[string]physics.Engine{},
		mediaByName: map[string]media.Medium{},
		idx:         index.NewUniformGrid(1.0),
		pool:        pool.New(cfg.Workers),
		engineSplit: balance.NewScatterGather(),
		hooks:       hooks,
	}
	s.strategy = newStrategy(cfg.Balance)
	s.mediaStrategy = newStrategy(cfg.Balance)
	s.m.workerBusy.Set(float64(cfg.Workers))
	return s
}

// Arena exposes the entity arena new entities are created in.
func (s *Space) Arena() *entity.Arena { return s.arena }

// Index exposes the frozen positional index (controllable.SenseContext).
func (s *Space) Index() index.Index { return s.idx }

// Medium returns a registered medium by name, or nil.
func (s *Space) Medium(name string) media.Medium {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mediaByName[name]
}

// ClosestIntersectedByRay implements controllable.SenseContext.
func (s *Space) ClosestIntersectedByRay(origin, dir lin.V3, exclude ...entity.ID) (entity.ID, float64, bool) {
	ex := make(map[entity.ID]bool, len(exclude))
	for _, id := range exclude {
		ex[id] = true
	}
	s.mu.Lock()
	engines := append([]physics.Engine(nil), s.engines...)
	s.mu.Unlock()
	hit, ok := query.ClosestEmbodiedIntersectedByRay(engines, origin, dir, ex)
	return hit.EntityID, hit.T, ok
}

// Push implements controllable.ActContext.
func (s *Space) Push(engineID string, id entity.ID, delta lin.V3) {
	s.mu.Lock()
	eng, ok := s.engineByID[engineID]
	s.mu.Unlock()
	if ok {
		eng.Push(id, delta)
	}
}

// AddEngine registers a physics engine and recomputes the fixed
// engine/worker split (spec.md §4.7: "physics-engine assignment is
// computed once at engine-add time").
func (s *Space) AddEngine(e physics.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engines = append(s.engines, e)
	s.engineByID[e.EngineID()] = e
	s.engineSplit.MarkDirty()
}

// enginesSnapshot returns a copy of the currently registered engines,
// safe to range over without holding s.mu.
func (s *Space) enginesSnapshot() []physics.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]physics.Engine(nil), s.engines...)
}

// AddEntityToEngine seats c's embodied entity in the named engine at
// pose, installing the body-anchor/anchor-body model spec.md §3
// describes. If c already has a model in that engine, it is re-seated
// at pose instead (EngineModel.MoveTo) rather than recreated. Returns
// false if the engine is unknown or rejected the pose.
func (s *Space) AddEntityToEngine(engineID string, c *controllable.Entity, pos lin.V3, rot lin.Q) bool {
	s.mu.Lock()
	eng, ok := s.engineByID[engineID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if existing := c.Model(engineID); existing != nil {
		existing.MoveTo(pos, rot)
		return true
	}
	if !eng.AddEntity(c.ID(), pos, rot, c.Movable) {
		return false
	}
	c.Origin().Refresh(pos, rot)
	c.SetModel(engineID, physics.NewEngineModel(s.enginesSnapshot, c.ID(), c.Origin(), c.Movable))
	return true
}

// AddMedium registers a medium under its own Name().
func (s *Space) AddMedium(m media.Medium) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mediaByName[m.Name()] = m
}

// AddControllable registers a controllable entity and flags the
// load-balancing assignment dirty (spec.md §4.7).
func (s *Space) AddControllable(c *controllable.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controllables = append(s.controllables, c)
	s.strategy.MarkDirty()
}

// RemoveControllable deregisters c, flagging the assignment dirty.
func (s *Space) RemoveControllable(c *controllable.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.controllables {
		if existing == c {
			s.controllables = append(s.controllables[:i], s.controllables[i+1:]...)
			s.strategy.MarkDirty()
			return
		}
	}
}

// Start spins up the worker pool (no-op for a zero-worker Space).
func (s *Space) Start() { s.pool.Start() }

// Cancel requests cooperative shutdown (spec.md §4.5 "Cancellation").
func (s *Space) Cancel() { s.pool.Cancel() }

// Join waits for every worker to exit after Cancel.
func (s *Space) Join() { s.pool.Join() }

// Init runs the scene-level loop-function init hook.
func (s *Space) Init() error {
	if err := s.hooks.Init(); err != nil {
		return kernelerr.Wrap(kernelerr.KindEngineFailure, err, "loop-function init failed")
	}
	return nil
}

// Reset restores Space to its post-Init state: tick counter to zero,
// every controllable's sensors/actuators/controller reset, and the
// positional index cleared. Idempotent — calling it twice equals
// calling it once (spec.md §8 "Idempotence").
func (s *Space) Reset() error {
	s.mu.Lock()
	controllables := append([]*controllable.Entity(nil), s.controllables...)
	s.mu.Unlock()

	s.tick = 0
	s.idx.Clear()
	for _, c := range controllables {
		if err := c.Reset(); err != nil {
			return err
		}
	}
	if err := s.hooks.Reset(); err != nil {
		return kernelerr.Wrap(kernelerr.KindEngineFailure, err, "loop-function reset failed")
	}
	return nil
}

// Destroy tears down every controllable and runs the scene-level
// destroy hook. Join must be called first if the pool was started.
func (s *Space) Destroy() {
	s.mu.Lock()
	controllables := append([]*controllable.Entity(nil), s.controllables...)
	s.mu.Unlock()
	for _, c := range controllables {
		c.Destroy()
	}
	s.hooks.Destroy()
}

// Tick advances the simulation by one tick of duration dt, running the
// seven phases of spec.md §4.6 in strict order.
func (s *Space) Tick(dt float64) error {
	s.mu.Lock()
	controllables := append([]*controllable.Entity(nil), s.controllables...)
	engines := append([]physics.Engine(nil), s.engines...)
	mediums := mediaSlice(s.mediaByName)
	s.mu.Unlock()

	if err := s.phaseAct(controllables); err != nil {
		return err
	}
	s.commitActuatorCommands(controllables)

	substeps := s.subStepCount(engines)
	if err := s.phasePhysics(engines, dt, substeps); err != nil {
		return err
	}

	if err := physics.TransferEntities(engines); err != nil {
		return err
	}

	s.syncBodies(controllables)
	s.rebuildIndex(controllables)

	if err := s.phaseMedia(mediums, controllables, engines); err != nil {
		return err
	}

	if err := s.phaseControllableStep(controllables, func(c *controllable.Entity) error {
		return c.RunPreStep(s.tick, dt)
	}); err != nil {
		return err
	}

	if err := s.phaseSenseControl(controllables); err != nil {
		return err
	}

	if err := s.phaseControllableStep(controllables, func(c *controllable.Entity) error {
		return c.RunPostStep(s.tick, dt)
	}); err != nil {
		return err
	}

	s.tick++
	return nil
}

func newStrategy(mode BalanceMode) balance.Strategy {
	switch mode {
	case BalanceQuantity:
		return balance.NewBalanceQuantity()
	case BalanceLength:
		return balance.NewBalanceLength()
	default:
		return balance.NewScatterGather()
	}
}

func mediaSlice(m map[string]media.Medium) []media.Medium {
	out := make([]media.Medium, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// subStepCount implements spec.md §4.7's sub-step selection: k_low
// below v_th, k_high at or above it, chosen from the fastest-moving
// body across every engine that can report one.
func (s *Space) subStepCount(engines []physics.Engine) int {
	fastest := 0.0
	for _, e := range engines {
		if fm, ok := e.(fastMover); ok {
			if v := fm.FastestSpeed(); v > fastest {
				fastest = v
			}
		}
	}
	if fastest < s.cfg.SubStepSpeedThreshold {
		return s.cfg.SubStepsLow
	}
	return s.cfg.SubStepsHigh
}

func (s *Space) phaseAct(controllables []*controllable.Entity) error {
	return s.pool.RunBalancedPhase(s.strategy, len(controllables), func(i int) error {
		return controllables[i].Act(s)
	})
}

func (s *Space) phasePhysics(engines []physics.Engine, dt float64, substeps int) error {
	return s.pool.RunBalancedPhase(s.engineSplit, len(engines), func(i int) error {
		engines[i].Update(dt, substeps)
		return nil
	})
}

func (s *Space) phaseMedia(mediums []media.Medium, controllables []*controllable.Entity, engines []physics.Engine) error {
	occluder := media.NewPhysicsOccluder(engines)
	pose := anchorPoseLookup(controllables)
	return s.pool.RunBalancedPhase(s.mediaStrategy, len(mediums), func(i int) error {
		mediums[i].SyncPositions(pose)
		mediums[i].Update(s.idx, occluder)
		return nil
	})
}

// anchorPoseLookup builds a by-id lookup over the origin anchor of
// every controllable, for media.Medium.SyncPositions to read this
// tick's post-physics positions from rather than registration-time
// snapshots.
func anchorPoseLookup(controllables []*controllable.Entity) func(entity.ID) (lin.V3, bool) {
	byID := make(map[entity.ID]lin.V3, len(controllables))
	for _, c := range controllables {
		byID[c.ID()] = c.Origin().Position
	}
	return func(id entity.ID) (lin.V3, bool) {
		pos, ok := byID[id]
		return pos, ok
	}
}

// commitActuatorCommands runs every controllable's engine models'
// UpdateFromEntityStatus ("actuator -> body"), between the act phase
// and the physics phase (spec.md §4.1).
func (s *Space) commitActuatorCommands(controllables []*controllable.Entity) {
	for _, c := range controllables {
		for _, engineID := range c.ModelEngines() {
			if model := c.Model(engineID); model != nil {
				model.UpdateFromEntityStatus()
			}
		}
	}
}

// syncBodies runs every controllable's engine models' UpdateEntityStatus
// ("body -> anchors") and propagates the collision flag, after physics
// and transfer and before the index is rebuilt (spec.md §4.1, §8: "every
// enabled anchor reflects the post-physics pose").
func (s *Space) syncBodies(controllables []*controllable.Entity) {
	for _, c := range controllables {
		colliding := false
		dirty := false
		for _, engineID := range c.ModelEngines() {
			model := c.Model(engineID)
			if model == nil {
				continue
			}
			model.UpdateEntityStatus()
			colliding = colliding || model.IsColliding()
			dirty = true
		}
		if dirty {
			c.SetColliding(colliding)
			c.MarkDirty()
		}
	}
}

func (s *Space) phaseSenseControl(controllables []*controllable.Entity) error {
	return s.pool.RunBalancedPhase(s.strategy, len(controllables), func(i int) error {
		return controllables[i].Sense(s)
	})
}

func (s *Space) phaseControllableStep(controllables []*controllable.Entity, step func(*controllable.Entity) error) error {
	return s.pool.RunBalancedPhase(s.strategy, len(controllables), func(i int) error {
		return step(controllables[i])
	})
}

// rebuildIndex repopulates the positional index from every embodied
// controllable's current bounding box (spec.md §4.2, run "between
// physics and sense").
func (s *Space) rebuildIndex(controllables []*controllable.Entity) {
	s.idx.Clear()
	for _, c := range controllables {
		s.idx.UpdateAABB(uint32(c.ID()), c.QueryAABB())
	}
}
