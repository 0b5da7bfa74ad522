// Copyright © 2024 Galvanized Logic Inc.

package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmkit/arena/controllable"
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/loopfn"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/physics"
)

type countingController struct{ steps int }

func (c *countingController) Init(any) error     { return nil }
func (c *countingController) Reset() error         { return nil }
func (c *countingController) Destroy()             {}
func (c *countingController) ControlStep() error   { c.steps++; return nil }

func newRobot(s *Space, pos lin.V3) (*controllable.Entity, *countingController) {
	em := entity.NewEmbodied(s.Arena().Create(), true)
	em.Origin().Set(pos, lin.Q{W: 1})
	ctrl := &countingController{}
	c := controllable.New(em, ctrl)
	s.AddControllable(c)
	return c, ctrl
}

func newArenaEngine(id string) *physics.PointMassEngine {
	return physics.NewPointMassEngine(id, lin.AABB{Min: lin.V3{X: -50, Y: -50, Z: -50}, Max: lin.V3{X: 50, Y: 50, Z: 50}}, 0.02)
}

// Scenario 1: single robot, empty arena, 100 ticks, no actuators
// driven. Position and orientation unchanged, no collisions, exactly
// 100 control_step calls. Asserted through the embodied anchor and
// collision flag, not the engine directly, so the test only passes if
// the body -> anchor sync actually runs.
func TestScenarioSingleRobotEmptyArena(t *testing.T) {
	cfg := DefaultSceneConfig()
	s := New(cfg, loopfn.Runner{}, nil, nil)
	eng := newArenaEngine("main")
	s.AddEngine(eng)

	c, ctrl := newRobot(s, lin.V3{})
	require.True(t, s.AddEntityToEngine("main", c, lin.V3{}, lin.Q{W: 1}))

	for i := 0; i < 100; i++ {
		require.NoError(t, s.Tick(0.02))
	}

	assert.Equal(t, 100, ctrl.steps)
	assert.Equal(t, lin.V3{}, c.Origin().Position)
	assert.False(t, c.IsCollisionDetected())
}

// Scenario 2: two robots on a collision course, closing until their
// bounding boxes overlap. is_collision_detected must become true for
// both, read from the embodied entity, proving the collision flag set
// by the engine actually propagates to the anchor-level entity.
func TestScenarioTwoRobotsOnCollisionCourse(t *testing.T) {
	cfg := DefaultSceneConfig()
	s := New(cfg, loopfn.Runner{}, nil, nil)
	eng := newArenaEngine("main")
	s.AddEngine(eng)

	left, _ := newRobot(s, lin.V3{X: -2})
	right, _ := newRobot(s, lin.V3{X: 2})
	require.True(t, s.AddEntityToEngine("main", left, lin.V3{X: -2}, lin.Q{W: 1}))
	require.True(t, s.AddEntityToEngine("main", right, lin.V3{X: 2}, lin.Q{W: 1}))
	eng.SetShape(left.ID(), physics.SphereShape{Radius: 0.5})
	eng.SetShape(right.ID(), physics.SphereShape{Radius: 0.5})
	eng.Push(left.ID(), lin.V3{X: 1})
	eng.Push(right.ID(), lin.V3{X: -1})

	collided := false
	for i := 0; i < 200 && !collided; i++ {
		require.NoError(t, s.Tick(0.02))
		collided = left.IsCollisionDetected() && right.IsCollisionDetected()
	}
	assert.True(t, collided, "expected both robots to report is_collision_detected")
}

// Scenario 4: an entity crosses from one engine's volume into an
// adjacent one. Exactly one transfer occurs, left engine to right
// engine, and the tick reports no UnsimulableEntity error.
func TestScenarioEntityTransferBetweenEngines(t *testing.T) {
	cfg := DefaultSceneConfig()
	s := New(cfg, loopfn.Runner{}, nil, nil)
	left := physics.NewPointMassEngine("left", lin.AABB{Min: lin.V3{X: -10, Y: -10, Z: -10}, Max: lin.V3{X: 0, Y: 10, Z: 10}}, 0.02)
	right := physics.NewPointMassEngine("right", lin.AABB{Min: lin.V3{X: 0, Y: -10, Z: -10}, Max: lin.V3{X: 10, Y: 10, Z: 10}}, 0.02)
	s.AddEngine(left)
	s.AddEngine(right)

	c, _ := newRobot(s, lin.V3{X: -1})
	require.True(t, s.AddEntityToEngine("left", c, lin.V3{X: -1}, lin.Q{W: 1}))
	left.Push(c.ID(), lin.V3{X: 5})

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Tick(0.02))
	}

	_, _, onLeft := left.Pose(c.ID())
	pos, _, onRight := right.Pose(c.ID())
	assert.False(t, onLeft, "entity should have left the left engine")
	assert.True(t, onRight, "entity should have been accepted by the right engine")
	assert.Greater(t, pos.X, 0.0)
	assert.Equal(t, pos, c.Origin().Position, "anchor should reflect the entity's new engine's pose")
}

// Scenario 3: ray through three stationary blocks at x=1,2,3; query
// from (0,0,0.1) to (10,0,0.1). Three increasing-t hits, closest is
// the x=1 block.
func TestScenarioRayThroughThreeBlocks(t *testing.T) {
	cfg := DefaultSceneConfig()
	s := New(cfg, loopfn.Runner{}, nil, nil)
	eng := physics.NewPointMassEngine("main", lin.AABB{Min: lin.V3{X: -50, Y: -50, Z: -50}, Max: lin.V3{X: 50, Y: 50, Z: 50}}, 0.02)
	s.AddEngine(eng)

	for i, x := range []float64{1, 2, 3} {
		id := entity.ID(i + 100)
		eng.AddEntity(id, lin.V3{X: x, Z: 0.1}, lin.Q{W: 1}, false)
		eng.SetShape(id, physics.BoxShape{Half: lin.V3{X: 0.25, Y: 0.25, Z: 0.25}})
	}

	hitID, t1, ok := s.ClosestIntersectedByRay(lin.V3{Z: 0.1}, lin.V3{X: 10})
	require.True(t, ok)
	assert.Equal(t, entity.ID(100), hitID)
	assert.Greater(t, t1, 0.0)
}

// Reset is idempotent: calling it twice equals calling it once.
func TestResetIsIdempotent(t *testing.T) {
	cfg := DefaultSceneConfig()
	s := New(cfg, loopfn.Runner{}, nil, nil)
	c, _ := newRobot(s, lin.V3{})
	_ = c

	require.NoError(t, s.Reset())
	firstTick := s.tick
	require.NoError(t, s.Reset())
	assert.Equal(t, firstTick, s.tick)
}

// Re-entry law: disable-then-enable restores the pre-disable pose. The
// robot carries no sensors, so only the pose is checked here.
func TestReEntryRestoresPose(t *testing.T) {
	cfg := DefaultSceneConfig()
	s := New(cfg, loopfn.Runner{}, nil, nil)
	eng := physics.NewPointMassEngine("main", lin.AABB{Min: lin.V3{X: -50, Y: -50, Z: -50}, Max: lin.V3{X: 50, Y: 50, Z: 50}}, 0.02)
	s.AddEngine(eng)

	c, _ := newRobot(s, lin.V3{X: 4})
	eng.AddEntity(c.ID(), lin.V3{X: 4}, lin.Q{W: 1}, true)

	c.Enabled = false
	require.NoError(t, c.Reset())
	c.Enabled = true

	pos, _, ok := eng.Pose(c.ID())
	require.True(t, ok)
	assert.Equal(t, lin.V3{X: 4}, pos)
}

// Worker count 0 runs inline and produces the same entity count per
// phase as a threaded Space on the same scene.
func TestZeroWorkerSpaceMatchesThreadedEntityCount(t *testing.T) {
	build := func(workers int) (*Space, *countingController) {
		cfg := DefaultSceneConfig()
		cfg.Workers = workers
		s := New(cfg, loopfn.Runner{}, nil, nil)
		s.Start()
		eng := physics.NewPointMassEngine("main", lin.AABB{Min: lin.V3{X: -50, Y: -50, Z: -50}, Max: lin.V3{X: 50, Y: 50, Z: 50}}, 0.02)
		s.AddEngine(eng)
		c, ctrl := newRobot(s, lin.V3{})
		eng.AddEntity(c.ID(), lin.V3{}, lin.Q{W: 1}, true)
		return s, ctrl
	}

	inline, inlineCtrl := build(0)
	threaded, threadedCtrl := build(4)
	defer func() { threaded.Cancel(); threaded.Join() }()

	for i := 0; i < 20; i++ {
		require.NoError(t, inline.Tick(0.02))
		require.NoError(t, threaded.Tick(0.02))
	}
	assert.Equal(t, inlineCtrl.steps, threadedCtrl.steps)
}
