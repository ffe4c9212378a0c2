package game

import (
	"math"
	"time"
)

const (
	Acceleration  = 400.0
	JumpVelocity  = -300.0
	StopThreshold = 5.0
	RespawnDelay  = time.Second
	// FallMargin is how far below the map a body may drop before it respawns.
	FallMargin = 100.0
)

// DefaultSpawn is where the character enters every level.
var DefaultSpawn = Point{X: 64, Y: 200}

const (
	AnimWalkLeft  = "walk_left"
	AnimWalkRight = "walk_right"
	AnimIdle      = "idle"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type State int

const (
	StateIdle State = iota
	StateWalkingLeft
	StateWalkingRight
	StateAirborne
	StateDead
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalkingLeft:
		return "walking-left"
	case StateWalkingRight:
		return "walking-right"
	case StateAirborne:
		return "airborne"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Body is the physics engine's view of the character. The engine integrates
// velocity and resolves collisions; the controller only sets intents.
type Body interface {
	Position() Point
	VelocityX() float64
	SetPosition(p Point)
	SetVelocity(vx, vy float64)
	SetVelocityX(vx float64)
	SetVelocityY(vy float64)
	SetAccelerationX(ax float64)
	OnGround() bool
	SetEnabled(enabled bool)
	Play(animation string)
	SetFlipX(flip bool)
}

// Input is the held state of the controls for one frame.
type Input struct {
	Left  bool
	Right bool
	Jump  bool
}

type Controller struct {
	body      Body
	spawn     Point
	mapHeight float64

	state      State
	animation  string
	deadFor    time.Duration
	checkpoint bool

	onDeath      func()
	onCheckpoint func()
}

type Option func(*Controller)

func WithSpawn(p Point) Option { return func(c *Controller) { c.spawn = p } }

// OnDeath registers fn to run every time the character dies.
func OnDeath(fn func()) Option { return func(c *Controller) { c.onDeath = fn } }

// OnCheckpoint registers fn to run the first time a checkpoint is reached.
func OnCheckpoint(fn func()) Option { return func(c *Controller) { c.onCheckpoint = fn } }

// NewController places body at the spawn point of a map mapHeightPx pixels
// tall.
func NewController(body Body, mapHeightPx int, opts ...Option) *Controller {
	c := &Controller{
		body:      body,
		spawn:     DefaultSpawn,
		mapHeight: float64(mapHeightPx),
	}
	for _, opt := range opts {
		opt(c)
	}
	body.SetPosition(c.spawn)
	body.SetVelocity(0, 0)
	return c
}

func (c *Controller) State() State { return c.state }

// CheckpointReached reports whether the checkpoint has fired in this run.
func (c *Controller) CheckpointReached() bool { return c.checkpoint }

// Tick advances the controller by one frame of length dt.
func (c *Controller) Tick(in Input, dt time.Duration) {
	if c.state == StateDead {
		c.deadFor += dt
		if c.deadFor >= RespawnDelay {
			// Slightly above the ground.
			c.respawn(Point{X: c.spawn.X, Y: c.spawn.Y - 10})
			c.body.SetEnabled(true)
		}
		return
	}

	onGround := c.body.OnGround()
	switch {
	case in.Left:
		c.body.SetAccelerationX(-Acceleration)
		if c.play(AnimWalkLeft) {
			c.body.SetFlipX(true)
		}
	case in.Right:
		c.body.SetAccelerationX(Acceleration)
		if c.play(AnimWalkRight) {
			c.body.SetFlipX(false)
		}
	default:
		c.body.SetAccelerationX(0)
		if onGround {
			c.play(AnimIdle)
		}
		if math.Abs(c.body.VelocityX()) < StopThreshold {
			c.body.SetVelocityX(0)
		}
	}

	if in.Jump && onGround {
		c.body.SetVelocityY(JumpVelocity)
		onGround = false
	}

	if c.body.Position().Y > c.mapHeight+FallMargin {
		c.respawn(c.spawn)
		return
	}

	switch {
	case !onGround:
		c.state = StateAirborne
	case in.Left:
		c.state = StateWalkingLeft
	case in.Right:
		c.state = StateWalkingRight
	default:
		c.state = StateIdle
	}
}

// Overlap reports that the body touches a tile with the given index.
func (c *Controller) Overlap(index int) {
	if c.state == StateDead {
		return
	}
	switch Classify(index) {
	case ClassDeadly:
		c.state = StateDead
		c.deadFor = 0
		c.body.SetEnabled(false)
		if c.onDeath != nil {
			c.onDeath()
		}
	case ClassCheckpoint:
		if c.checkpoint {
			return
		}
		c.checkpoint = true
		if c.onCheckpoint != nil {
			c.onCheckpoint()
		}
	}
}

// play starts an animation unless it is already running.
func (c *Controller) play(anim string) bool {
	if c.animation == anim {
		return false
	}
	c.body.Play(anim)
	c.animation = anim
	return true
}

func (c *Controller) respawn(at Point) {
	c.body.SetPosition(at)
	c.body.SetVelocity(0, 0)
	c.body.SetAccelerationX(0)
	c.animation = ""
	c.deadFor = 0
	c.state = StateIdle
}
