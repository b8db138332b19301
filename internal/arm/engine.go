package arm

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/noise"
	"github.com/san-kum/armsim/internal/se2"
)

const (
	SuccessReward = 1000.0
	FailureReward = -3000.0
)

// NoiseFactory builds the target heading perturbation for one episode.
type NoiseFactory func(dt float64) noise.Source

// TargetSampler picks the initial target position in [-boundary, boundary).
type TargetSampler func(boundary int) (x, y int)

type Option func(*Engine)

func WithNoise(f NoiseFactory) Option {
	return func(e *Engine) { e.newNoise = f }
}

func WithTargetSampler(s TargetSampler) Option {
	return func(e *Engine) { e.sampleTarget = s }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSeed seeds the default target sampler and noise process. Each draws
// from its own stream.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng, e.noiseRng = newRand(seed), newNoiseRand(seed) }
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func newNoiseRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed)^0xda942042e4dd58b5, uint64(seed)))
}

type Engine struct {
	cfg Config

	base   *se2.Transform
	joint1 *se2.Transform
	link1  *se2.Transform
	joint2 *se2.Transform
	link2  *se2.Transform
	target *se2.Transform

	// Derived every tick from the chain above.
	link1Global *se2.Transform
	link2Global *se2.Transform

	t          float64
	done       bool
	last       Transition
	trajectory []Snapshot
	counters   Counters

	rng          *rand.Rand
	noiseRng     *rand.Rand
	noise        noise.Source
	newNoise     NoiseFactory
	sampleTarget TargetSampler
	logger       *zap.SugaredLogger
}

// New validates cfg and returns an engine that has already been reset.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := rand.Int64()
		e.rng, e.noiseRng = newRand(seed), newNoiseRand(seed)
	}
	if e.logger == nil {
		e.logger = zap.NewNop().Sugar()
	}
	if e.newNoise == nil {
		e.newNoise = noise.OUFactory(noise.DefaultMu, noise.DefaultTheta, noise.DefaultSigma, e.noiseRng)
	}
	if e.sampleTarget == nil {
		e.sampleTarget = func(b int) (int, int) {
			return e.rng.IntN(2*b) - b, e.rng.IntN(2*b) - b
		}
	}

	e.Reset()
	return e, nil
}

// Reset starts a new episode with the arm fully extended along the base x
// axis and returns the first observation.
func (e *Engine) Reset() Observation {
	e.base = se2.Identity()
	e.joint1 = se2.Identity()
	e.link1 = se2.New(r2.Vec{X: e.cfg.Link1}, 0)
	e.joint2 = se2.Identity()
	e.link2 = se2.New(r2.Vec{X: e.cfg.Link2}, 0)
	e.forwardKinematics()

	x, y := e.sampleTarget(e.cfg.Boundary)
	e.target = se2.New(r2.Vec{X: float64(x), Y: float64(y)}, 0)

	e.noise = e.newNoise(e.cfg.Dt)
	e.t = 0
	e.done = false
	e.last = Transition{}
	e.trajectory = make([]Snapshot, 0, e.cfg.MaxSteps+1)

	obs := e.Observation()
	e.last.Observation = obs
	return obs
}

// Step advances the episode by one tick. Actions outside ActionSpace are
// clipped. Once the episode has ended, Step returns the terminal transition
// without advancing until Reset is called.
func (e *Engine) Step(a Action) Transition {
	if e.done {
		e.logger.Debugw("step after episode end ignored", "t", e.t)
		return e.last
	}

	dt := e.cfg.Dt
	e.moveTarget()

	a = ClipAction(a)
	e.base.Increment(r2.Vec{X: a[0] * dt}, a[1]*dt)
	e.joint1.Increment(r2.Vec{}, a[2]*dt)
	e.joint2.Increment(r2.Vec{}, a[3]*dt)
	e.forwardKinematics()

	e.t += dt

	reward, info := e.evaluate()
	e.trajectory = append(e.trajectory, Snapshot{
		Base:   e.base.Clone(),
		Link1:  e.link1Global.Clone(),
		Link2:  e.link2Global.Clone(),
		Target: e.target.Clone(),
		Time:   e.t,
		Reward: reward,
	})

	e.done = info.Outcome != Running
	e.last = Transition{
		Observation: e.Observation(),
		Reward:      reward,
		Done:        e.done,
		Info:        info,
	}
	return e.last
}

func (e *Engine) moveTarget() {
	e.target.Increment(r2.Vec{X: e.cfg.TargetSpeed * e.cfg.Dt}, e.noise.Next()*e.cfg.Dt)

	b := float64(e.cfg.Boundary)
	e.target.SetX(math.Max(-b, math.Min(b, e.target.X())))
	e.target.SetY(math.Max(-b, math.Min(b, e.target.Y())))
}

func (e *Engine) forwardKinematics() {
	e.link1Global = se2.Chain(e.base, e.joint1, e.link1)
	e.link2Global = se2.Chain(e.link1Global, e.joint2, e.link2)
}

// evaluate scores the current tick. The branches run in a fixed order and
// each later match overwrites the reward of the earlier ones.
func (e *Engine) evaluate() (float64, Info) {
	info := Info{Outcome: Running}
	info.Distance = r2.Norm(r2.Sub(e.target.Translation(), e.link2Global.Translation()))

	var reward float64
	if info.Distance < e.cfg.Tolerance {
		reward = SuccessReward
		info.Outcome = Success
		e.counters.Successes++
		e.logger.Infow("target reached", "t", e.t, "distance", info.Distance, "successes", e.counters.Successes)
	} else {
		reward = -info.Distance * info.Distance
	}

	b := float64(e.cfg.Boundary)
	if math.Abs(e.base.X()) > b || math.Abs(e.base.Y()) > b {
		reward = FailureReward
		info.Outcome = OutOfBounds
		e.counters.OutOfBounds++
		e.logger.Infow("base left the workspace", "t", e.t, "x", e.base.X(), "y", e.base.Y(), "out_of_bounds", e.counters.OutOfBounds)
	}

	if e.t > e.cfg.Horizon() {
		reward = FailureReward
		info.Outcome = Timeout
		e.counters.Timeouts++
		e.logger.Infow("episode timed out", "t", e.t, "timeouts", e.counters.Timeouts)
	}

	info.Counters = e.counters
	return reward, info
}

// Observation is the target in the link2 frame followed by that vector
// pushed back through the link1 offset, joint2 and joint1 in turn.
func (e *Engine) Observation() Observation {
	linkToTarget := e.link2Global.Inverse().Apply(e.target.Translation())
	err1 := e.link1.Apply(linkToTarget)
	err2 := se2.Compose(e.link1, e.joint2).Apply(err1)
	err3 := e.joint1.Apply(err2)
	return observationOf(linkToTarget, err1, err2, err3)
}

func (e *Engine) ObservationSpace() Space { return ObservationSpace(e.cfg) }
func (e *Engine) ActionSpace() Space      { return ActionSpace() }

func (e *Engine) Config() Config     { return e.cfg }
func (e *Engine) Time() float64      { return e.t }
func (e *Engine) Done() bool         { return e.done }
func (e *Engine) Counters() Counters { return e.counters }

// Trajectory returns the snapshots of the current episode. The slice is
// replaced, not cleared, on Reset.
func (e *Engine) Trajectory() []Snapshot { return e.trajectory }

func (e *Engine) Base() *se2.Transform        { return e.base.Clone() }
func (e *Engine) Target() *se2.Transform      { return e.target.Clone() }
func (e *Engine) EndEffector() *se2.Transform { return e.link2Global.Clone() }
func (e *Engine) Elbow() *se2.Transform       { return e.link1Global.Clone() }
