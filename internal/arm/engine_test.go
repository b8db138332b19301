package arm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/noise"
	"github.com/san-kum/armsim/internal/se2"
)

func fixedTarget(x, y int) Option {
	return WithTargetSampler(func(int) (int, int) { return x, y })
}

func quiet() Option {
	return WithNoise(func(float64) noise.Source { return noise.Zero{} })
}

func mustEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func near(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero link1", func(c *Config) { c.Link1 = 0 }},
		{"negative link2", func(c *Config) { c.Link2 = -1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -0.1 }},
		{"zero boundary", func(c *Config) { c.Boundary = 0 }},
		{"negative target speed", func(c *Config) { c.TargetSpeed = -1 }},
		{"zero max steps", func(c *Config) { c.MaxSteps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			e, err := New(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if e != nil {
				t.Error("expected nil engine on error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	cfg.Tolerance = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"dt", "tolerance"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestResetExtendsArmAlongX(t *testing.T) {
	tests := []struct{ l1, l2 float64 }{{1, 1}, {1.5, 0.5}, {0.3, 2}}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Link1, cfg.Link2 = tt.l1, tt.l2
		e := mustEngine(t, cfg, fixedTarget(3, 3), quiet())

		if got, want := e.EndEffector().Translation(), (r2.Vec{X: tt.l1 + tt.l2}); !near(got, want, 1e-12) {
			t.Errorf("links (%g, %g): end effector at %v, want %v", tt.l1, tt.l2, got, want)
		}
		if got, want := e.Elbow().Translation(), (r2.Vec{X: tt.l1}); !near(got, want, 1e-12) {
			t.Errorf("links (%g, %g): elbow at %v, want %v", tt.l1, tt.l2, got, want)
		}
		if !e.Base().ApproxEqual(se2.Identity(), 0) {
			t.Errorf("base not at identity after reset: %v", e.Base())
		}
		if e.Time() != 0 || e.Done() || len(e.Trajectory()) != 0 {
			t.Error("episode state not cleared on reset")
		}
	}
}

func TestResetSamplesIntegerTargets(t *testing.T) {
	e := mustEngine(t, DefaultConfig(), WithSeed(7))
	b := float64(DefaultBoundary)
	seen := map[r2.Vec]bool{}
	for i := 0; i < 500; i++ {
		e.Reset()
		p := e.Target().Translation()
		if p.X != math.Trunc(p.X) || p.Y != math.Trunc(p.Y) {
			t.Fatalf("target %v is not on the integer grid", p)
		}
		if p.X < -b || p.X >= b || p.Y < -b || p.Y >= b {
			t.Fatalf("target %v outside [-%g, %g)", p, b, b)
		}
		if e.Target().Angle() != 0 {
			t.Fatalf("target heading %f, want 0", e.Target().Angle())
		}
		seen[p] = true
	}
	if len(seen) < 50 {
		t.Errorf("only %d distinct targets in 500 resets", len(seen))
	}
}

func TestZeroActionMovesOnlyTarget(t *testing.T) {
	cfg := DefaultConfig()
	e := mustEngine(t, cfg, fixedTarget(-3, 2), quiet())

	prevReward := math.Inf(-1)
	for i := 1; i <= 50; i++ {
		tr := e.Step(Action{})

		wantTarget := r2.Vec{X: -3 + float64(i)*cfg.TargetSpeed*cfg.Dt, Y: 2}
		if got := e.Target().Translation(); !near(got, wantTarget, 1e-9) {
			t.Fatalf("step %d: target at %v, want %v", i, got, wantTarget)
		}
		if !near(e.EndEffector().Translation(), r2.Vec{X: 2}, 1e-12) {
			t.Fatalf("step %d: arm moved to %v", i, e.EndEffector().Translation())
		}
		if !e.Base().ApproxEqual(se2.Identity(), 0) {
			t.Fatalf("step %d: base moved to %v", i, e.Base())
		}

		// With the arm at rest the link2 frame is a pure translation.
		wantObs := r2.Sub(wantTarget, r2.Vec{X: 2})
		if !near(tr.Observation.LinkToTarget(), wantObs, 1e-9) {
			t.Fatalf("step %d: observation %v, want %v", i, tr.Observation.LinkToTarget(), wantObs)
		}

		dist := r2.Norm(wantObs)
		if math.Abs(tr.Reward+dist*dist) > 1e-9 {
			t.Errorf("step %d: reward %f, want %f", i, tr.Reward, -dist*dist)
		}
		// The target approaches the arm tip, so the penalty shrinks.
		if tr.Reward <= prevReward {
			t.Errorf("step %d: reward %f did not increase from %f", i, tr.Reward, prevReward)
		}
		prevReward = tr.Reward
		if tr.Done {
			t.Fatalf("step %d: unexpected termination %v", i, tr.Info.Outcome)
		}
	}
}

func TestTargetClampedToBoundary(t *testing.T) {
	tests := []struct {
		name    string
		start   r2.Vec
		heading float64
		want    r2.Vec
	}{
		{"positive x", r2.Vec{X: 4, Y: 1}, 0, r2.Vec{X: 5, Y: 1}},
		{"negative x", r2.Vec{X: -4, Y: -2}, math.Pi, r2.Vec{X: -5, Y: -2}},
		{"positive y", r2.Vec{X: 0, Y: 4}, math.Pi / 2, r2.Vec{X: 0, Y: 5}},
		{"negative y", r2.Vec{X: 1, Y: -4}, -math.Pi / 2, r2.Vec{X: 1, Y: -5}},
		{"corner", r2.Vec{X: 4.5, Y: 4.5}, math.Pi / 4, r2.Vec{X: 5, Y: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TargetSpeed = 200 // two units per tick
			e := mustEngine(t, cfg, quiet())
			e.target = se2.New(tt.start, tt.heading)

			e.Step(Action{})
			got := e.Target().Translation()
			if !near(got, tt.want, 1e-9) {
				t.Errorf("target at %v, want %v", got, tt.want)
			}
			b := float64(cfg.Boundary)
			if tt.want.X == b || tt.want.X == -b {
				if got.X != tt.want.X {
					t.Errorf("clamped x = %.17g, want exactly %g", got.X, tt.want.X)
				}
			}
			if tt.want.Y == b || tt.want.Y == -b {
				if got.Y != tt.want.Y {
					t.Errorf("clamped y = %.17g, want exactly %g", got.Y, tt.want.Y)
				}
			}
		})
	}
}

func TestActionIsClipped(t *testing.T) {
	cfg := DefaultConfig()
	a := mustEngine(t, cfg, fixedTarget(-5, -5), quiet())
	b := mustEngine(t, cfg, fixedTarget(-5, -5), quiet())

	a.Step(Action{10, 100, -100, 100})
	b.Step(Action{1, 2 * math.Pi, -2 * math.Pi, math.Pi})

	if !a.EndEffector().ApproxEqual(b.EndEffector(), 0) || !a.Base().ApproxEqual(b.Base(), 0) {
		t.Errorf("out of range action was not clipped: %v vs %v", a.EndEffector(), b.EndEffector())
	}

	got := ClipAction(Action{-1, 0, 7, -7})
	want := Action{0, 0, 2 * math.Pi, -math.Pi}
	if got != want {
		t.Errorf("ClipAction = %v, want %v", got, want)
	}
}

func TestSuccess(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tolerance = 0.01
	e := mustEngine(t, cfg, fixedTarget(2, 0), quiet())

	// The target moves 0.012 along x, the base follows by 0.01.
	tr := e.Step(Action{1, 0, 0, 0})
	if tr.Reward != SuccessReward || !tr.Done {
		t.Fatalf("got reward %f done %v, want %f true", tr.Reward, tr.Done, SuccessReward)
	}
	if tr.Info.Outcome != Success {
		t.Errorf("outcome %v, want success", tr.Info.Outcome)
	}
	if tr.Info.Distance >= cfg.Tolerance {
		t.Errorf("distance %f not below tolerance", tr.Info.Distance)
	}
	if tr.Info.Counters.Successes != 1 {
		t.Errorf("successes = %d, want 1", tr.Info.Counters.Successes)
	}
}

func TestOutOfBounds(t *testing.T) {
	cfg := DefaultConfig()
	e := mustEngine(t, cfg, fixedTarget(-5, -5), quiet())

	var tr Transition
	steps := 0
	for !tr.Done {
		tr = e.Step(Action{1, 0, 0, 0})
		steps++
		if steps > 2*cfg.MaxSteps {
			t.Fatal("episode never terminated")
		}
	}

	if tr.Info.Outcome != OutOfBounds || tr.Reward != FailureReward {
		t.Fatalf("got %v reward %f, want out_of_bounds %f", tr.Info.Outcome, tr.Reward, FailureReward)
	}
	if e.Base().X() <= float64(cfg.Boundary) {
		t.Errorf("base x = %f, expected beyond boundary", e.Base().X())
	}
	if steps < 500 || steps > 502 {
		t.Errorf("left the workspace after %d steps, want ~501", steps)
	}
	if e.Counters().OutOfBounds != 1 {
		t.Errorf("out of bounds counter = %d, want 1", e.Counters().OutOfBounds)
	}
}

func TestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	e := mustEngine(t, cfg, fixedTarget(-5, -5), quiet())

	var tr Transition
	steps := 0
	for !tr.Done {
		tr = e.Step(Action{})
		steps++
		if steps > 2*cfg.MaxSteps {
			t.Fatal("episode never terminated")
		}
	}

	if tr.Info.Outcome != Timeout || tr.Reward != FailureReward {
		t.Fatalf("got %v reward %f, want timeout %f", tr.Info.Outcome, tr.Reward, FailureReward)
	}
	if e.Time() <= cfg.Horizon() {
		t.Errorf("terminated at t=%f before horizon %f", e.Time(), cfg.Horizon())
	}
	if steps != cfg.MaxSteps && steps != cfg.MaxSteps+1 {
		t.Errorf("timed out after %d steps", steps)
	}
	if len(e.Trajectory()) != steps {
		t.Errorf("trajectory has %d snapshots, want %d", len(e.Trajectory()), steps)
	}
}

// stageOverlap places the base outside the workspace facing back inwards
// with the target right under the arm tip after the next target move.
func stageOverlap(e *Engine) {
	e.base = se2.New(r2.Vec{X: 5.5}, math.Pi)
	e.forwardKinematics()
	tip := e.link2Global.Translation()
	e.target = se2.New(r2.Vec{X: tip.X - e.cfg.TargetSpeed*e.cfg.Dt, Y: tip.Y}, 0)
}

func TestTerminationPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		timeout bool
		oob     bool
		outcome Outcome
		reward  float64
	}{
		{"success only", false, false, Success, SuccessReward},
		{"out of bounds beats success", false, true, OutOfBounds, FailureReward},
		{"timeout beats success", true, false, Timeout, FailureReward},
		{"timeout beats out of bounds and success", true, true, Timeout, FailureReward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEngine(t, DefaultConfig(), quiet())
			if tt.oob {
				stageOverlap(e)
			} else {
				tip := e.link2Global.Translation()
				e.target = se2.New(r2.Vec{X: tip.X - e.cfg.TargetSpeed*e.cfg.Dt}, 0)
			}
			if tt.timeout {
				e.t = e.cfg.Horizon()
			}

			tr := e.Step(Action{})
			if tr.Info.Distance >= e.cfg.Tolerance {
				t.Fatalf("scenario did not reach the target: distance %f", tr.Info.Distance)
			}
			if !tr.Done {
				t.Fatal("expected done")
			}
			if tr.Info.Outcome != tt.outcome {
				t.Errorf("outcome %v, want %v", tr.Info.Outcome, tt.outcome)
			}
			if tr.Reward != tt.reward {
				t.Errorf("reward %f, want %f", tr.Reward, tt.reward)
			}

			// Every matching branch still counts, regardless of which one wins.
			c := tr.Info.Counters
			if c.Successes != 1 {
				t.Errorf("successes = %d, want 1", c.Successes)
			}
			if want := btoi(tt.oob); c.OutOfBounds != want {
				t.Errorf("out of bounds = %d, want %d", c.OutOfBounds, want)
			}
			if want := btoi(tt.timeout); c.Timeouts != want {
				t.Errorf("timeouts = %d, want %d", c.Timeouts, want)
			}
		})
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestStepAfterDoneDoesNotAdvance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tolerance = 0.01
	e := mustEngine(t, cfg, fixedTarget(2, 0), quiet())

	first := e.Step(Action{1, 0, 0, 0})
	if !first.Done {
		t.Fatal("expected terminal step")
	}
	tm, target := e.Time(), e.Target()

	again := e.Step(Action{1, 1, 1, 1})
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("terminal transition changed (-first +again):\n%s", diff)
	}
	if e.Time() != tm || !e.Target().ApproxEqual(target, 0) || len(e.Trajectory()) != 1 {
		t.Error("simulation advanced after termination")
	}

	e.Reset()
	if e.Done() {
		t.Error("Reset did not clear the terminal state")
	}
	if e.Counters().Successes != 1 {
		t.Error("counters should survive Reset")
	}
}

func TestObservationFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Link1, cfg.Link2 = 1.5, 0.7
	e := mustEngine(t, cfg, fixedTarget(-2, 3), quiet())

	for i := 0; i < 40; i++ {
		tr := e.Step(Action{0.5, 0.8, -1.3, 2.1})

		// link2ToTarget, then pushed back through link1, joint2 and joint1.
		want := e.link2Global.Inverse().Apply(e.Target().Translation())
		steps := []*se2.Transform{nil, e.link1, se2.Compose(e.link1, e.joint2), e.joint1}
		for k, f := range steps {
			if f != nil {
				want = f.Apply(want)
			}
			if got := tr.Observation.Segment(k); !near(got, want, 1e-9) {
				t.Fatalf("step %d segment %d: got %v, want %v", i, k, got, want)
			}
		}
		if got := e.link1.Apply(tr.Observation.LinkToTarget()); !near(tr.Observation.Err1(), got, 1e-12) {
			t.Fatalf("step %d: err1 %v is not link1 offset applied to %v", i, tr.Observation.Err1(), tr.Observation.LinkToTarget())
		}
	}
}

func TestObservationUnequalLinksAtReset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Link1, cfg.Link2 = 1.5, 0.7
	obs := mustEngine(t, cfg, fixedTarget(-2, 3), quiet()).Observation()

	tests := []struct {
		name string
		got  r2.Vec
		want r2.Vec
	}{
		{"link2 to target", obs.LinkToTarget(), r2.Vec{X: -4.2, Y: 3}},
		{"err1", obs.Err1(), r2.Vec{X: -2.7, Y: 3}},
		{"err2", obs.Err2(), r2.Vec{X: -1.2, Y: 3}},
		{"err3", obs.Err3(), r2.Vec{X: -1.2, Y: 3}},
	}
	for _, tt := range tests {
		if !near(tt.got, tt.want, 1e-12) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestDefaultNoiseDoesNotShiftTargets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tolerance = 1e-9
	a := mustEngine(t, cfg, WithSeed(21))
	b := mustEngine(t, cfg, WithSeed(21))

	// Different numbers of noise draws in the first episode.
	for i := 0; i < 3; i++ {
		a.Step(Action{})
	}
	for i := 0; i < 300; i++ {
		b.Step(Action{})
	}

	a.Reset()
	b.Reset()
	if !a.Target().ApproxEqual(b.Target(), 0) {
		t.Errorf("second episode targets differ: %v vs %v", a.Target(), b.Target())
	}
}

func TestClipActionNaN(t *testing.T) {
	got := ClipAction(Action{math.NaN(), math.NaN(), 1, math.NaN()})
	want := Action{0, -2 * math.Pi, 1, -math.Pi}
	if got != want {
		t.Errorf("ClipAction = %v, want %v", got, want)
	}

	e := mustEngine(t, DefaultConfig(), fixedTarget(4, 4), quiet())
	e.Step(Action{math.NaN(), 0, 0, 0})
	if x := e.Base().X(); math.IsNaN(x) {
		t.Error("NaN action reached the base pose")
	}
}

func TestResetDeterminism(t *testing.T) {
	newSeq := func(float64) noise.Source {
		i := 0
		return noise.Func(func() float64 {
			i++
			return math.Sin(float64(i)) * 0.7
		})
	}
	e := mustEngine(t, DefaultConfig(), fixedTarget(1, -2), WithNoise(newSeq))

	run := func() ([]Observation, []float64) {
		obs := []Observation{e.Reset()}
		var rewards []float64
		for i := 0; i < 300; i++ {
			a := Action{0.3, math.Cos(float64(i) / 10), math.Sin(float64(i) / 7), -0.5}
			tr := e.Step(a)
			obs = append(obs, tr.Observation)
			rewards = append(rewards, tr.Reward)
			if tr.Done {
				break
			}
		}
		return obs, rewards
	}

	obs1, rew1 := run()
	obs2, rew2 := run()
	if diff := cmp.Diff(obs1, obs2); diff != "" {
		t.Errorf("observations differ between resets (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(rew1, rew2); diff != "" {
		t.Errorf("rewards differ between resets (-first +second):\n%s", diff)
	}
}

func TestSeededEnginesAgree(t *testing.T) {
	a := mustEngine(t, DefaultConfig(), WithSeed(99))
	b := mustEngine(t, DefaultConfig(), WithSeed(99))
	for i := 0; i < 200; i++ {
		ta, tb := a.Step(Action{0.2, 0.1, 0.3, -0.2}), b.Step(Action{0.2, 0.1, 0.3, -0.2})
		if ta != tb {
			t.Fatalf("step %d: seeded engines diverged", i)
		}
		if ta.Done {
			break
		}
	}
}

func TestTrajectory(t *testing.T) {
	e := mustEngine(t, DefaultConfig(), fixedTarget(-4, 4), quiet())
	for i := 0; i < 5; i++ {
		e.Step(Action{0.5, 0.2, 0, 0})
	}

	traj := e.Trajectory()
	if len(traj) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(traj))
	}
	for i, s := range traj {
		want := float64(i+1) * DefaultDt
		if math.Abs(s.Time-want) > 1e-12 {
			t.Errorf("snapshot %d time %f, want %f", i, s.Time, want)
		}
	}
	last := traj[4]
	if !last.Link2.ApproxEqual(e.EndEffector(), 0) || !last.Target.ApproxEqual(e.Target(), 0) {
		t.Error("last snapshot does not match the engine state")
	}

	before := traj[0].Base.X()
	e.Step(Action{1, 0, 0, 0})
	if traj[0].Base.X() != before {
		t.Error("snapshot aliases live engine state")
	}

	e.Reset()
	if len(e.Trajectory()) != 0 {
		t.Error("trajectory not cleared on reset")
	}
	if len(traj) != 5 {
		t.Error("reset modified a trajectory handed out earlier")
	}
}

func TestSpaces(t *testing.T) {
	as := ActionSpace()
	if as.Dim() != ActionDim {
		t.Fatalf("action dim %d", as.Dim())
	}
	wantLow := []float64{0, -2 * math.Pi, -2 * math.Pi, -math.Pi}
	wantHigh := []float64{1, 2 * math.Pi, 2 * math.Pi, math.Pi}
	if diff := cmp.Diff(wantLow, as.Low()); diff != "" {
		t.Errorf("action low (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantHigh, as.High()); diff != "" {
		t.Errorf("action high (-want +got):\n%s", diff)
	}

	cfg := DefaultConfig()
	cfg.Link1, cfg.Link2, cfg.Boundary = 2, 0.5, 10
	os := ObservationSpace(cfg)
	wantObsHigh := []float64{10, 10, 12, 12, 10.5, 10.5, 10, 10}
	if diff := cmp.Diff(wantObsHigh, os.High()); diff != "" {
		t.Errorf("observation high (-want +got):\n%s", diff)
	}
	for i, l := range os.Low() {
		if l != -wantObsHigh[i] {
			t.Errorf("observation low[%d] = %f", i, l)
		}
	}

	if !as.Contains([]float64{0.5, 0, 0, 0}) || as.Contains([]float64{2, 0, 0, 0}) || as.Contains([]float64{0}) {
		t.Error("Contains misbehaves")
	}
	if diff := cmp.Diff([]float64{1, 0, -2 * math.Pi, 0}, as.Clip([]float64{3, 0, -9})); diff != "" {
		t.Errorf("Clip (-want +got):\n%s", diff)
	}
}

func TestEngineLogsTerminalEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := DefaultConfig()
	cfg.Tolerance = 0.01
	e := mustEngine(t, cfg, fixedTarget(2, 0), quiet(), WithLogger(zap.New(core).Sugar()))

	e.Step(Action{1, 0, 0, 0})

	entries := logs.FilterMessage("target reached").All()
	if len(entries) != 1 {
		t.Fatalf("expected one success log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["successes"]; got != int64(1) {
		t.Errorf("successes field = %v, want 1", got)
	}
}
