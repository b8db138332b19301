package arm_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/noise"
)

var _ = Describe("Episode", func() {
	var (
		cfg    arm.Config
		engine *arm.Engine
		target [2]int
	)

	newEngine := func() *arm.Engine {
		e, err := arm.New(cfg,
			arm.WithTargetSampler(func(int) (int, int) { return target[0], target[1] }),
			arm.WithNoise(func(float64) noise.Source { return noise.Zero{} }),
		)
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	runUntilDone := func(a arm.Action) (arm.Transition, int) {
		var tr arm.Transition
		steps := 0
		for !tr.Done {
			tr = engine.Step(a)
			steps++
			Expect(steps).To(BeNumerically("<=", 2*cfg.MaxSteps), "episode never terminated")
		}
		return tr, steps
	}

	BeforeEach(func() {
		cfg = arm.DefaultConfig()
		target = [2]int{-5, -5}
	})

	JustBeforeEach(func() {
		engine = newEngine()
	})

	Describe("reset", func() {
		It("returns the target seen from the extended arm", func() {
			obs := engine.Reset()
			Expect(obs.LinkToTarget().X).To(BeNumerically("~", -7, 1e-12))
			Expect(obs.LinkToTarget().Y).To(BeNumerically("~", -5, 1e-12))
			Expect(obs.Err3().X).To(BeNumerically("~", -5, 1e-12))
			Expect(obs.Err3().Y).To(BeNumerically("~", -5, 1e-12))
		})
	})

	Context("when the arm tip meets the target", func() {
		BeforeEach(func() {
			cfg.Tolerance = 0.01
			target = [2]int{2, 0}
		})

		It("pays the success bonus and ends the episode", func() {
			tr := engine.Step(arm.Action{1, 0, 0, 0})
			Expect(tr.Done).To(BeTrue())
			Expect(tr.Reward).To(Equal(arm.SuccessReward))
			Expect(tr.Info.Outcome).To(Equal(arm.Success))
			Expect(engine.Counters().Successes).To(Equal(1))
		})
	})

	Context("when the base drives out of the workspace", func() {
		It("penalises and ends the episode", func() {
			tr, _ := runUntilDone(arm.Action{1, 0, 0, 0})
			Expect(tr.Info.Outcome).To(Equal(arm.OutOfBounds))
			Expect(tr.Reward).To(Equal(arm.FailureReward))
			Expect(math.Abs(engine.Base().X())).To(BeNumerically(">", float64(cfg.Boundary)))
		})
	})

	Context("when the arm never reaches the target", func() {
		It("times out after the configured number of ticks", func() {
			tr, steps := runUntilDone(arm.Action{})
			Expect(tr.Info.Outcome).To(Equal(arm.Timeout))
			Expect(tr.Reward).To(Equal(arm.FailureReward))
			Expect(steps).To(BeNumerically("~", cfg.MaxSteps, 1))
			Expect(engine.Time()).To(BeNumerically(">", cfg.Horizon()))
		})

		It("keeps shaping the reward by squared distance until then", func() {
			tr := engine.Step(arm.Action{})
			Expect(tr.Done).To(BeFalse())
			Expect(tr.Reward).To(BeNumerically("~", -tr.Info.Distance*tr.Info.Distance, 1e-12))
		})
	})

	Context("with a short horizon", func() {
		BeforeEach(func() {
			cfg.MaxSteps = 10
		})

		It("times out sooner", func() {
			_, steps := runUntilDone(arm.Action{})
			Expect(steps).To(BeNumerically("~", 10, 1))
		})
	})

	Describe("after termination", func() {
		BeforeEach(func() {
			cfg.Tolerance = 0.01
			target = [2]int{2, 0}
		})

		It("stays terminated until reset", func() {
			first := engine.Step(arm.Action{1, 0, 0, 0})
			Expect(engine.Step(arm.Action{0, 1, 1, 1})).To(Equal(first))

			engine.Reset()
			Expect(engine.Done()).To(BeFalse())
			Expect(engine.Trajectory()).To(BeEmpty())
		})
	})
})
