// Package arm simulates a planar two-link arm on a mobile base chasing a
// moving target.
//
// The [Engine] owns the kinematic chain
//
//	base → joint1 → link1 → joint2 → link2
//
// together with the target pose and the episode clock, and exposes the
// step/reset contract used by reinforcement-learning loops:
//
//	eng, _ := arm.New(arm.DefaultConfig())
//	obs := eng.Reset()
//	for {
//	    tr := eng.Step(policy(obs))
//	    if tr.Done {
//	        break
//	    }
//	    obs = tr.Observation
//	}
//
// # Rewards
//
// Each tick is scored in a fixed order and the last matching branch wins:
// distance shaping or the success bonus, then the out-of-bounds penalty,
// then the timeout penalty. A tick that both times out and reaches the
// target therefore reports the timeout.
//
// # Thread Safety
//
// Engines are NOT thread-safe. Run parallel episodes on separate engines.
package arm
