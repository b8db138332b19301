package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/se2"
)

var ErrEmptyTrajectory = errors.New("analysis: empty trajectory")

type Report struct {
	Steps    int
	Duration float64

	FinalDistance   float64
	MinDistance     float64
	MinDistanceTime float64
	MeanDistance    float64
	StdDistance     float64

	TipPath    float64
	BasePath   float64
	TargetPath float64

	Return     float64
	MeanReward float64
}

func Analyze(snaps []arm.Snapshot) (Report, error) {
	if len(snaps) == 0 {
		return Report{}, ErrEmptyTrajectory
	}

	d := Distances(snaps)
	rewards := make([]float64, len(snaps))
	for i, s := range snaps {
		rewards[i] = s.Reward
	}

	imin := floats.MinIdx(d)
	mean, std := stat.MeanStdDev(d, nil)
	if len(d) == 1 {
		std = 0
	}
	return Report{
		Steps:           len(snaps),
		Duration:        snaps[len(snaps)-1].Time,
		FinalDistance:   d[len(d)-1],
		MinDistance:     d[imin],
		MinDistanceTime: snaps[imin].Time,
		MeanDistance:    mean,
		StdDistance:     std,
		TipPath:         pathLength(snaps, func(s arm.Snapshot) *se2.Transform { return s.Link2 }),
		BasePath:        pathLength(snaps, func(s arm.Snapshot) *se2.Transform { return s.Base }),
		TargetPath:      pathLength(snaps, func(s arm.Snapshot) *se2.Transform { return s.Target }),
		Return:          floats.Sum(rewards),
		MeanReward:      stat.Mean(rewards, nil),
	}, nil
}

// Distances is the tip to target distance at every snapshot.
func Distances(snaps []arm.Snapshot) []float64 {
	d := make([]float64, len(snaps))
	for i, s := range snaps {
		d[i] = r2.Norm(r2.Sub(s.Target.Translation(), s.Link2.Translation()))
	}
	return d
}

func pathLength(snaps []arm.Snapshot, pick func(arm.Snapshot) *se2.Transform) float64 {
	var total float64
	for i := 1; i < len(snaps); i++ {
		total += r2.Norm(r2.Sub(pick(snaps[i]).Translation(), pick(snaps[i-1]).Translation()))
	}
	return total
}

// wrapAngle maps a to (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
