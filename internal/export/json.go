package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/se2"
	"github.com/san-kum/armsim/internal/storage"
)

type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

func poseOf(t *se2.Transform) Pose {
	return Pose{X: t.X(), Y: t.Y(), Theta: t.Angle()}
}

type Frame struct {
	Time   float64 `json:"time"`
	Reward float64 `json:"reward"`
	Base   Pose    `json:"base"`
	Elbow  Pose    `json:"elbow"`
	Tip    Pose    `json:"tip"`
	Target Pose    `json:"target"`
}

type ExportData struct {
	Run    storage.RunMetadata `json:"run"`
	Steps  int                 `json:"steps"`
	Frames []Frame             `json:"frames"`
}

// JSON writes a stored run and its trajectory as one indented document.
func JSON(w io.Writer, meta storage.RunMetadata, snaps []arm.Snapshot) error {
	data := ExportData{
		Run:    meta,
		Steps:  len(snaps),
		Frames: make([]Frame, len(snaps)),
	}
	for i, s := range snaps {
		data.Frames[i] = Frame{
			Time:   s.Time,
			Reward: s.Reward,
			Base:   poseOf(s.Base),
			Elbow:  poseOf(s.Link1),
			Tip:    poseOf(s.Link2),
			Target: poseOf(s.Target),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
