package export

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/armsim/internal/arm"
)

var (
	tipRGBA    = color.RGBA{R: 0x00, G: 0xa0, B: 0x00, A: 0xff}
	targetRGBA = color.RGBA{R: 0xd0, G: 0x30, B: 0x30, A: 0xff}
	baseRGBA   = color.RGBA{R: 0x30, G: 0x70, B: 0xd0, A: 0xff}
)

// TrajectoryPNG plots the base, end effector and target paths inside the
// workspace square.
func TrajectoryPNG(path string, snaps []arm.Snapshot, boundary int) error {
	if len(snaps) == 0 {
		return fmt.Errorf("export: empty trajectory")
	}

	p := plot.New()
	p.Title.Text = "Episode trajectory"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	b := float64(boundary)
	p.X.Min, p.X.Max = -b, b
	p.Y.Min, p.Y.Max = -b, b
	p.Add(plotter.NewGrid())

	series := []struct {
		name  string
		color color.Color
		pose  func(arm.Snapshot) (float64, float64)
	}{
		{"base", baseRGBA, func(s arm.Snapshot) (float64, float64) { return s.Base.X(), s.Base.Y() }},
		{"target", targetRGBA, func(s arm.Snapshot) (float64, float64) { return s.Target.X(), s.Target.Y() }},
		{"end effector", tipRGBA, func(s arm.Snapshot) (float64, float64) { return s.Link2.X(), s.Link2.Y() }},
	}
	for _, ser := range series {
		pts := make(plotter.XYs, len(snaps))
		for i, s := range snaps {
			pts[i].X, pts[i].Y = ser.pose(s)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = ser.color
		p.Add(line)
		p.Legend.Add(ser.name, line)
	}

	last := snaps[len(snaps)-1]
	pose := plotter.XYs{
		{X: last.Base.X(), Y: last.Base.Y()},
		{X: last.Link1.X(), Y: last.Link1.Y()},
		{X: last.Link2.X(), Y: last.Link2.Y()},
	}
	armLine, armPoints, err := plotter.NewLinePoints(pose)
	if err != nil {
		return err
	}
	armLine.LineStyle.Width = vg.Points(3)
	p.Add(armLine, armPoints)

	return savePNG(p, 6, 6, path)
}

// RewardPNG plots the per-tick reward of an episode.
func RewardPNG(path string, snaps []arm.Snapshot) error {
	if len(snaps) == 0 {
		return fmt.Errorf("export: empty trajectory")
	}

	p := plot.New()
	p.Title.Text = "Reward"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "reward"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(snaps))
	for i, s := range snaps {
		pts[i].X = s.Time
		pts[i].Y = s.Reward
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	return savePNG(p, 8, 4, path)
}

func savePNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(96),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
