// Package chart renders simulation runs as PNG charts.
package chart

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/cxd309/accel-profile/internal/sim"
)

var (
	cmdColor    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	targetColor = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
	speedColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

// Size of the rendered chart.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 7 * vg.Inch
	dpi           = 96
)

// SaveRun writes the chart for log to a PNG file at path, creating parent
// directories as needed.
func SaveRun(log sim.SimulationLog, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteRun(bw, log, DefaultWidth, DefaultHeight); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// WriteRun renders two stacked panels, commanded acceleration against the
// schedule target and vehicle speed, both over simulation time.
func WriteRun(w io.Writer, log sim.SimulationLog, width, height vg.Length) error {
	if len(log.Output) == 0 {
		return fmt.Errorf("run log has no rows")
	}

	accel, err := accelPlot(log)
	if err != nil {
		return err
	}
	speed, err := speedPlot(log)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	dc := draw.New(c)

	plots := [][]*plot.Plot{{accel}, {speed}}
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(10)}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

func accelPlot(log sim.SimulationLog) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Acceleration profile %s", log.Meta.SimulationID)
	p.Y.Label.Text = "accel (m/s²)"
	p.Add(plotter.NewGrid())

	cmd := make(plotter.XYs, len(log.Output))
	for i, row := range log.Output {
		cmd[i].X = row.Timestamp
		cmd[i].Y = row.AccelCmd
	}
	cmdLine, err := plotter.NewLine(cmd)
	if err != nil {
		return nil, fmt.Errorf("command line: %w", err)
	}
	cmdLine.Color = cmdColor
	cmdLine.Width = vg.Points(2)
	p.Add(cmdLine)
	p.Legend.Add("commanded", cmdLine)

	if target := scheduleSteps(log); len(target) > 0 {
		targetLine, err := plotter.NewLine(target)
		if err != nil {
			return nil, fmt.Errorf("target line: %w", err)
		}
		targetLine.Color = targetColor
		targetLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(targetLine)
		p.Legend.Add("schedule", targetLine)
	}
	p.Legend.Top = true
	return p, nil
}

func speedPlot(log sim.SimulationLog) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "speed (m/s)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(log.Output))
	for i, row := range log.Output {
		pts[i].X = row.Timestamp
		pts[i].Y = row.VEgo
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("speed line: %w", err)
	}
	line.Color = speedColor
	line.Width = vg.Points(2)
	p.Add(line)
	return p, nil
}

// scheduleSteps draws the schedule as a step function starting at the first
// tick where the executor was running.
func scheduleSteps(log sim.SimulationLog) plotter.XYs {
	var start float64
	found := false
	for _, row := range log.Output {
		if row.Running {
			start, found = row.Timestamp, true
			break
		}
	}
	if !found || len(log.Schedule) == 0 {
		return nil
	}

	pts := make(plotter.XYs, 0, 2*len(log.Schedule))
	prevEnd := 0.0
	for _, e := range log.Schedule {
		pts = append(pts,
			plotter.XY{X: start + prevEnd, Y: e.Accel},
			plotter.XY{X: start + e.EndTime, Y: e.Accel},
		)
		prevEnd = e.EndTime
	}
	return pts
}
