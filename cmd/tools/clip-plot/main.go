// Command clip-plot renders a stored clip's joint rotation track as a PNG of
// Euler angle curves, for offline inspection of synthesised or recorded
// motion without the debug HTTP endpoints.
//
// Input is either a clip JSON file (-f) or a clip ID in a clip database (-db).
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/motion.report/internal/clip"
	"github.com/banshee-data/motion.report/internal/clipstore"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
)

func main() {
	file := flag.String("f", "", "clip JSON file to plot")
	dbFile := flag.String("db", "", "clip database to read from (with -id)")
	clipID := flag.String("id", "", "clip ID to load from -db")
	jointName := flag.String("joint", "hips", "joint to plot")
	output := flag.String("o", "clip.png", "output PNG path")
	flag.Parse()

	c, err := loadClip(*file, *dbFile, *clipID)
	if err != nil {
		log.Fatalf("load clip: %v", err)
	}

	joint := rig.Joint(*jointName)
	if !rig.Known(joint) {
		log.Fatalf("unknown joint %q", *jointName)
	}
	track, ok := c.TrackByName(rig.AbstractPath(joint) + ".quaternion")
	if !ok {
		log.Fatalf("clip %q has no rotation track for %q", c.Name, joint)
	}

	if err := plotTrack(c.Name, joint, track, *output); err != nil {
		log.Fatalf("plot: %v", err)
	}
	log.Printf("✓ Created: %s (%d samples)", *output, track.SampleCount())
}

func loadClip(file, dbFile, clipID string) (clip.Clip, error) {
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return clip.Clip{}, err
		}
		defer f.Close()
		return clip.Decode(f)
	case dbFile != "" && clipID != "":
		db, err := sql.Open("sqlite", dbFile)
		if err != nil {
			return clip.Clip{}, err
		}
		defer db.Close()
		return clipstore.New(db).GetClip(context.Background(), clipID)
	default:
		return clip.Clip{}, fmt.Errorf("either -f or -db with -id is required")
	}
}

func plotTrack(name string, joint rig.Joint, track clip.Track, output string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s rotation", name, joint)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Angle (deg)"

	n := track.SampleCount()
	xs := make(plotter.XYs, 0, n)
	ys := make(plotter.XYs, 0, n)
	zs := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		q := quat.Number{
			Imag: track.Values[i*4],
			Jmag: track.Values[i*4+1],
			Kmag: track.Values[i*4+2],
			Real: track.Values[i*4+3],
		}
		e := rigmath.ToEuler(q)
		t := track.Times[i]
		xs = append(xs, plotter.XY{X: t, Y: e.X})
		ys = append(ys, plotter.XY{X: t, Y: e.Y})
		zs = append(zs, plotter.XY{X: t, Y: e.Z})
	}

	series := []struct {
		label string
		pts   plotter.XYs
		col   color.RGBA
	}{
		{"X", xs, color.RGBA{R: 220, G: 60, B: 60, A: 255}},
		{"Y", ys, color.RGBA{R: 60, G: 160, B: 60, A: 255}},
		{"Z", zs, color.RGBA{R: 60, G: 90, B: 220, A: 255}},
	}
	for _, s := range series {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return err
		}
		line.Color = s.col
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4*vg.Inch, output)
}
