// Package monitor provides debugging-only HTTP endpoints that render quick
// go-echarts views of stored clips, for eyeballing joint curves without the
// full UI.
package monitor

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/motion.report/internal/clip"
	"github.com/banshee-data/motion.report/internal/clipstore"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/rigmath"
)

// ClipCharts serves chart endpoints over a clip store.
type ClipCharts struct {
	store clipstore.Store
}

// NewClipCharts returns a handler set over the given store.
func NewClipCharts(store clipstore.Store) *ClipCharts {
	return &ClipCharts{store: store}
}

// HandleJointAngles renders an HTML line chart of one joint's Euler-decoded
// rotation track (one series per axis). Debugging-only endpoint (no auth).
// Query params:
//   - id: stored clip ID (required)
//   - joint: joint identifier (default "hips")
func (cc *ClipCharts) HandleJointAngles(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing clip id", http.StatusBadRequest)
		return
	}
	joint := rig.Joint(r.URL.Query().Get("joint"))
	if joint == "" {
		joint = rig.Hips
	}
	if !rig.Known(joint) {
		http.Error(w, fmt.Sprintf("unknown joint %q", joint), http.StatusBadRequest)
		return
	}

	c, err := cc.store.GetClip(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	track, ok := c.TrackByName(rig.AbstractPath(joint) + ".quaternion")
	if !ok {
		http.Error(w, fmt.Sprintf("clip has no rotation track for %q", joint), http.StatusNotFound)
		return
	}

	times, xs, ys, zs := decodeEulerSeries(track)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: %s rotation", c.Name, joint),
			Subtitle: "Euler degrees, intrinsic XYZ",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "degrees"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seconds"}),
	)
	line.SetXAxis(times).
		AddSeries("X", xs).
		AddSeries("Y", ys).
		AddSeries("Z", zs)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		http.Error(w, fmt.Sprintf("render chart: %v", err), http.StatusInternalServerError)
	}
}

func decodeEulerSeries(t clip.Track) (times []string, xs, ys, zs []opts.LineData) {
	for i := 0; i < t.SampleCount(); i++ {
		q := quat.Number{
			Imag: t.Values[i*4],
			Jmag: t.Values[i*4+1],
			Kmag: t.Values[i*4+2],
			Real: t.Values[i*4+3],
		}
		e := rigmath.ToEuler(q)
		times = append(times, fmt.Sprintf("%.3f", t.Times[i]))
		xs = append(xs, opts.LineData{Value: e.X})
		ys = append(ys, opts.LineData{Value: e.Y})
		zs = append(zs, opts.LineData{Value: e.Z})
	}
	return times, xs, ys, zs
}
