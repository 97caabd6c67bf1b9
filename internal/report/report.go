// Package report renders build artefacts for eyeballing a dataset: a label
// histogram as PNG and a steering trace page as HTML.
package report

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/steering.dataset/internal/dataset"
)

// ErrNoLabels is returned when there is nothing to plot.
var ErrNoLabels = errors.New("report: dataset has no labels")

// DefaultBins is the histogram bin count used by the CLI.
const DefaultBins = 41

// Histogram writes a PNG histogram of labels with the given bin count.
// A non-positive bins lets the plotter choose.
func Histogram(w io.Writer, title string, labels []float64, bins int) error {
	if len(labels) == 0 {
		return ErrNoLabels
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Steering"
	p.Y.Label.Text = "Frames"

	h, err := plotter.NewHist(plotter.Values(labels), bins)
	if err != nil {
		return fmt.Errorf("failed to bin labels: %w", err)
	}
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Trace writes an HTML page with the label sequence as a line chart and the
// examples each session pass contributed as a bar chart.
func Trace(w io.Writer, title string, ds *dataset.Dataset) error {
	if ds == nil || len(ds.Labels) == 0 {
		return ErrNoLabels
	}

	x := make([]int, len(ds.Labels))
	y := make([]opts.LineData, len(ds.Labels))
	for i, v := range ds.Labels {
		x[i] = i
		y[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frames=%d sessions=%d", ds.Len(), len(ds.Sessions))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Example", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Steering", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(x).
		AddSeries("wheel", y, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	page := components.NewPage()
	page.AddCharts(line)

	if len(ds.Sessions) > 0 {
		names := make([]string, len(ds.Sessions))
		counts := make([]opts.BarData, len(ds.Sessions))
		for i, s := range ds.Sessions {
			names[i] = sessionName(s)
			counts[i] = opts.BarData{Value: s.Examples}
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
			charts.WithTitleOpts(opts.Title{Title: "Examples per session"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		bar.SetXAxis(names).
			AddSeries("examples", counts,
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
			)
		page.AddCharts(bar)
	}

	return page.Render(w)
}

func sessionName(s dataset.SessionStats) string {
	if s.Mirror {
		return fmt.Sprintf("epoch%02d/mirrored", s.Epoch)
	}
	return fmt.Sprintf("epoch%02d", s.Epoch)
}

// WriteSummary prints the label statistics and per-session counts as an
// aligned table.
func WriteSummary(w io.Writer, ds *dataset.Dataset) error {
	s := ds.Summary()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "examples\t%d\n", s.Count)
	fmt.Fprintf(tw, "mean\t%.4f\n", s.Mean)
	fmt.Fprintf(tw, "stddev\t%.4f\n", s.StdDev)
	fmt.Fprintf(tw, "range\t[%.4f, %.4f]\n", s.Min, s.Max)
	fmt.Fprintf(tw, "left/zero/right\t%d/%d/%d\n", s.Negative, s.Zero, s.Positive)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SESSION\tMODE\tPROBED\tDECODED\tLABELS\tEXAMPLES")
	for _, ss := range ds.Sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			sessionName(ss), ss.ColorMode, ss.ProbedFrames, ss.DecodedFrames, ss.LabelRows, ss.Examples)
	}
	return tw.Flush()
}
