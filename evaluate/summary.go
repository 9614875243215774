package evaluate

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/montanaflynn/stats"
	"go.uber.org/multierr"

	"go.viam.com/motioneval/motion"
)

// Distribution describes a set of per pair mean errors.
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

// Summary aggregates a report.
type Summary struct {
	Pairs   int          `json:"pairs"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Errored int          `json:"errored"`
	MPJPE   Distribution `json:"mpjpe"`
	MPJRE   Distribution `json:"mpjre"`

	mpjpe []float64
}

// Summarize computes pass counts and the distribution of per pair mean MPJPE and MPJRE. Pairs that
// errored or had an empty window do not contribute to the distributions.
func Summarize(r *Report) (Summary, error) {
	s := Summary{Pairs: len(r.Rows), Errored: r.Errored()}
	var mpjpe, mpjre []float64
	for _, row := range r.Rows {
		if row.Success {
			s.Passed++
		} else if row.Err == nil {
			s.Failed++
		}
		if row.Result == nil || row.Result.Report.Empty() {
			continue
		}
		mpjpe = append(mpjpe, row.Result.Report.MeanMPJPE())
		mpjre = append(mpjre, row.Result.Report.MeanMPJRE())
	}
	s.mpjpe = mpjpe
	var err error
	s.MPJPE, err = distribution(mpjpe)
	if err != nil {
		return s, err
	}
	s.MPJRE, err = distribution(mpjre)
	return s, err
}

func distribution(values []float64) (Distribution, error) {
	if len(values) == 0 {
		return Distribution{}, nil
	}
	data := stats.Float64Data(values)
	mean, err1 := data.Mean()
	median, err2 := data.Median()
	p95, err3 := data.Percentile(95)
	maxVal, err4 := data.Max()
	if err := multierr.Combine(err1, err2, err3, err4); err != nil {
		return Distribution{}, err
	}
	return Distribution{Count: len(values), Mean: mean, Median: median, P95: p95, Max: maxVal}, nil
}

// Table renders the summary for a terminal.
func (s Summary) Table() string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Metric", "Count", "Mean", "Median", "P95", "Max"})
	for _, m := range []struct {
		name string
		d    Distribution
	}{{"MPJPE", s.MPJPE}, {"MPJRE", s.MPJRE}} {
		tw.AppendRow(table.Row{m.name, m.d.Count, cell(m.d.Mean), cell(m.d.Median), cell(m.d.P95), cell(m.d.Max)})
	}
	tw.AppendFooter(table.Row{
		"Pairs", s.Pairs,
		fmt.Sprintf("passed %d", s.Passed),
		fmt.Sprintf("failed %d", s.Failed),
		fmt.Sprintf("errored %d", s.Errored),
		"",
	})
	alignNumbers(tw, 6)
	return tw.Render()
}

// WriteHistogram draws the distribution of per pair mean MPJPE with the given number of bins.
// Nothing is written when fewer than two pairs contributed.
func (s Summary) WriteHistogram(w io.Writer, bins, width int) error {
	if len(s.mpjpe) < 2 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "mean MPJPE per pair"); err != nil {
		return err
	}
	hist := histogram.Hist(bins, s.mpjpe)
	return histogram.Fprint(w, hist, histogram.Linear(width))
}

// ResultTable renders the verdict and per joint errors of a single comparison.
func ResultTable(res *motion.Result) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Joint", "MPJPE", "MPJRE"})
	for _, je := range res.Report.Joints {
		tw.AppendRow(table.Row{je.Joint, cell(je.MPJPE), cell(je.MPJRE)})
	}
	if !res.Report.Empty() {
		tw.AppendFooter(table.Row{"mean", cell(res.Report.MeanMPJPE()), cell(res.Report.MeanMPJRE())})
	}
	alignNumbers(tw, 3)
	verdict := fmt.Sprintf("frames [%d, %d) success: %t", res.Window.Min, res.Window.Max, res.Success)
	return verdict + "\n" + tw.Render()
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// alignNumbers right aligns every column but the first.
func alignNumbers(tw table.Writer, columns int) {
	configs := make([]table.ColumnConfig, 0, columns)
	for i := 1; i <= columns; i++ {
		align := text.AlignRight
		if i == 1 {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{Number: i, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
}

func cell(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
