package evaluate

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/motioneval/motion"
)

// Fixed leading columns of a CSV report.
var baseColumns = []string{"file_name", "time_taken", "clip_time", "num_frames", "frame_time", "success"}

const errorColumn = "error"

// Row is the outcome of one pair.
type Row struct {
	FileName string `json:"file_name"`
	// TimeTaken is nil when the elapsed time file has no entry for the pair.
	TimeTaken *float64       `json:"time_taken,omitempty"`
	ClipTime  float64        `json:"clip_time"`
	NumFrames int            `json:"num_frames"`
	FrameTime float64        `json:"frame_time"`
	Success   bool           `json:"success"`
	Result    *motion.Result `json:"result,omitempty"`
	Err       error          `json:"-"`
}

// MarshalJSON adds the error message to the encoded row.
func (r Row) MarshalJSON() ([]byte, error) {
	type plain Row
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report holds every row of a batch run.
type Report struct {
	RunID     uuid.UUID      `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Joints    []string       `json:"joints"`
	Options   motion.Options `json:"options"`
	Rows      []Row          `json:"rows"`
}

// Header lists the CSV columns: the fixed columns, one MPJPE column per joint, one MPJRE column
// per joint, then the error column.
func (r *Report) Header() []string {
	header := make([]string, 0, len(baseColumns)+2*len(r.Joints)+1)
	header = append(header, baseColumns...)
	for _, joint := range r.Joints {
		header = append(header, joint+"_MPJPE")
	}
	for _, joint := range r.Joints {
		header = append(header, joint+"_MPJRE")
	}
	return append(header, errorColumn)
}

// Failed counts rows that did not pass, errors included.
func (r *Report) Failed() int {
	var n int
	for _, row := range r.Rows {
		if !row.Success {
			n++
		}
	}
	return n
}

// Errored counts rows that could not be evaluated.
func (r *Report) Errored() int {
	var n int
	for _, row := range r.Rows {
		if row.Err != nil {
			n++
		}
	}
	return n
}

// WriteCSV writes the header and one record per row. Metric cells are blank when a pair errored or
// its window was empty; the time_taken cell is blank when no elapsed time was recorded.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return errors.Wrap(err, "cannot write report header")
	}
	for _, row := range r.Rows {
		if err := cw.Write(r.record(row)); err != nil {
			return errors.Wrapf(err, "cannot write report row %s", row.FileName)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "cannot flush report")
}

func (r *Report) record(row Row) []string {
	rec := make([]string, 0, len(baseColumns)+2*len(r.Joints)+1)
	timeTaken := ""
	if row.TimeTaken != nil {
		timeTaken = formatFloat(*row.TimeTaken)
	}
	rec = append(rec,
		row.FileName,
		timeTaken,
		formatFloat(row.ClipTime),
		strconv.Itoa(row.NumFrames),
		formatFloat(row.FrameTime),
		strconv.FormatBool(row.Success),
	)

	var report motion.ErrorReport
	if row.Result != nil {
		report = row.Result.Report
	}
	for _, joint := range r.Joints {
		rec = append(rec, jointCell(report, joint, func(je motion.JointError) float64 { return je.MPJPE }))
	}
	for _, joint := range r.Joints {
		rec = append(rec, jointCell(report, joint, func(je motion.JointError) float64 { return je.MPJRE }))
	}

	errMsg := ""
	if row.Err != nil {
		errMsg = row.Err.Error()
	}
	return append(rec, errMsg)
}

func jointCell(report motion.ErrorReport, joint string, value func(motion.JointError) float64) string {
	je, ok := report.Lookup(joint)
	if !ok {
		return ""
	}
	return formatFloat(value(je))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "cannot encode report")
}
