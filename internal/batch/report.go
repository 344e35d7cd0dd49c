package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sanonone/trustsum/pkg/rouge"
)

// DocumentReport is the outcome of one document.
type DocumentReport struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Kind    string        `json:"kind,omitempty"`
	Runtime time.Duration `json:"-"`
	// Best is the candidate with the highest ROUGE-L F-measure, nil without a reference.
	Best       *rouge.Result `json:"best,omitempty"`
	Candidates int           `json:"candidates"`
	Converged  bool          `json:"converged"`
	Outputs    []string      `json:"outputs,omitempty"`
}

func (d DocumentReport) MarshalJSON() ([]byte, error) {
	type plain DocumentReport
	return json.Marshal(struct {
		plain
		RuntimeMillis float64 `json:"runtime_ms"`
	}{plain(d), millis(d.Runtime)})
}

// Report summarizes a run. Documents keep the selection order.
type Report struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"-"`
	Failed    int              `json:"failed"`
	Documents []DocumentReport `json:"documents"`
}

func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		DurationMillis float64 `json:"duration_ms"`
	}{plain(r), millis(r.Duration)})
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// WriteTable prints the total runtime, a table of best ROUGE F-measures
// (ROUGE-1, ROUGE-2, ROUGE-L) and runtimes, then the best summary per document.
func (r *Report) WriteTable(w io.Writer) error {
	total := millis(r.Duration)
	if total < 1e4 {
		fmt.Fprintf(w, "Total runtime: %.2f ms\n\n", total)
	} else {
		fmt.Fprintf(w, "Total runtime: %.3f s\n\n", total/1e3)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "No.\tFile\tStatus\tBest ROUGE (1, 2, L)\tCalculation Time (ms)")
	for i, d := range r.Documents {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\n", i+1, d.Name, d.Status, bestScores(d.Best), millis(d.Runtime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nBest summarization:")
	for i, d := range r.Documents {
		text := "-"
		if d.Best != nil {
			text = sentence(d.Best.Text)
		}
		fmt.Fprintf(w, "%d.) %-30s: %s\n", i+1, d.Name, text)
	}
	return nil
}

func bestScores(best *rouge.Result) string {
	if best == nil {
		return "-, -, -"
	}
	return fmt.Sprintf("%.3f, %.3f, %.3f", best.Rouge1.FMeasure, best.Rouge2.FMeasure, best.RougeL.FMeasure)
}

func sentence(s string) string {
	if s == "" {
		return "-"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:] + "."
}
