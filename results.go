package uncertainty

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-uncertainty/cv"
	"github.com/aouyang1/go-uncertainty/interval"
	"github.com/aouyang1/go-uncertainty/score"
	"github.com/goccy/go-json"
)

// FoldResult summarizes the out of sample interval of a single fold
type FoldResult struct {
	ID         int             `json:"id"`
	TrainSize  int             `json:"train_size"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Dispersion float64         `json:"dispersion"`
	Outliers   []int           `json:"outliers,omitempty"`
	Scores     *score.Scores   `json:"scores"`
	Interval   *interval.Frame `json:"interval"`
}

// Results holds the scored folds of an evaluation in fold order
type Results struct {
	Folds        []FoldResult `json:"folds"`
	Coverage     []float64    `json:"coverage"`
	MeanCoverage float64      `json:"mean_coverage"`
	MeanBias     float64      `json:"mean_bias"`

	cv *cv.Results
}

// CV returns the raw cross validation runs and intervals. Not available on results
// loaded with ParseResults.
func (r *Results) CV() *cv.Results {
	return r.cv
}

// JSON serializes the results as indented json
func (r *Results) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseResults loads results previously serialized with JSON
func ParseResults(data []byte) (*Results, error) {
	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unable to parse results, %w", err)
	}
	return &r, nil
}

// TablePrint writes a per fold summary table followed by the mean coverage and bias
func (r *Results) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sFolds:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sFold\tTrain\tValid\tDispersion\tCoverage\tBias\tMSE\tMAPE\tR2\tOutliers\t\n",
		prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	for _, f := range r.Folds {
		scores := f.Scores
		if scores == nil {
			scores = &score.Scores{}
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%d\t\n",
			prefix, indentExpand(indent, 1),
			f.ID, f.TrainSize, f.Interval.Len(),
			f.Dispersion, scores.Coverage, scores.Bias, scores.MSE, scores.MAPE, scores.R2,
			len(f.Outliers),
		); err != nil {
			return err
		}
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s%sMean Coverage: %.3f    Mean Bias: %.3f\n",
		prefix, indentExpand(indent, 0), r.MeanCoverage, r.MeanBias)
	return err
}

func indentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}
