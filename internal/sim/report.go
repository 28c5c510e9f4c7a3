package sim

import (
	"fmt"
	"io"

	"github.com/san-kum/incline/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReportFormat selects which fields the final report prints.
type ReportFormat string

const (
	// ReportBrief prints the final time and position.
	ReportBrief ReportFormat = "brief"
	// ReportFull adds velocity, speed and acceleration.
	ReportFull ReportFormat = "full"
)

func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(s) {
	case ReportBrief, ReportFull:
		return ReportFormat(s), nil
	case "":
		return ReportFull, nil
	}
	return "", fmt.Errorf("unknown report format %q: %w", s, dynamo.ErrParameterBounds)
}

type Report struct {
	Time    float64 `json:"time" yaml:"time"`
	Steps   int     `json:"steps" yaml:"steps"`
	Initial r3.Vec  `json:"initial" yaml:"initial"`
	Pos     r3.Vec  `json:"position" yaml:"position"`
	Vel     r3.Vec  `json:"velocity" yaml:"velocity"`
	Speed   float64 `json:"speed" yaml:"speed"`
	Accel   float64 `json:"acceleration" yaml:"acceleration"`
}

// FormatVec renders a vector as <x, y, z>.
func FormatVec(v r3.Vec) string {
	return fmt.Sprintf("<%.6g, %.6g, %.6g>", v.X, v.Y, v.Z)
}

func (r *Report) WriteInitial(w io.Writer) error {
	_, err := fmt.Fprintf(w, "initial cart position (m): %s\n", FormatVec(r.Initial))
	return err
}

func (r *Report) Write(w io.Writer, format ReportFormat) error {
	lines := []string{
		fmt.Sprintf("final time (s): %.4f", r.Time),
		fmt.Sprintf("final cart position (m): %s", FormatVec(r.Pos)),
	}
	if format == ReportFull {
		lines = append(lines,
			fmt.Sprintf("final cart velocity (m/s): %s", FormatVec(r.Vel)),
			fmt.Sprintf("final cart speed (m/s): %.6g", r.Speed),
			fmt.Sprintf("final cart acceleration (m/s/s): %.6g", r.Accel),
		)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
