package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/prdoctor/internal/review"
)

// JSONWriter emits the report exactly as it is modeled, two-space indented
// with a trailing newline.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, report *review.Report) error {
	if report == nil {
		return fmt.Errorf("json: nil report")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding %s report: %w", report.Kind, err)
	}
	return nil
}
