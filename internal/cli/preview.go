package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/dshills/prdoctor/internal/output"
	"github.com/dshills/prdoctor/internal/review"
)

const previewWidth = 100

// preview renders the markdown form of report for the terminal.
func preview(w io.Writer, report *review.Report) error {
	md, err := output.Render(report, output.FormatMarkdown)
	if err != nil {
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth),
		glamour.WithEmoji(),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}
