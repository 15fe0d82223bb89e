package validator

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

var reportHeader = []string{"CATEGORY", "FILE", "STATUS", "ROWS", "ISSUES"}

// Render prints the reports as an aligned table followed by the issue
// details. Widths are measured in terminal cells so CJK text lines up.
func Render(w io.Writer, reports []types.ValidationReport) error {
	rows := [][]string{reportHeader}
	for _, r := range reports {
		rows = append(rows, []string{
			r.Category.String(),
			r.File,
			string(r.Status),
			strconv.Itoa(r.Rows),
			strconv.Itoa(len(r.Issues)),
		})
	}

	widths := make([]int, len(reportHeader))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}

	for _, r := range reports {
		if r.Message == "" && len(r.Issues) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n[%s] %s\n", r.Category, r.Path); err != nil {
			return err
		}
		if r.Message != "" {
			if _, err := fmt.Fprintf(w, "  %s\n", r.Message); err != nil {
				return err
			}
		}
		for _, issue := range r.Issues {
			if _, err := fmt.Fprintf(w, "  - %s\n", issue); err != nil {
				return err
			}
		}
	}
	return nil
}

// AllValid reports whether every report has status valid.
func AllValid(reports []types.ValidationReport) bool {
	for _, r := range reports {
		if r.Status != types.StatusValid {
			return false
		}
	}
	return len(reports) > 0
}
