// Package report renders evaluation results for the terminal
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/neurlang/pneumonia/datasets/xray"
	"github.com/neurlang/pneumonia/evaluate"
	"github.com/neurlang/pneumonia/store"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	diagonalStyle = cellStyle.Foreground(lipgloss.Color("2"))
)

func render(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if style != nil {
				return style(row, col)
			}
			return cellStyle
		})
	return t.String()
}

// Confusion renders the table with true classes as rows and predicted classes as columns
func Confusion(t *evaluate.Table) string {
	classes := t.Classes()
	headers := append([]string{"true \\ predicted"}, classes...)
	rows := make([][]string, len(classes))
	for i, name := range classes {
		rows[i] = append(rows[i], name)
		for j := range classes {
			rows[i] = append(rows[i], strconv.Itoa(t.At(i, j)))
		}
	}
	return render(headers, rows, func(row, col int) lipgloss.Style {
		if col == row+1 {
			return diagonalStyle
		}
		return cellStyle
	})
}

// Sentence compares the model with always predicting the largest test class and names the
// most frequent mistake.
func Sentence(t *evaluate.Table) string {
	total := t.Total()
	if total == 0 {
		return "The test split is empty, there is nothing to compare."
	}
	classes := t.Classes()
	acc := 100 * float64(t.Correct()) / float64(total)
	largest := 0
	for i := range classes {
		if t.RowSum(i) > t.RowSum(largest) {
			largest = i
		}
	}
	baseline := 100 * float64(t.RowSum(largest)) / float64(total)

	var b strings.Builder
	fmt.Fprintf(&b, "The model labels %d of %d test images correctly (%.1f%%), ", t.Correct(), total, acc)
	switch {
	case acc > baseline:
		fmt.Fprintf(&b, "%.1f points above", acc-baseline)
	case acc < baseline:
		fmt.Fprintf(&b, "%.1f points below", baseline-acc)
	default:
		b.WriteString("level with")
	}
	fmt.Fprintf(&b, " always answering %s (%.1f%%).", classes[largest], baseline)
	if i, j, ok := t.MostConfused(); ok {
		fmt.Fprintf(&b, " The most frequent mistake is %s predicted as %s (%d times).", classes[i], classes[j], t.At(i, j))
	}
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", 100*v)
}

// Metrics renders per-class precision, recall and F1 followed by the macro averages
func Metrics(m evaluate.Metrics) string {
	var rows [][]string
	for _, c := range m.PerClass {
		rows = append(rows, []string{c.Class, percent(c.Precision), percent(c.Recall), percent(c.F1), strconv.Itoa(c.Support)})
	}
	rows = append(rows, []string{"macro", percent(m.MacroPrecision), percent(m.MacroRecall), percent(m.MacroF1), ""})
	out := render([]string{"class", "precision", "recall", "f1", "support"}, rows, nil)
	return out + "\naccuracy " + percent(m.Accuracy)
}

// Counts renders images per split and class
func Counts(counts []xray.SplitCounts, classes []string) string {
	var rows [][]string
	for _, sc := range counts {
		row := []string{sc.Split}
		for _, c := range classes {
			row = append(row, strconv.Itoa(sc.Counts[c]))
		}
		rows = append(rows, row)
	}
	return render(append([]string{"split"}, classes...), rows, nil)
}

// Runs renders the recorded run history
func Runs(runs []store.Run) string {
	var rows [][]string
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			id,
			r.Decision,
			percent(r.Accuracy),
			percent(r.MacroF1),
			r.Checkpoint,
		})
	}
	return render([]string{"when", "run", "decision", "accuracy", "macro f1", "checkpoint"}, rows, nil)
}
