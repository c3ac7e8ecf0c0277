// Package evaluate builds confusion matrices and scalar metrics from model predictions
package evaluate

import "errors"
import "fmt"
import "sort"

// ErrLength is returned when labels and predictions don't line up
var ErrLength = errors.New("evaluate: labels and predictions differ in length")

// ErrClass is returned for a label or prediction outside of the class list
var ErrClass = errors.New("evaluate: class index out of range")

// Table is a confusion matrix: cell (i, j) counts samples of true class i predicted as class j.
// Both axes are ordered by class name. A Table is immutable.
type Table struct {
	classes []string
	cells   [][]int
	sum     [32]byte
}

// Confusion tabulates aligned labels and predictions. classes maps a class index to its name;
// the axes of the table are those names sorted case-sensitively.
func Confusion(labels, predictions []uint16, classes []string) (*Table, error) {
	if len(labels) != len(predictions) {
		return nil, fmt.Errorf("%w: %d labels, %d predictions", ErrLength, len(labels), len(predictions))
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return classes[order[a]] < classes[order[b]] })
	rank := make([]int, len(classes))
	names := make([]string, len(classes))
	for r, idx := range order {
		rank[idx] = r
		names[r] = classes[idx]
	}

	t := &Table{classes: names, cells: make([][]int, len(classes))}
	for i := range t.cells {
		t.cells[i] = make([]int, len(classes))
	}
	for k := range labels {
		l, p := int(labels[k]), int(predictions[k])
		if l >= len(classes) || p >= len(classes) {
			return nil, fmt.Errorf("%w: pair %d is (%d, %d) of %d classes", ErrClass, k, l, p, len(classes))
		}
		t.cells[rank[l]][rank[p]]++
	}
	return t, nil
}

// Classes returns the axis labels
func (t *Table) Classes() []string {
	return append([]string(nil), t.classes...)
}

// Size returns the number of classes
func (t *Table) Size() int {
	return len(t.classes)
}

// At returns cell (i, j)
func (t *Table) At(i, j int) int {
	return t.cells[i][j]
}

// Rows returns a copy of the cells
func (t *Table) Rows() [][]int {
	out := make([][]int, len(t.cells))
	for i, row := range t.cells {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Total returns the sum of all cells
func (t *Table) Total() (n int) {
	for i := range t.cells {
		n += t.RowSum(i)
	}
	return
}

// RowSum returns the number of samples of true class i
func (t *Table) RowSum(i int) (n int) {
	for _, v := range t.cells[i] {
		n += v
	}
	return
}

// ColSum returns the number of predictions of class j
func (t *Table) ColSum(j int) (n int) {
	for i := range t.cells {
		n += t.cells[i][j]
	}
	return
}

// Correct returns the sum of the diagonal
func (t *Table) Correct() (n int) {
	for i := range t.cells {
		n += t.cells[i][i]
	}
	return
}

// MostConfused returns the off-diagonal cell with the largest count, lowest indices first.
// ok is false when there is no misclassification.
func (t *Table) MostConfused() (i, j int, ok bool) {
	best := 0
	for r := range t.cells {
		for c, v := range t.cells[r] {
			if r != c && v > best {
				i, j, best, ok = r, c, v, true
			}
		}
	}
	return
}

// Fingerprint returns the sha256 of the prediction sequence the table was built from,
// zero for tables built by Confusion.
func (t *Table) Fingerprint() [32]byte {
	return t.sum
}
