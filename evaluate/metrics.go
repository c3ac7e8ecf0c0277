package evaluate

// ClassMetrics are the one-vs-rest scores of one class
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Metrics are scalar scores derived from a confusion table
type Metrics struct {
	Accuracy       float64
	MacroPrecision float64
	MacroRecall    float64
	MacroF1        float64
	PerClass       []ClassMetrics
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Metrics computes accuracy and per-class precision, recall and F1. Every division by zero
// scores 0.
func (t *Table) Metrics() (m Metrics) {
	m.Accuracy = ratio(t.Correct(), t.Total())
	for i, name := range t.classes {
		c := ClassMetrics{
			Class:     name,
			Precision: ratio(t.cells[i][i], t.ColSum(i)),
			Recall:    ratio(t.cells[i][i], t.RowSum(i)),
			Support:   t.RowSum(i),
		}
		if c.Precision+c.Recall > 0 {
			c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
		}
		m.MacroPrecision += c.Precision
		m.MacroRecall += c.Recall
		m.MacroF1 += c.F1
		m.PerClass = append(m.PerClass, c)
	}
	if n := float64(len(t.classes)); n > 0 {
		m.MacroPrecision /= n
		m.MacroRecall /= n
		m.MacroF1 /= n
	}
	return
}
