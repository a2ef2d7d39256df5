package results

// maxChartPoints caps how many rows are plotted.
const maxChartPoints = 20

// Chart is the label/value projection of a table for plotting.
type Chart struct {
	LabelColumn string   `json:"labelColumn"`
	ValueColumn string   `json:"valueColumn"`
	Labels      []string `json:"labels"`
	Values      []float64 `json:"values"`
}

// Chart projects the table onto a label axis and a value axis. A column is
// numeric iff every row's value for it is a number or nil. The label axis
// is the first non-numeric column (or the first column if all are numeric),
// the value axis the first numeric column. Only the first 20 rows are
// plotted. Returns nil when the table has no columns or no numeric column.
func (t *Table) Chart() *Chart {
	if len(t.Columns) == 0 {
		return nil
	}

	labelIdx, valueIdx := -1, -1
	for i := range t.Columns {
		if t.numericColumn(i) {
			if valueIdx < 0 {
				valueIdx = i
			}
		} else if labelIdx < 0 {
			labelIdx = i
		}
	}
	if valueIdx < 0 {
		return nil
	}
	if labelIdx < 0 {
		labelIdx = 0
	}

	c := &Chart{
		LabelColumn: t.Columns[labelIdx],
		ValueColumn: t.Columns[valueIdx],
	}
	for i, row := range t.Rows {
		if i >= maxChartPoints {
			break
		}
		c.Labels = append(c.Labels, stringify(cellAt(row, labelIdx)))
		v, _ := asNumber(cellAt(row, valueIdx))
		c.Values = append(c.Values, v)
	}
	return c
}

// numericColumn reports whether every value in the column is a number or nil.
func (t *Table) numericColumn(idx int) bool {
	for _, row := range t.Rows {
		v := cellAt(row, idx)
		if v == nil {
			continue
		}
		if _, ok := asNumber(v); !ok {
			return false
		}
	}
	return true
}
