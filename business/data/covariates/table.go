package covariates

import (
	"encoding/json"
	"time"
)

// Table holds feature columns aligned with the timestamps they were computed from.
// A Table is read only once built.
type Table struct {
	index   []time.Time
	columns []string
	values  [][]float64
}

//makeTable builds Table, values holds one slice per column
func makeTable(index []time.Time, columns []string, values [][]float64) *Table {
	return &Table{
		index:   index,
		columns: columns,
		values:  values,
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.index)
}

// Index returns the timestamps of each row, in input order
func (t *Table) Index() []time.Time {
	index := make([]time.Time, len(t.index))
	copy(index, t.index)
	return index
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	columns := make([]string, len(t.columns))
	copy(columns, t.columns)
	return columns
}

// Column returns a copy of the values of the column named name
func (t *Table) Column(name string) ([]float64, bool) {
	for i, column := range t.columns {
		if column == name {
			values := make([]float64, len(t.values[i]))
			copy(values, t.values[i])
			return values, true
		}
	}
	return nil, false
}

// Row returns the feature vector for row i in column order
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.columns))
	for c := range t.columns {
		row[c] = t.values[c][i]
	}
	return row
}

//jsonTable is the wire format of Table
type jsonTable struct {
	Index   []time.Time `json:"index"`
	Columns []string    `json:"columns"`
	Data    [][]float64 `json:"data"`
}

// MarshalJSON encodes the table as index, columns and row major data
func (t *Table) MarshalJSON() ([]byte, error) {
	data := make([][]float64, t.Len())
	for i := range data {
		data[i] = t.Row(i)
	}
	return json.Marshal(jsonTable{
		Index:   t.Index(),
		Columns: t.Columns(),
		Data:    data,
	})
}
