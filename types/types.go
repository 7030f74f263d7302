package types

import "time"

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

type TableDescription struct {
	Name        string           `json:"name"`
	Columns     []Column         `json:"columns"`
	RowCount    int64            `json:"row_count"`
	SampleData  []map[string]any `json:"sample_data,omitempty"`
	Indexes     []Index          `json:"indexes,omitempty"`
	PrimaryKeys []string         `json:"primary_keys,omitempty"`
}

// TableCount is the number of rows currently stored in one table.
type TableCount struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// Record is a named numeric value kept in the record table.
type Record struct {
	ID    int64   `json:"id" db:"id"`
	Name  string  `json:"name" db:"nombre"`
	Value float64 `json:"value" db:"valor"`
}

// Stats holds the aggregates over every record value. All fields are nil
// when the record table is empty.
type Stats struct {
	Max *float64 `json:"max"`
	Min *float64 `json:"min"`
	Avg *float64 `json:"avg"`
}

// SQLType is the portable column type a dialect renders into DDL.
type SQLType int

const (
	Text SQLType = iota
	Integer
	Float
	DateTime
)

func (t SQLType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case DateTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

// TimestampLayouts are the layouts a cell may use to be read as a timestamp.
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"1/2/06 15:04",
	"01-02-06",
}
