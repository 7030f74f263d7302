package ingest

import (
	"strings"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

type Reference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type ColumnPlan struct {
	Name       string        `json:"name"`
	Type       types.SQLType `json:"-"`
	TypeName   string        `json:"type"`
	PrimaryKey bool          `json:"primary_key,omitempty"`
	References *Reference    `json:"references,omitempty"`
}

type ForeignKey struct {
	Column     string    `json:"column"`
	References Reference `json:"references"`
}

// TablePlan is the schema inferred for a dataset about to become a table.
type TablePlan struct {
	Table       string       `json:"table"`
	Columns     []ColumnPlan `json:"columns"`
	PrimaryKey  string       `json:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
}

type Inferencer struct {
	naming NamingStrategy
}

// NewInferencer uses PluralSuffix("s") when naming is nil.
func NewInferencer(naming NamingStrategy) *Inferencer {
	if naming == nil {
		naming = PluralSuffix("s")
	}
	return &Inferencer{naming: naming}
}

// SQLTypeOf maps a column kind to the column type of the generated table.
func SQLTypeOf(k Kind) types.SQLType {
	switch k {
	case KindInteger:
		return types.Integer
	case KindFloat:
		return types.Float
	case KindTimestamp:
		return types.DateTime
	default:
		return types.Text
	}
}

// Infer derives the table plan of ds. The first column is the primary key.
// Referenced tables are not checked for existence.
func (i *Inferencer) Infer(table string, ds *Dataset) (*TablePlan, error) {
	if ds == nil || len(ds.Columns) == 0 {
		return nil, types.ErrEmptyDataset
	}
	if err := engine.ValidateIdent(table); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	plan := &TablePlan{
		Table:      table,
		PrimaryKey: ds.Columns[0].Name,
		Columns:    make([]ColumnPlan, 0, len(ds.Columns)),
	}

	for _, col := range ds.Columns {
		if err := engine.ValidateIdent(col.Name); err != nil {
			return nil, err
		}

		cp := ColumnPlan{
			Name:       col.Name,
			Type:       SQLTypeOf(col.Kind),
			PrimaryKey: col.Name == plan.PrimaryKey,
		}
		cp.TypeName = cp.Type.String()

		if !cp.PrimaryKey && strings.HasPrefix(col.Name, ForeignKeyPrefix) {
			if ref, ok := i.naming(col.Name); ok {
				if err := engine.ValidateIdent(ref); err != nil {
					return nil, err
				}
				cp.References = &Reference{Table: ref, Column: col.Name}
				plan.ForeignKeys = append(plan.ForeignKeys, ForeignKey{Column: col.Name, References: *cp.References})
			}
		}

		plan.Columns = append(plan.Columns, cp)
	}

	return plan, nil
}
