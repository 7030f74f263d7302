package ingest

import "strings"

// ForeignKeyPrefix marks a column as a candidate foreign key.
const ForeignKeyPrefix = "id_"

// NamingStrategy maps a foreign-key column name to the table it references.
// ok is false when the column should not get a reference.
type NamingStrategy func(column string) (table string, ok bool)

// PluralSuffix references the second "_" token of the column plus suffix, so
// id_cliente becomes clientes. It does not know real plurals: id_pais gives
// paiss.
func PluralSuffix(suffix string) NamingStrategy {
	return func(column string) (string, bool) {
		parts := strings.Split(column, "_")
		if len(parts) < 2 || parts[1] == "" {
			return "", false
		}
		return parts[1] + suffix, true
	}
}

// MappingNaming looks the column up in tables first and defers to fallback
// for unknown columns. A nil fallback means no reference.
func MappingNaming(tables map[string]string, fallback NamingStrategy) NamingStrategy {
	return func(column string) (string, bool) {
		if t, ok := tables[column]; ok {
			return t, t != ""
		}
		if fallback == nil {
			return "", false
		}
		return fallback(column)
	}
}
