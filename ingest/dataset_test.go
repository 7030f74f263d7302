package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/melkeydev/datadesk/types"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{"integers", []string{"1", "-2", "30"}, KindInteger},
		{"integers with blanks", []string{"1", "", "3"}, KindInteger},
		{"floats", []string{"1.5", "2", "3e2"}, KindFloat},
		{"timestamps", []string{"2024-01-02", "2024-03-04 10:00:00"}, KindTimestamp},
		{"rfc3339", []string{"2024-01-02T10:00:00Z"}, KindTimestamp},
		{"text", []string{"ana", "luis"}, KindText},
		{"mixed number and text", []string{"1", "dos"}, KindText},
		{"infinity is text", []string{"Inf", "1"}, KindText},
		{"all blank", []string{"", ""}, KindText},
		{"no cells", nil, KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectKind(tt.cells); got != tt.want {
				t.Errorf("detectKind(%q) = %v, want %v", tt.cells, got, tt.want)
			}
		})
	}
}

func TestNewDatasetConvertsValues(t *testing.T) {
	ds := mustDataset(t,
		[]string{" id ", "precio", "fecha", "nombre"},
		[]string{"1", "9.5", "2024-01-02", "ana"},
		[]string{"2", "", "2024-02-03", " luis "},
		[]string{"3", "7"},
	)

	if got := ds.Names(); got[0] != "id" {
		t.Errorf("header not trimmed: %q", got[0])
	}
	if ds.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ds.Len())
	}

	row := ds.Row(0)
	if row[0] != int64(1) {
		t.Errorf("id = %#v, want int64(1)", row[0])
	}
	if row[1] != 9.5 {
		t.Errorf("precio = %#v, want 9.5", row[1])
	}
	if ts, ok := row[2].(time.Time); !ok || !ts.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("fecha = %#v, want 2024-01-02", row[2])
	}

	if got := ds.Row(1); got[1] != nil || got[3] != "luis" {
		t.Errorf("row 2 = %#v, want nil precio and trimmed nombre", got)
	}
	if got := ds.Row(2); got[2] != nil || got[3] != nil {
		t.Errorf("short row not padded with nil: %#v", got)
	}
}

func TestNewDatasetErrors(t *testing.T) {
	if _, err := NewDataset(nil, nil); !errors.Is(err, types.ErrEmptyDataset) {
		t.Errorf("empty header error = %v, want ErrEmptyDataset", err)
	}
	if _, err := NewDataset([]string{"a", "a"}, nil); err == nil {
		t.Error("expected duplicate column error")
	}
	if _, err := NewDataset([]string{"a"}, [][]string{{"1", "2"}}); err == nil {
		t.Error("expected error for row wider than header")
	}
	if _, err := NewDataset([]string{"a"}, [][]string{{"1", " "}}); err != nil {
		t.Errorf("blank trailing cells should be ignored: %v", err)
	}
}
