package ingest

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/melkeydev/datadesk/types"
	"github.com/xuri/excelize/v2"
)

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"ventas.csv", FormatCSV, false},
		{"VENTAS.XLSX", FormatXLSX, false},
		{"ventas.xlsm", FormatXLSX, false},
		{"ventas.xls", 0, true},
		{"ventas", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("FormatFromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffid_venta,id_cliente,monto\n1,10,12.5\n\n2,11,3\n"

	ds, err := Read(strings.NewReader(input), FormatCSV)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := ds.Names(); strings.Join(got, ",") != "id_venta,id_cliente,monto" {
		t.Errorf("Names() = %v", got)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (blank row dropped)", ds.Len())
	}
	if ds.Columns[2].Kind != KindFloat {
		t.Errorf("monto kind = %v, want float", ds.Columns[2].Kind)
	}
}

func TestReadEmptyCSV(t *testing.T) {
	_, err := Read(strings.NewReader("\n\n"), FormatCSV)
	if !errors.Is(err, types.ErrEmptyDataset) {
		t.Errorf("Read(empty) error = %v, want ErrEmptyDataset", err)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]any{"id_venta", "id_cliente", "monto", "fecha"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{1, 10, 12.5, "2024-01-02"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A3", &[]any{2, 11, 3, "2024-01-03"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	ds, err := Read(buf, FormatXLSX)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []Kind{KindInteger, KindInteger, KindFloat, KindTimestamp}
	for i, k := range want {
		if ds.Columns[i].Kind != k {
			t.Errorf("column %s kind = %v, want %v", ds.Columns[i].Name, ds.Columns[i].Kind, k)
		}
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}
}

func TestReadXLSXStoredValues(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"id", "monto", "fecha", "pct", "pi", "alta"},
		{1, 1234.5, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 0.125, math.Pi, time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)},
		{2, 99.25, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 0.5, math.E, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)},
	}
	for i, row := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	customDate := "dd/mm/yyyy hh:mm"
	styles := []struct {
		column string
		style  excelize.Style
	}{
		{"B", excelize.Style{NumFmt: 4}},  // #,##0.00
		{"C", excelize.Style{NumFmt: 15}}, // d-mmm-yy
		{"D", excelize.Style{NumFmt: 10}}, // 0.00%
		{"F", excelize.Style{CustomNumFmt: &customDate}},
	}
	for _, s := range styles {
		id, err := f.NewStyle(&s.style)
		if err != nil {
			t.Fatalf("NewStyle: %v", err)
		}
		if err := f.SetCellStyle(sheet, s.column+"2", s.column+"3", id); err != nil {
			t.Fatalf("SetCellStyle: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	ds, err := Read(buf, FormatXLSX)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []Kind{KindInteger, KindFloat, KindTimestamp, KindFloat, KindFloat, KindTimestamp}
	for i, k := range want {
		if ds.Columns[i].Kind != k {
			t.Errorf("column %s kind = %v, want %v (values %v)", ds.Columns[i].Name, ds.Columns[i].Kind, k, ds.Columns[i].Values)
		}
	}

	row := ds.Row(0)
	if row[1] != 1234.5 {
		t.Errorf("monto = %v, want 1234.5", row[1])
	}
	if ts, ok := row[2].(time.Time); !ok || !ts.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("fecha = %v, want 2024-01-02", row[2])
	}
	if row[3] != 0.125 {
		t.Errorf("pct = %v, want 0.125", row[3])
	}
	if row[4] != math.Pi {
		t.Errorf("pi = %v, want %v", row[4], math.Pi)
	}
	if ts, ok := row[5].(time.Time); !ok || !ts.Equal(time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("alta = %v, want 2024-03-04 10:30", row[5])
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"d-mmm-yy", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[h]:mm:ss", true},
		{"[$-409]mmmm d, yyyy", true},
		{"General", false},
		{"#,##0.00", false},
		{"0.00%", false},
		{"[Red]#,##0.00", false},
		{"[Magenta]0", false},
		{`#,##0 "dias"`, false},
		{"0.00_);[Red](0.00)", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := isDateFormatCode(tt.code); got != tt.want {
				t.Errorf("isDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
