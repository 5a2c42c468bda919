package profile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

func TestReadTableCSV(t *testing.T) {
	src := "Question,Answer,Notes\n" +
		"Do you encrypt data at rest?,Yes,AES-256\n" +
		"Is MFA enforced?,Yes\n" // ragged row

	table, err := ReadTable(strings.NewReader(src), model.FormatCSV)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	wantHeaders := []string{"Question", "Answer", "Notes"}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("Headers = %v, want %v", table.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Errorf("Headers[%d] = %q, want %q", i, table.Headers[i], h)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	if got := table.Cell(1, 2); got != "" {
		t.Errorf("Cell(1,2) on ragged row = %q, want empty", got)
	}
	if got := table.Cell(0, 0); got != "Do you encrypt data at rest?" {
		t.Errorf("Cell(0,0) = %q", got)
	}
}

func TestReadTableCSVErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantEmpty bool
	}{
		{name: "empty file", src: "", wantEmpty: true},
		{name: "empty column name", src: "Question,,Answer\nq,a,b\n"},
		{name: "duplicate column name", src: "Question,Question\nq,q\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.src), model.FormatCSV)
			if err == nil {
				t.Fatal("ReadTable() succeeded, want parse error")
			}
			if !errs.IsCode(err, errs.CodeParse) {
				t.Errorf("code = %v, want %v", errs.CodeOf(err), errs.CodeParse)
			}
			if IsEmptyTable(err) != tt.wantEmpty {
				t.Errorf("IsEmptyTable() = %v, want %v", IsEmptyTable(err), tt.wantEmpty)
			}
		})
	}
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Question", "Answer"},
		{"Do you have a security policy?", "Yes"},
		{"Is data encrypted in transit?", "Yes, TLS 1.3"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	table, err := ReadTable(bytes.NewReader(buf.Bytes()), model.FormatXLSX)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(table.Headers) != 2 || table.Headers[0] != "Question" {
		t.Fatalf("Headers = %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	if got := table.Cell(1, 1); got != "Yes, TLS 1.3" {
		t.Errorf("Cell(1,1) = %q", got)
	}
}

func TestReadTableXLSXMalformed(t *testing.T) {
	_, err := ReadTable(strings.NewReader("not a zip archive"), model.FormatXLSX)
	if !errs.IsCode(err, errs.CodeParse) {
		t.Errorf("code = %v, want %v", errs.CodeOf(err), errs.CodeParse)
	}
}

func TestReadTableUnsupportedFormat(t *testing.T) {
	_, err := ReadTable(strings.NewReader("x"), model.SourceFormat("pdf"))
	if !errs.IsCode(err, errs.CodeUnsupportedFormat) {
		t.Errorf("code = %v, want %v", errs.CodeOf(err), errs.CodeUnsupportedFormat)
	}
}

func TestFormatForFilename(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    model.SourceFormat
		wantErr bool
	}{
		{name: "csv", file: "vendor.csv", want: model.FormatCSV},
		{name: "xlsx uppercase", file: "VENDOR.XLSX", want: model.FormatXLSX},
		{name: "unsupported", file: "vendor.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatForFilename(tt.file)
			if tt.wantErr {
				if !errs.IsCode(err, errs.CodeUnsupportedFormat) {
					t.Errorf("code = %v, want %v", errs.CodeOf(err), errs.CodeUnsupportedFormat)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatForFilename() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatForFilename(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}
