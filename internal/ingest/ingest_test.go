package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestParseFileCSV(t *testing.T) {
	p := writeFile(t, "hop_harvest.csv", "date,plot,alpha_acids,\n"+
		"2024-08-10,A1,12.5,x\n"+
		"2024-08-12,,11.8\n"+
		"\n"+
		"2024-08-15,B3,10.2,y,extra\n")
	ds, err := ParseFile(p, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Name != "hop_harvest.csv" {
		t.Fatalf("name = %q", ds.Name)
	}
	if got := strings.Join(ds.Columns, ","); got != "date,plot,alpha_acids,column_4" {
		t.Fatalf("columns = %s", got)
	}
	if ds.Len() != 3 {
		t.Fatalf("rows = %d, want 3 (blank line skipped)", ds.Len())
	}
	if !ds.Rows[1]["plot"].IsNull() || !ds.Rows[1]["column_4"].IsNull() {
		t.Fatalf("empty and missing cells should be null: %v", ds.Rows[1])
	}
	if v := ds.Rows[0]["alpha_acids"]; v.Kind() != dataset.KindString || v.String() != "12.5" {
		t.Fatalf("cells stay text: %v (%s)", v, v.Kind())
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseCSV_DelimiterSniffAndMaxRows(t *testing.T) {
	in := "Group;Score\nA;1\nB;2\nC;3\n"
	ds, err := Parse("scores.csv", strings.NewReader(in), Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[1] != "Score" {
		t.Fatalf("columns = %v", ds.Columns)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows = %d, want 2", ds.Len())
	}
	if len(ds.Warnings) != 1 || ds.Warnings[0] != "processed only 2/3 rows due to MaxRows" {
		t.Fatalf("warnings = %v", ds.Warnings)
	}

	tsv, err := Parse("a.tsv", strings.NewReader("x\ty\n1\t2\n"), Options{})
	if err != nil || tsv.Rows[0]["y"].String() != "2" {
		t.Fatalf("tsv: %v %v", err, tsv)
	}
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"\ufeffid", " ", "id", "id", "name"})
	want := "id,column_2,id_2,id_3,name"
	if strings.Join(got, ",") != want {
		t.Fatalf("headerNames = %v, want %s", got, want)
	}
}

func TestParseJSON(t *testing.T) {
	in := `[{"b":1,"a":"x"},{"b":2,"a":"y"},{"b":3,"a":"z"}]`
	ds, err := Parse("data.json", strings.NewReader(in), Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Join(ds.Columns, ",") != "b,a" {
		t.Fatalf("columns = %v", ds.Columns)
	}
	if ds.Len() != 2 || len(ds.Warnings) != 1 {
		t.Fatalf("rows=%d warnings=%v", ds.Len(), ds.Warnings)
	}
}

func TestParseFile_Unsupported(t *testing.T) {
	_, err := ParseFile("notes.docx", Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if Supported("x.txt") || !Supported("X.XLSX") {
		t.Fatalf("Supported mismatch")
	}
}

const (
	workbookXML = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Ignore" sheetId="1" r:id="rId1"/>
    <sheet name="Data" sheetId="2" r:id="rId2"/>
  </sheets>
</workbook>`
	relsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`
	sharedXML = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <si><t>region</t></si><si><t>sales</t></si><si><t>North</t></si><si><r><t>So</t></r><r><t>uth</t></r></si>
</sst>`
	sheet1XML = `<worksheet><sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>placeholder</t></is></c></row></sheetData></worksheet>`
	sheet2XML = `<worksheet><sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>ok</t></is></c></row>
  <row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>1500.5</v></c><c r="C2" t="b"><v>1</v></c></row>
  <row r="3"><c r="A3" t="s"><v>3</v></c><c r="C3" t="b"><v>0</v></c></row>
  <row r="4"></row>
</sheetData></worksheet>`
)

func xlsxFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"xl/workbook.xml":            workbookXML,
		"xl/_rels/workbook.xml.rels": relsXML,
		"xl/sharedStrings.xml":       sharedXML,
		"xl/worksheets/sheet1.xml":   sheet1XML,
		"xl/worksheets/sheet2.xml":   sheet2XML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestParseXLSX_SheetSelection(t *testing.T) {
	data := xlsxFixture(t)
	for name, opt := range map[string]Options{
		"by name":  {SheetName: "data"},
		"by index": {SheetIndex: 2},
	} {
		t.Run(name, func(t *testing.T) {
			ds, err := Parse("book.xlsx", bytes.NewReader(data), opt)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if strings.Join(ds.Columns, ",") != "region,sales,ok" {
				t.Fatalf("columns = %v", ds.Columns)
			}
			if ds.Len() != 2 {
				t.Fatalf("rows = %d, want 2", ds.Len())
			}
			first := ds.Rows[0]
			if f, ok := first["sales"].Float(); !ok || f != 1500.5 {
				t.Fatalf("sales = %v, want number 1500.5", first["sales"])
			}
			if first["ok"].String() != "TRUE" {
				t.Fatalf("bool cell = %v", first["ok"])
			}
			second := ds.Rows[1]
			if second["region"].String() != "South" || !second["sales"].IsNull() {
				t.Fatalf("second row = %v", second)
			}
		})
	}

	ds, err := Parse("book.xlsx", bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("default sheet: %v", err)
	}
	if ds.Columns[0] != "placeholder" || ds.Len() != 0 {
		t.Fatalf("default should read the first sheet, got %v", ds.Columns)
	}
}

func TestParseXLSX_MissingSheet(t *testing.T) {
	_, err := Parse("book.xlsx", bytes.NewReader(xlsxFixture(t)), Options{SheetName: "Nope"})
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Ignore, Data") {
		t.Fatalf("error should list available sheets: %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "C12": 2, "AA3": 26, "b2": 1, "": -1} {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
