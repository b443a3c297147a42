package vocab

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestImportXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Drug Names"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Drug Names", "A1", "pembrolizumab")
	f.SetCellValue("Drug Names", "A2", "  nivolumab ")
	f.SetCellValue("Drug Names", "A3", "")
	if _, err := f.NewSheet("Empty"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	s := NewStore(filepath.Join(t.TempDir(), "user"), "")
	created, err := s.ImportXLSX(&buf)
	if err != nil {
		t.Fatalf("ImportXLSX: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created = %+v, want one vocabulary (empty sheet skipped)", created)
	}
	if created[0].Name != "Drug Names" {
		t.Errorf("name = %q", created[0].Name)
	}
	if len(created[0].Terms) != 2 || created[0].Terms[1] != "nivolumab" {
		t.Errorf("terms = %v, want trimmed non-empty cells", created[0].Terms)
	}
}

func TestImportXLSX_notAWorkbook(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "user"), "")
	if _, err := s.ImportXLSX(bytes.NewReader([]byte("not a workbook"))); err == nil {
		t.Error("expected error")
	}
}

func TestExportXLSXRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "user"), "")
	if _, err := s.Create("Acronyms", "", []string{"EHR", "HIPAA"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create("Orgs", "", []string{"FDA"}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportXLSX(&buf); err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "EHR" {
		t.Errorf("rows = %v", rows)
	}
}

func TestSheetName(t *testing.T) {
	if got := sheetName("Drugs/Devices", 0); got != "Drugs Devices (1)" {
		t.Errorf("got %q", got)
	}
	if got := sheetName("", 2); got != "Vocabulary 3 (3)" {
		t.Errorf("got %q", got)
	}
	long := sheetName("a vocabulary with an extremely long descriptive name", 9)
	if len(long) > 31 {
		t.Errorf("sheet name %q exceeds 31 characters", long)
	}
}
