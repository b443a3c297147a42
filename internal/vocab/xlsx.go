package vocab

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportXLSX reads a workbook where each sheet is one vocabulary: the sheet
// name becomes the vocabulary name and every non-empty cell in the first
// column becomes a term. Returns the vocabularies created.
func (s *Store) ImportXLSX(r io.Reader) ([]Vocabulary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var created []Vocabulary
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return created, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		var terms []string
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			term := strings.TrimSpace(row[0])
			if term != "" {
				terms = append(terms, term)
			}
		}
		if len(terms) == 0 {
			continue
		}
		v, err := s.Create(sheet, DefaultCategoryID, terms)
		if err != nil {
			return created, err
		}
		created = append(created, *v)
	}
	return created, nil
}

// ExportXLSX writes the user vocabularies to w as a workbook with one sheet
// per vocabulary and one term per row.
func (s *Store) ExportXLSX(w io.Writer) error {
	user, err := s.loadUser()
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, v := range user.Vocabularies {
		sheet := sheetName(v.Name, i)
		if i == 0 {
			// Rename the default sheet instead of leaving an empty Sheet1.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to name sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet: %w", err)
			}
		}
		for row, term := range v.Terms {
			cell, err := excelize.CoordinatesToCellName(1, row+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, term); err != nil {
				return fmt.Errorf("failed to write term: %w", err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName sanitizes a vocabulary name into a legal, unique sheet name.
// Excel forbids several characters and caps names at 31 characters.
func sheetName(name string, index int) string {
	replacer := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	clean := strings.TrimSpace(replacer.Replace(name))
	if clean == "" {
		clean = fmt.Sprintf("Vocabulary %d", index+1)
	}
	suffix := fmt.Sprintf(" (%d)", index+1)
	if len(clean) > 31-len(suffix) {
		clean = clean[:31-len(suffix)]
	}
	return clean + suffix
}
