package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shekelsync/shekelsync/internal/delimited"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/sheet"
)

// ErrFormat is returned by Extract when handed content of the wrong kind,
// e.g. delimited text for a spreadsheet-only vendor.
var ErrFormat = errors.New("content does not match vendor format")

// ContentKind tells delimited text apart from spreadsheets.
type ContentKind int

const (
	ContentDelimited ContentKind = iota + 1
	ContentWorkbook
)

func (k ContentKind) String() string {
	switch k {
	case ContentDelimited:
		return "delimited"
	case ContentWorkbook:
		return "workbook"
	default:
		return "unknown"
	}
}

// Content is a parsed file handed to vendors. Exactly one of Table and
// Workbook is set, matching Kind.
type Content struct {
	Kind     ContentKind
	Table    *delimited.Table
	Workbook *sheet.Workbook
}

// DelimitedContent wraps a parsed delimited file.
func DelimitedContent(t *delimited.Table) Content {
	return Content{Kind: ContentDelimited, Table: t}
}

// WorkbookContent wraps an opened spreadsheet.
func WorkbookContent(wb *sheet.Workbook) Content {
	return Content{Kind: ContentWorkbook, Workbook: wb}
}

// Extraction is what a vendor pulls out of one file.
type Extraction struct {
	Transactions []model.Transaction
	// FinalBalance is the statement's closing balance in major units, nil when
	// the file does not state one where the vendor expects it.
	FinalBalance *decimal.Decimal
	// BalanceBreakdown holds per-sheet balances for multi-tab statements.
	BalanceBreakdown map[string]decimal.Decimal
	// Dropped counts rows skipped because their amount was malformed.
	Dropped int
}

// Vendor detects and parses one institution's export format.
type Vendor interface {
	Kind() Kind
	Info() model.VendorInfo
	// Accepts reports the content kind the vendor reads.
	Accepts() ContentKind
	// Detect returns a non-empty identifier (account or card number, or a
	// statement title) when the file is in this vendor's format.
	Detect(fileName string, c Content) (string, bool)
	// Extract parses transactions and the closing balance. It fails only when
	// the content is structurally unusable; an empty statement is not an error.
	Extract(fileName string, c Content) (Extraction, error)
}

func requireTable(c Content) (*delimited.Table, error) {
	if c.Kind != ContentDelimited || c.Table == nil {
		return nil, fmt.Errorf("%w: expected delimited text, got %s", ErrFormat, c.Kind)
	}
	return c.Table, nil
}

func requireWorkbook(c Content) (*sheet.Workbook, error) {
	if c.Kind != ContentWorkbook || c.Workbook == nil || len(c.Workbook.Sheets) == 0 {
		return nil, fmt.Errorf("%w: expected spreadsheet, got %s", ErrFormat, c.Kind)
	}
	return c.Workbook, nil
}

// importDir is the subdirectory for statement files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported statement files.
const processedDir = "import/processed"

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns statement files (.csv, .xls, .xlsx, .xlsm) in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !sheet.Accepted(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
