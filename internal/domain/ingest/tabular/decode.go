package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrUndecodable   = errors.New("could not decode file with any supported encoding")
	ErrNoSpreadsheet = errors.New("could not open file with any spreadsheet engine")
)

// FileClass selects the decode path for an uploaded file.
type FileClass int

const (
	ClassDelimited FileClass = iota
	ClassSpreadsheet
)

// ClassifyExtension maps a declared filename to a decode path. Anything that
// is not a spreadsheet extension is treated as delimited text.
func ClassifyExtension(filename string) FileClass {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "xls", "xlsx":
		return ClassSpreadsheet
	}
	return ClassDelimited
}

// Decode routes raw bytes to the decoder matching the declared extension.
func Decode(data []byte, filename string) (*Grid, error) {
	if ClassifyExtension(filename) == ClassSpreadsheet {
		return DecodeSpreadsheet(data)
	}
	return DecodeDelimited(data)
}

// candidateEncodings is the ordered list tried for delimited text. Latin-1
// and ISO-8859-1 share a decoder, as do CP1252 and Windows-1252; the list
// mirrors the encodings statement exports are seen in the wild with.
var candidateEncodings = []struct {
	name    string
	decoder *encoding.Decoder // nil means plain UTF-8
}{
	{"utf-8", nil},
	{"utf-8-sig", nil},
	{"latin-1", charmap.ISO8859_1.NewDecoder()},
	{"iso-8859-1", charmap.ISO8859_1.NewDecoder()},
	{"cp1252", charmap.Windows1252.NewDecoder()},
	{"windows-1252", charmap.Windows1252.NewDecoder()},
}

// DecodeDelimited parses CSV bytes, trying each candidate encoding in order.
// The first encoding that both decodes the bytes and yields a parseable CSV
// wins; exhausting the list is a decode error.
func DecodeDelimited(data []byte) (*Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	for _, cand := range candidateEncodings {
		text, err := decodeBytes(data, cand.decoder)
		if err != nil {
			continue
		}
		rows, err := parseCSV(text)
		if err != nil || len(rows) == 0 {
			continue
		}
		return NewGrid(rows), nil
	}

	return nil, ErrUndecodable
}

func decodeBytes(data []byte, dec *encoding.Decoder) (string, error) {
	data = stripBOM(data)
	if dec == nil {
		if !utf8.Valid(data) {
			return "", errors.New("invalid utf-8")
		}
		return string(data), nil
	}
	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func parseCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// DecodeSpreadsheet opens spreadsheet bytes with excelize, then the legacy
// XLS engine, then falls back to HTML-table parsing when the content is an
// HTML document saved with a spreadsheet extension. First success wins.
func DecodeSpreadsheet(data []byte) (*Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	if rows, err := readXLSX(data); err == nil {
		return NewGrid(rows), nil
	}
	if rows, err := readLegacyXLS(data); err == nil {
		return NewGrid(rows), nil
	}
	if looksLikeHTML(data) {
		if rows, err := readHTMLTable(data); err == nil {
			return NewGrid(rows), nil
		}
	}

	return nil, ErrNoSpreadsheet
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet has no rows")
	}
	return rows, nil
}

func readLegacyXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet has no rows")
	}
	return rows, nil
}

// looksLikeHTML sniffs the first ~1000 bytes for HTML markers. Some banks
// export "Excel" statements that are HTML documents with a table inside.
func looksLikeHTML(data []byte) bool {
	n := len(data)
	if n > 1000 {
		n = 1000
	}
	head := strings.ToLower(string(data[:n]))
	return strings.Contains(head, "<html") ||
		strings.Contains(head, "<table") ||
		strings.Contains(head, "<!doctype")
}
