package parser

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Load reads a delimited file as a single sheet named after the file.
func (csvLoader) Load(path string, opt workbook.Options) (*workbook.Workbook, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, malformed("open csv", path, err)
	}
	defer fh.Close()

	br := bufio.NewReader(fh)
	first, _ := br.Peek(4096)
	r := csv.NewReader(br)
	r.Comma = sniffDelimiter(path, string(first))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, malformed("read csv", path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return workbook.New(path, []workbook.Sheet{{Name: name, Rows: rows}}, opt), nil
}

// sniffDelimiter picks tab for .tsv files, otherwise the most frequent of
// ',', ';' and tab on the first line. Ties go to ','.
func sniffDelimiter(path, head string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	if i := strings.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestN := ',', strings.Count(head, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(head, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
