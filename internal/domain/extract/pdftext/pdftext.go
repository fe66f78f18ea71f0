// Package pdftext turns a PDF byte stream into plain text and any detected
// tabular grids. It is the only package that touches the PDF library; the
// extractors upstream consume text and tables, never bytes.
package pdftext

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Table is a detected grid: rows of cells, left to right.
type Table [][]string

// Document is the extraction product for one PDF.
type Document struct {
	Text   string
	Tables []Table
	Pages  int
}

// cellGap is the horizontal whitespace, in PDF points, that separates two
// words into different table cells. Roughly four character widths at common
// statement font sizes.
const cellGap = 22.0

// Extract reads a PDF and returns its text plus detected tables.
// The PDF library can panic on malformed files, so this recovers and reports
// the panic as an error instead.
func Extract(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf extraction panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc = &Document{Pages: reader.NumPage()}

	var text strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}

		var pageCells [][]string
		for _, row := range rows {
			words := make([]pdf.Text, len(row.Content))
			copy(words, row.Content)
			sort.Slice(words, func(i, j int) bool { return words[i].X < words[j].X })

			cells := SplitCells(words, cellGap)
			if len(cells) > 0 {
				text.WriteString(strings.Join(cells, " "))
				text.WriteByte('\n')
			}
			pageCells = append(pageCells, cells)
		}

		doc.Tables = append(doc.Tables, detectTables(pageCells)...)
	}

	doc.Text = text.String()
	return doc, nil
}

// SplitCells groups a row of positioned words into cells, starting a new cell
// wherever the horizontal gap to the previous word exceeds gap.
func SplitCells(words []pdf.Text, gap float64) []string {
	var cells []string
	var current strings.Builder
	var prevEnd float64

	for i, w := range words {
		s := strings.TrimSpace(w.S)
		if s == "" {
			continue
		}
		if i > 0 && current.Len() > 0 && w.X-prevEnd > gap {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
		prevEnd = w.X + w.W
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}
	return cells
}

// detectTables finds runs of consecutive multi-cell rows and groups each run
// into a Table. Runs shorter than two rows are prose, not grids.
func detectTables(rows [][]string) []Table {
	var tables []Table
	var current Table

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, cells := range rows {
		if len(cells) >= 2 {
			current = append(current, cells)
		} else {
			flush()
		}
	}
	flush()
	return tables
}
