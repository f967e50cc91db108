// Package faqsource loads the FAQ corpus from its structured CSV source.
package faqsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kaabil/faqrag/internal/domain/rag"
	apperrors "github.com/kaabil/faqrag/pkg/errors"
)

var requiredColumns = []string{"category", "question", "answer_text", "source_url"}

// LoadFile reads FAQ records from a CSV file.
func LoadFile(path string) ([]rag.FaqRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// Load parses CSV content with a required header row. Record ids are the
// dense 0-based row positions, matching vector insertion order at build time.
func Load(r io.Reader) ([]rag.FaqRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.Wrap(apperrors.CodeEmptyCorpus, "corpus file is empty", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []rag.FaqRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row %d: %w", len(records)+2, err)
		}
		records = append(records, rag.FaqRecord{
			ID:         len(records),
			Category:   field(row, columns["category"]),
			Question:   field(row, columns["question"]),
			AnswerText: field(row, columns["answer_text"]),
			SourceURL:  field(row, columns["source_url"]),
		})
	}

	if len(records) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeEmptyCorpus, "corpus file has a header but no records", nil)
	}
	return records, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("corpus header is missing column %q", required)
		}
	}
	return columns, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
