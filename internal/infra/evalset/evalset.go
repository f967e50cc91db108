// Package evalset loads the labeled question set used by the offline
// evaluator.
package evalset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// LoadFile reads an ordered JSON list of labeled cases.
func LoadFile(path string) ([]rag.EvalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read eval set: %w", err)
	}
	var records []rag.EvalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse eval set: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("eval set contains no cases")
	}
	return records, nil
}
