package vecindex

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// Metadata is the store persisted next to the index artifact. Items are
// ordered by internal id; a valid pair satisfies len(Items) == index.Len().
type Metadata struct {
	Items          []rag.FaqRecord `json:"items"`
	EmbeddingModel string          `json:"embedding_model,omitempty"`
}

// SaveMetadata writes the metadata store as JSON and syncs it to disk.
func SaveMetadata(meta Metadata, filename string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.Write(data); err != nil {
		return err
	}
	return file.Sync()
}

// LoadMetadata reads a metadata store from disk.
func LoadMetadata(filename string) (Metadata, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	if meta.Items == nil {
		return Metadata{}, fmt.Errorf("metadata has no items list")
	}
	return meta, nil
}
