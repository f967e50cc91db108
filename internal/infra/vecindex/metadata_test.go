package vecindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

func TestMetadata_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	meta := Metadata{
		Items: []rag.FaqRecord{
			{ID: 1, Category: "envíos", Question: "¿Cuánto tarda?", AnswerText: "24 a 48 horas.", SourceURL: "https://example.com/faq/1"},
			{ID: 2, Category: "pagos", Question: "¿Qué métodos aceptan?", AnswerText: "Tarjeta y transferencia.", SourceURL: "https://example.com/faq/2"},
		},
		EmbeddingModel: "text-embedding-3-small",
	}

	require.NoError(t, SaveMetadata(meta, path))

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, meta, loaded)
}

func TestLoadMetadata_MissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadMetadata_RejectsMissingItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"embedding_model":"x"}`), 0o644))

	_, err := LoadMetadata(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "items")
}

func TestLoadMetadata_RejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items":`), 0o644))

	_, err := LoadMetadata(path)
	require.Error(t, err)
}
