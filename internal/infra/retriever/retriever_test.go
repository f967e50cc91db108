package retriever

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/vecindex"
	apperrors "github.com/kaabil/faqrag/pkg/errors"
)

func writeArtifactPair(t *testing.T, dir string, vectors [][]float32, items []rag.FaqRecord) (string, string) {
	t.Helper()
	index, err := vecindex.New(len(vectors[0]))
	require.NoError(t, err)
	for _, v := range vectors {
		require.NoError(t, index.Append(v))
	}

	indexPath := filepath.Join(dir, "index.bin")
	metaPath := filepath.Join(dir, "meta.json")
	require.NoError(t, index.SaveToFile(indexPath))
	require.NoError(t, vecindex.SaveMetadata(vecindex.Metadata{Items: items}, metaPath))
	return indexPath, metaPath
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIndexRetriever_RetrieveBeforeReload(t *testing.T) {
	r := New("does-not-exist.bin", "does-not-exist.json", testLogger())
	require.False(t, r.Loaded())

	_, err := r.Retrieve(context.Background(), []float32{1, 0}, 4)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeIndexNotLoaded))
}

func TestIndexRetriever_ReloadMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := New(filepath.Join(dir, "index.bin"), filepath.Join(dir, "meta.json"), testLogger())

	err := r.Reload()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeIndexNotLoaded))
	require.False(t, r.Loaded())
}

func TestIndexRetriever_ReloadAndRetrieve(t *testing.T) {
	items := []rag.FaqRecord{
		{ID: 1, Category: "envíos", Question: "¿Cuánto tarda el envío?", AnswerText: "24 a 48 horas.", SourceURL: "https://example.com/faq/1"},
		{ID: 2, Category: "pagos", Question: "¿Qué métodos aceptan?", AnswerText: "Tarjeta y transferencia.", SourceURL: "https://example.com/faq/2"},
		{ID: 3, Category: "devoluciones", Question: "¿Puedo devolver un pedido?", AnswerText: "Sí, en 30 días.", SourceURL: "https://example.com/faq/3"},
	}
	indexPath, metaPath := writeArtifactPair(t, t.TempDir(), [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.6, 0.8, 0},
	}, items)

	r := New(indexPath, metaPath, testLogger())
	require.NoError(t, r.Reload())
	require.True(t, r.Loaded())

	evidence, err := r.Retrieve(context.Background(), []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, evidence, 2)

	require.Equal(t, 2, evidence[0].Record.ID)
	require.InDelta(t, 1.0, evidence[0].Score, 1e-6)
	require.Equal(t, 0, evidence[0].Rank)

	require.Equal(t, 3, evidence[1].Record.ID)
	require.InDelta(t, 0.8, evidence[1].Score, 1e-6)
	require.Equal(t, 1, evidence[1].Rank)
}

func TestIndexRetriever_RetrieveClampsK(t *testing.T) {
	indexPath, metaPath := writeArtifactPair(t, t.TempDir(), [][]float32{{1, 0}}, []rag.FaqRecord{{ID: 1}})

	r := New(indexPath, metaPath, testLogger())
	require.NoError(t, r.Reload())

	evidence, err := r.Retrieve(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, evidence, 1)
}

func TestIndexRetriever_RetrieveDimensionMismatch(t *testing.T) {
	indexPath, metaPath := writeArtifactPair(t, t.TempDir(), [][]float32{{1, 0, 0}}, []rag.FaqRecord{{ID: 1}})

	r := New(indexPath, metaPath, testLogger())
	require.NoError(t, r.Reload())

	_, err := r.Retrieve(context.Background(), []float32{1, 0}, 4)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeDimensionMismatch))
}

func TestIndexRetriever_ReloadRejectsCountMismatch(t *testing.T) {
	dir := t.TempDir()
	indexPath, metaPath := writeArtifactPair(t, dir, [][]float32{{1, 0}, {0, 1}}, []rag.FaqRecord{{ID: 1}})

	r := New(indexPath, metaPath, testLogger())
	err := r.Reload()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeDimensionMismatch))
	require.False(t, r.Loaded())
}

func TestIndexRetriever_FailedReloadKeepsServing(t *testing.T) {
	dir := t.TempDir()
	indexPath, metaPath := writeArtifactPair(t, dir, [][]float32{{1, 0}}, []rag.FaqRecord{{ID: 1, AnswerText: "ok"}})

	r := New(indexPath, metaPath, testLogger())
	require.NoError(t, r.Reload())

	// Point the same paths at a now-broken metadata store.
	broken := New(indexPath, filepath.Join(dir, "missing.json"), testLogger())
	broken.current.Store(r.current.Load())
	require.Error(t, broken.Reload())

	evidence, err := broken.Retrieve(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, evidence[0].Record.ID)
}
