package vecindex

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newIndexWithVectors(t *testing.T, vectors ...[]float32) *Flat {
	t.Helper()
	index, err := New(len(vectors[0]))
	require.NoError(t, err)
	for _, v := range vectors {
		require.NoError(t, index.Append(v))
	}
	return index
}

func TestNew_RejectsNonPositiveDimension(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(-3)
	require.Error(t, err)
}

func TestFlat_AppendRejectsDimensionMismatch(t *testing.T) {
	index, err := New(3)
	require.NoError(t, err)

	require.Error(t, index.Append([]float32{1, 0}))
	require.NoError(t, index.Append([]float32{1, 0, 0}))
	require.Equal(t, 1, index.Len())
}

func TestFlat_SearchOrdering(t *testing.T) {
	index := newIndexWithVectors(t,
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
		[]float32{0.6, 0.8, 0},
		[]float32{0, 0, 1},
	)

	results, err := index.Search([]float32{1, 0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.Equal(t, uint32(0), results[0].ID)
	require.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	require.Equal(t, uint32(2), results[1].ID)
	require.InDelta(t, 0.6, float64(results[1].Score), 1e-6)

	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestFlat_SearchTiesBreakByID(t *testing.T) {
	index := newIndexWithVectors(t,
		[]float32{0, 1},
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
	)

	results, err := index.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, uint32(1), results[0].ID)
	require.Equal(t, uint32(2), results[1].ID)
	require.Equal(t, uint32(3), results[2].ID)
}

func TestFlat_SearchClampsK(t *testing.T) {
	index := newIndexWithVectors(t, []float32{1, 0}, []float32{0, 1})

	results, err := index.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = index.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, uint32(0), results[0].ID)
}

func TestFlat_SearchEmptyIndex(t *testing.T) {
	index, err := New(2)
	require.NoError(t, err)

	results, err := index.Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestFlat_SearchRejectsBadInput(t *testing.T) {
	index := newIndexWithVectors(t, []float32{1, 0})

	_, err := index.Search([]float32{1, 0, 0}, 1)
	require.Error(t, err)

	_, err = index.Search([]float32{1, 0}, 0)
	require.Error(t, err)
}

func TestFlat_BinaryRoundTrip(t *testing.T) {
	index := newIndexWithVectors(t,
		[]float32{0.1, 0.2, 0.3},
		[]float32{-0.4, 0.5, -0.6},
	)

	var buf bytes.Buffer
	n, err := index.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	loaded, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, index.Dimension(), loaded.Dimension())
	require.Equal(t, index.Len(), loaded.Len())
	require.Equal(t, index.vectors, loaded.vectors)
}

func TestReadFrom_RejectsCorruptHeader(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "magic")
}

func TestReadFrom_RejectsTruncatedVectors(t *testing.T) {
	index := newIndexWithVectors(t, []float32{1, 0, 0})

	var buf bytes.Buffer
	_, err := index.WriteTo(&buf)
	require.NoError(t, err)

	truncated := buf.Bytes()[:buf.Len()-2]
	_, err = ReadFrom(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestFlat_FileRoundTrip(t *testing.T) {
	index := newIndexWithVectors(t, []float32{1, 0}, []float32{0, 1})
	path := filepath.Join(t.TempDir(), "index.bin")

	require.NoError(t, index.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	results, err := loaded.Search([]float32{0, 1}, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), results[0].ID)
}
