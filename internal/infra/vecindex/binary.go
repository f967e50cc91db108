package vecindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Binary artifact layout: magic, format version, dimension, vector count,
// then row-major little-endian float32 vectors in id order.
const (
	fileMagic     uint32 = 0x46514958 // "FQIX"
	formatVersion uint32 = 1
)

// WriteTo serializes the index in binary format.
func (f *Flat) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	header := []uint32{fileMagic, formatVersion, uint32(f.dimension), uint32(f.count)}
	for _, v := range header {
		if err := binary.Write(cw, binary.LittleEndian, v); err != nil {
			return cw.n, fmt.Errorf("write header: %w", err)
		}
	}

	buf := make([]byte, 4)
	for _, v := range f.vectors {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		if _, err := cw.Write(buf); err != nil {
			return cw.n, fmt.Errorf("write vectors: %w", err)
		}
	}
	return cw.n, nil
}

// ReadFrom deserializes an index previously written with WriteTo.
func ReadFrom(r io.Reader) (*Flat, error) {
	var magic, version, dimension, count uint32
	for _, field := range []*uint32{&magic, &version, &dimension, &count} {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("not an index artifact (magic %#x)", magic)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported index format version %d", version)
	}
	if dimension == 0 {
		return nil, fmt.Errorf("index artifact has zero dimension")
	}

	f := &Flat{
		dimension: int(dimension),
		count:     int(count),
		vectors:   make([]float32, int(dimension)*int(count)),
	}
	buf := make([]byte, 4)
	for i := range f.vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read vectors: %w", err)
		}
		f.vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
	}
	return f, nil
}

// SaveToFile writes the index to the given path and syncs it to disk. Callers
// that need an atomic artifact swap write to a temporary path and rename.
func (f *Flat) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := f.WriteTo(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Sync()
}

// LoadFromFile reads an index artifact from disk.
func LoadFromFile(filename string) (*Flat, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadFrom(bufio.NewReader(file))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
