package httpsrc

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Open opens a local PGN archive, transparently decompressing .zst and .gz
// files by extension. Lichess publishes its monthly databases as .pgn.zst.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return &zstdReadCloser{dec: dec, file: f}, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return &gzipReadCloser{gz: gz, file: f}, nil
	default:
		return f, nil
	}
}

type zstdReadCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.file.Close()
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipReadCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		g.file.Close()
		return err
	}
	return g.file.Close()
}
