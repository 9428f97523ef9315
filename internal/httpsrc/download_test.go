package httpsrc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestDownloadToFile(t *testing.T) {
	content := "[Event \"Test\"]\n\n1. e4 e5 *\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Write([]byte(content))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "games.pgn")
	d := NewDownloader()

	var last Progress
	err := d.DownloadToFile(context.Background(), srv.URL, dest, func(p Progress) { last = p })
	if err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != content {
		t.Errorf("downloaded content mismatch: got %q", got)
	}
	if last.BytesDownloaded != int64(len(content)) {
		t.Errorf("progress BytesDownloaded = %d, want %d", last.BytesDownloaded, len(content))
	}
}

func TestDownloadToFile_Resume(t *testing.T) {
	content := "0123456789abcdef"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.Header.Get("Range")
		if rng == "" {
			w.Write([]byte(content))
			return
		}
		var start int64
		if n, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(rng, "bytes="), "-"), 10, 64); err == nil {
			start = n
		}
		w.Header().Set("Content-Range",
			"bytes "+strconv.FormatInt(start, 10)+"-"+strconv.Itoa(len(content)-1)+"/"+strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(content[start:]))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "games.pgn")
	if err := os.WriteFile(dest, []byte(content[:8]), 0644); err != nil {
		t.Fatalf("seeding partial file: %v", err)
	}

	d := NewDownloader()
	if err := d.DownloadToFile(context.Background(), srv.URL, dest, nil); err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != content {
		t.Errorf("resumed content = %q, want %q", got, content)
	}
}

func TestDownloadToFile_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader()
	err := d.DownloadToFile(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.pgn"), nil)
	if err == nil {
		t.Fatal("DownloadToFile() should fail on 404")
	}
}

func TestGetContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "12345")
	}))
	defer srv.Close()

	d := NewDownloader()
	n, err := d.GetContentLength(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetContentLength() error = %v", err)
	}
	if n != 12345 {
		t.Errorf("GetContentLength() = %d, want 12345", n)
	}
}

func TestOpen_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")
	if err := os.WriteFile(path, []byte("1. e4 *"), 0644); err != nil {
		t.Fatal(err)
	}

	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got := make([]byte, 16)
	n, _ := rc.Read(got)
	if string(got[:n]) != "1. e4 *" {
		t.Errorf("Open() read = %q", got[:n])
	}
}

func TestOpen_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte("1. d4 d5 *")); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got := make([]byte, 32)
	n, _ := rc.Read(got)
	if string(got[:n]) != "1. d4 d5 *" {
		t.Errorf("Open() read = %q", got[:n])
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
