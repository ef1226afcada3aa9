package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	data, err := ArchiveAssets([]Asset{
		{Filename: "a.png", MIME: "image/png", Data: []byte("one")},
		{Filename: "a.png", MIME: "image/png", Data: []byte("two")},
		{Data: []byte("three")},
	})
	if err != nil {
		t.Fatalf("ArchiveAssets error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	want := map[string]string{"a.png": "one", "2-a.png": "two", "asset-3": "three"}
	if len(zr.File) != len(want) {
		t.Fatalf("entries = %d, want %d", len(zr.File), len(want))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if want[f.Name] != string(got) {
			t.Fatalf("%s = %q, want %q", f.Name, got, want[f.Name])
		}
	}
}

func TestArchiveAssetsEmpty(t *testing.T) {
	if _, err := ArchiveAssets(nil); err == nil {
		t.Fatalf("expected error for empty archive")
	}
}
