package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets bundles assets into a single zip archive in memory.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteArchive(buf, assets, time.Now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteArchive streams assets into w. Images are already compressed, so
// entries are stored rather than deflated. Duplicate names get a numeric suffix.
func WriteArchive(w io.Writer, assets []Asset, modified time.Time) error {
	if len(assets) == 0 {
		return fmt.Errorf("zip: no assets to archive")
	}
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(assets))
	for i, asset := range assets {
		name := asset.Filename
		if name == "" {
			name = fmt.Sprintf("asset-%d", i+1)
		}
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n+1, name)
		}
		seen[asset.Filename]++
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Store,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := entry.Write(asset.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	return zw.Close()
}
