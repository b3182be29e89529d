package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/rituals/internal/model"
)

// Version is the only transfer format version this build reads or writes.
const Version = 1

// Package is the transfer container.
type Package struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Rituals    []model.Ritual `json:"rituals"`
}

// Generate wraps rituals in a version 1 package stamped with now.
// The rituals are deep-copied.
func Generate(rituals []model.Ritual, now time.Time) Package {
	return Package{
		Version:    Version,
		ExportedAt: now,
		Rituals:    model.CloneAll(rituals),
	}
}

// Encode renders pkg as 2-space indented JSON with a trailing newline.
func Encode(pkg Package) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pkg); err != nil {
		return nil, fmt.Errorf("encode transfer package: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode validates raw and decodes it. Any failure is INVALID_TRANSFER_FORMAT.
func Decode(raw []byte) (Package, error) {
	if err := Validate(raw); err != nil {
		return Package{}, err
	}

	// version may be written as 1.0, which does not decode into an int
	var wire struct {
		ExportedAt time.Time      `json:"exportedAt"`
		Rituals    []model.Ritual `json:"rituals"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Package{}, model.NewInvalidTransferFormatError("decode package", err)
	}
	pkg := Package{Version: Version, ExportedAt: wire.ExportedAt, Rituals: wire.Rituals}
	for i := range pkg.Rituals {
		if pkg.Rituals[i].Entries == nil {
			pkg.Rituals[i].Entries = []model.Entry{}
		}
	}
	return pkg, nil
}

// FileName returns the conventional backup file name for pkg,
// rituals_backup_<YYYY-MM-DD>.json, dated from ExportedAt in UTC.
func FileName(pkg Package) string {
	return fmt.Sprintf("rituals_backup_%s.json", pkg.ExportedAt.UTC().Format("2006-01-02"))
}

// WriteFile encodes pkg and writes it to path atomically: the data goes to
// a temporary file in the same directory which is then renamed over path.
func WriteFile(path string, pkg Package) error {
	data, err := Encode(pkg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".rituals-export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
