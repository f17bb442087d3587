package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Package is an OOXML file held fully in memory. Parts that are never
// touched are written back byte for byte, which is what guarantees that
// formatting, styles, images and layout survive the round trip.
type Package struct {
	parts map[string][]byte
	order []string
}

// OpenPackage reads a .xlsx/.docx/.pptx ZIP container into memory.
func OpenPackage(path string) (*Package, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package %s: %w", path, err)
	}
	defer reader.Close()

	pkg := &Package{parts: make(map[string][]byte, len(reader.File))}
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", file.Name, err)
		}
		pkg.parts[file.Name] = data
		pkg.order = append(pkg.order, file.Name)
	}

	return pkg, nil
}

// Part returns the raw bytes of a named part.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// HasPart reports whether the package contains the named part.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart replaces the bytes of a part.
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// PartNames returns the parts under a directory prefix with the given
// suffix, in a stable sorted order.
func (p *Package) PartNames(prefix, suffix string) []string {
	var names []string
	for _, name := range p.order {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Save writes the package as a new ZIP archive, preserving the original
// entry order. The destination directory is created when missing.
func (p *Package) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, name := range p.order {
		w, err := writer.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("failed to create part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return fmt.Errorf("failed to write part %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
