package document

import (
	"fmt"

	"go.uber.org/zap"
)

// Document is an opened Office file with its extracted text units. Units
// keep extraction order; Apply routes translations back by locator.
type Document struct {
	Path  string
	Type  Type
	Units []TextUnit

	pkg *Package
	log *zap.Logger
}

// Options tunes extraction.
type Options struct {
	// MinSlideCoverage is the per-slide character threshold below which
	// the PowerPoint fallback engines run.
	MinSlideCoverage int
}

// Open loads a file, detects its type and extracts its text units.
func Open(path string, log *zap.Logger, opts Options) (*Document, error) {
	docType := DetectType(path)
	if docType == TypeUnknown {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
	if IsTempFile(path) {
		return nil, fmt.Errorf("refusing to open Office temp file: %s", path)
	}

	pkg, err := OpenPackage(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Path: path,
		Type: docType,
		pkg:  pkg,
		log:  log,
	}

	switch docType {
	case TypeExcel:
		doc.Units, err = extractExcel(pkg, log)
	case TypeWord:
		doc.Units, err = extractWord(pkg, log)
	case TypePowerPoint:
		doc.Units, err = ExtractPowerPoint(path, pkg, log, opts.MinSlideCoverage)
	}
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", path, err)
	}

	log.Info("extracted text units",
		zap.String("file", path),
		zap.String("type", docType.String()),
		zap.Int("units", len(doc.Units)))
	return doc, nil
}

// Apply writes translations back into the in-memory package. The map is
// keyed by locator key; units without a package locator (automation-only
// finds) cannot be spliced and are skipped with a debug note.
func (d *Document) Apply(translations map[string]string) error {
	byPart := make(map[string]map[int]string)
	skipped := 0

	for _, unit := range d.Units {
		text, ok := translations[unit.Loc.Key()]
		if !ok || text == "" || text == unit.Text {
			continue
		}
		if unit.Loc.Part == "" {
			skipped++
			continue
		}
		if byPart[unit.Loc.Part] == nil {
			byPart[unit.Loc.Part] = make(map[int]string)
		}
		byPart[unit.Loc.Part][unit.Loc.Index] = text
	}

	if skipped > 0 {
		d.log.Debug("units without a package locator were not written back",
			zap.Int("count", skipped))
	}

	for part, byIndex := range byPart {
		if data, ok := d.pkg.Part(part); ok && !isUTF8Part(data) {
			d.log.Warn("part is not UTF-8 encoded, leaving it untranslated",
				zap.String("part", part))
			continue
		}
		if err := d.pkg.ApplyTranslations(part, byIndex); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the (possibly modified) package to a new path. The source
// file is never written.
func (d *Document) Save(path string) error {
	if path == d.Path {
		return fmt.Errorf("refusing to overwrite source file %s", path)
	}
	return d.pkg.Save(path)
}
