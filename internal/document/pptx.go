package document

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// pptxEngine is one PowerPoint extraction strategy. Engines are tried in
// a fixed priority order and their results merged; a failing engine
// contributes nothing instead of failing the file.
type pptxEngine interface {
	Name() string
	Available() bool
	Extract(path string, pkg *Package, log *zap.Logger) ([]TextUnit, error)
}

var slideNumber = regexp.MustCompile(`(\d+)\.xml$`)

// partSlideNumber parses the 1-based slide ordinal out of a part name such
// as ppt/slides/slide12.xml. Returns 0 when the name has no ordinal.
func partSlideNumber(part string) int {
	m := slideNumber.FindStringSubmatch(part)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// sortSlideParts orders slide parts by their numeric ordinal so slide10
// comes after slide9, not after slide1.
func sortSlideParts(parts []string) []string {
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return partSlideNumber(sorted[i]) < partSlideNumber(sorted[j])
	})
	return sorted
}

// structuralEngine walks the slide and notes XML with the streaming parser.
// It is the primary engine: fast, cross-platform, and it understands enough
// structure to tag table and notes text.
type structuralEngine struct{}

func (e *structuralEngine) Name() string { return "structural" }

func (e *structuralEngine) Available() bool { return true }

func (e *structuralEngine) Extract(_ string, pkg *Package, log *zap.Logger) ([]TextUnit, error) {
	parts := sortSlideParts(pkg.PartNames("ppt/slides/slide", ".xml"))
	parts = append(parts, sortSlideParts(pkg.PartNames("ppt/notesSlides/notesSlide", ".xml"))...)

	var units []TextUnit
	for _, part := range parts {
		data, _ := pkg.Part(part)
		nodes, err := scanTextNodes(data)
		if err != nil {
			return nil, fmt.Errorf("slide part %s: %w", part, err)
		}

		slide := partSlideNumber(part)
		notes := isNotesPart(part)
		for _, node := range nodes {
			if !ShouldTranslate(node.Text) {
				continue
			}
			units = append(units, TextUnit{
				Text: node.Text,
				Loc: Locator{
					Part:  part,
					Index: node.Index,
					Slide: slide,
					Kind:  structuralKind(node.Path, notes),
				},
			})
		}
		log.Debug("scanned slide part",
			zap.String("part", part),
			zap.Int("text_nodes", len(nodes)))
	}

	return units, nil
}

func isNotesPart(part string) bool {
	return strings.HasPrefix(part, "ppt/notesSlides/")
}

// structuralKind classifies a text run by its ancestor elements so the
// merge step and the logs can tell shape text from table and notes text.
func structuralKind(path []string, notes bool) string {
	if notes {
		return "notes"
	}
	inFrame := false
	for _, name := range path {
		switch name {
		case "tbl":
			return "table"
		case "graphicFrame":
			inFrame = true
		}
	}
	if inFrame {
		return "frame"
	}
	return "shape"
}

// ExtractPowerPoint runs the engine chain: the structural engine first,
// then, for decks where some slide stays under the coverage threshold, the
// automation and raw-XML engines, merged and deduplicated.
func ExtractPowerPoint(path string, pkg *Package, log *zap.Logger, minSlideCoverage int) ([]TextUnit, error) {
	engines := []pptxEngine{
		&structuralEngine{},
		newAutomationEngine(),
		&rawXMLEngine{},
	}

	units, err := engines[0].Extract(path, pkg, log)
	if err != nil {
		log.Warn("structural extraction failed, relying on fallback engines", zap.Error(err))
		units = nil
	}

	low := slidesBelowCoverage(units, pkg, minSlideCoverage)
	if err == nil && len(low) == 0 {
		return units, nil
	}
	if len(low) > 0 {
		log.Info("slides below text coverage threshold, escalating",
			zap.Ints("slides", low),
			zap.Int("threshold", minSlideCoverage))
	}

	for _, engine := range engines[1:] {
		if !engine.Available() {
			log.Debug("extraction engine unavailable", zap.String("engine", engine.Name()))
			continue
		}
		extra, err := engine.Extract(path, pkg, log)
		if err != nil {
			log.Warn("extraction engine failed",
				zap.String("engine", engine.Name()),
				zap.Error(err))
			continue
		}
		before := len(units)
		units = mergeUnits(units, extra)
		log.Debug("merged engine results",
			zap.String("engine", engine.Name()),
			zap.Int("found", len(extra)),
			zap.Int("added", len(units)-before))
	}

	return units, nil
}

// slidesBelowCoverage returns the slides whose extracted text (notes
// excluded) is shorter than the threshold. Such slides typically hold
// SmartArt, WordArt or charts that the structural walk cannot reach.
func slidesBelowCoverage(units []TextUnit, pkg *Package, threshold int) []int {
	slideParts := pkg.PartNames("ppt/slides/slide", ".xml")
	if threshold <= 0 || len(slideParts) == 0 {
		return nil
	}

	coverage := make(map[int]int, len(slideParts))
	for _, part := range slideParts {
		coverage[partSlideNumber(part)] = 0
	}
	for _, unit := range units {
		if unit.Loc.Slide > 0 && unit.Loc.Kind != "notes" {
			coverage[unit.Loc.Slide] += len([]rune(unit.Text))
		}
	}

	var low []int
	for slide, chars := range coverage {
		if chars < threshold {
			low = append(low, slide)
		}
	}
	sort.Ints(low)
	return low
}

// mergeUnits appends the units of a fallback engine, dropping duplicates.
// Identity is the locator key where both engines see the package directly,
// and the normalized per-slide text where locators are not comparable.
func mergeUnits(primary, extra []TextUnit) []TextUnit {
	seenKey := make(map[string]bool, len(primary))
	seenText := make(map[string]bool, len(primary))
	for _, unit := range primary {
		seenKey[unit.Loc.Key()] = true
		seenText[slideTextKey(unit)] = true
	}

	merged := primary
	for _, unit := range extra {
		if seenKey[unit.Loc.Key()] || seenText[slideTextKey(unit)] {
			continue
		}
		seenKey[unit.Loc.Key()] = true
		seenText[slideTextKey(unit)] = true
		merged = append(merged, unit)
	}
	return merged
}

func slideTextKey(unit TextUnit) string {
	return fmt.Sprintf("%d|%s", unit.Loc.Slide, NormalizeForDedup(unit.Text))
}
