package document

import (
	"fmt"

	"go.uber.org/zap"
)

// extractWord pulls translatable runs from the main document body plus
// headers, footers, footnotes and endnotes.
func extractWord(pkg *Package, log *zap.Logger) ([]TextUnit, error) {
	var parts []string
	if pkg.HasPart("word/document.xml") {
		parts = append(parts, "word/document.xml")
	}
	parts = append(parts, pkg.PartNames("word/header", ".xml")...)
	parts = append(parts, pkg.PartNames("word/footer", ".xml")...)
	for _, extra := range []string{"word/footnotes.xml", "word/endnotes.xml"} {
		if pkg.HasPart(extra) {
			parts = append(parts, extra)
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("word/document.xml not found, not a Word package")
	}

	var units []TextUnit
	for _, part := range parts {
		data, _ := pkg.Part(part)
		nodes, err := scanTextNodes(data)
		if err != nil {
			return nil, fmt.Errorf("word part %s: %w", part, err)
		}
		for _, node := range nodes {
			if !ShouldTranslate(node.Text) {
				continue
			}
			units = append(units, TextUnit{
				Text: node.Text,
				Loc: Locator{
					Part:  part,
					Index: node.Index,
					Kind:  "body",
				},
			})
		}
		log.Debug("scanned document part",
			zap.String("part", part),
			zap.Int("text_nodes", len(nodes)))
	}

	return units, nil
}
