package document

import (
	"fmt"

	"go.uber.org/zap"
)

// extractExcel pulls translatable text from a workbook: the shared string
// table, inline strings in the worksheets, and shape text in the drawing
// parts. Cell values and formulas are left alone.
func extractExcel(pkg *Package, log *zap.Logger) ([]TextUnit, error) {
	var parts []string
	if pkg.HasPart("xl/sharedStrings.xml") {
		parts = append(parts, "xl/sharedStrings.xml")
	}
	parts = append(parts, pkg.PartNames("xl/worksheets/", ".xml")...)
	parts = append(parts, pkg.PartNames("xl/drawings/", ".xml")...)

	var units []TextUnit
	for _, part := range parts {
		data, _ := pkg.Part(part)
		nodes, err := scanTextNodes(data)
		if err != nil {
			return nil, fmt.Errorf("excel part %s: %w", part, err)
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
					Kind:  "workbook",
				},
			})
		}
		log.Debug("scanned workbook part",
			zap.String("part", part),
			zap.Int("text_nodes", len(nodes)))
	}

	return units, nil
}
