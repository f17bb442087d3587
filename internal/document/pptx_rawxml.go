package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"go.uber.org/zap"
)

// rawXMLEngine is the last-resort extractor: a flat scan of every text
// element in every presentation part, including diagram and chart XML that
// the structural walk does not visit. It knows nothing about shapes, so
// its results are merged behind the other engines.
type rawXMLEngine struct{}

func (e *rawXMLEngine) Name() string { return "raw-xml" }

func (e *rawXMLEngine) Available() bool { return true }

func (e *rawXMLEngine) Extract(_ string, pkg *Package, log *zap.Logger) ([]TextUnit, error) {
	var parts []string
	parts = append(parts, sortSlideParts(pkg.PartNames("ppt/slides/slide", ".xml"))...)
	parts = append(parts, sortSlideParts(pkg.PartNames("ppt/notesSlides/notesSlide", ".xml"))...)
	parts = append(parts, pkg.PartNames("ppt/diagrams/", ".xml")...)
	parts = append(parts, pkg.PartNames("ppt/charts/", ".xml")...)

	var units []TextUnit
	for _, part := range parts {
		data, _ := pkg.Part(part)
		found, err := scanRawTextElements(part, data)
		if err != nil {
			return nil, fmt.Errorf("raw scan of %s: %w", part, err)
		}
		units = append(units, found...)
	}

	log.Debug("raw XML scan complete",
		zap.Int("parts", len(parts)),
		zap.Int("units", len(units)))
	return units, nil
}

// scanRawTextElements collects the own text of every element whose local
// name is "t", counting ordinals the same way the streaming parser does so
// that locators from both engines agree.
func scanRawTextElements(part string, data []byte) ([]TextUnit, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// diagram and chart parts do not belong to a single slide; their
	// numeric suffix is not a slide ordinal
	slide := 0
	if strings.HasPrefix(part, "ppt/slides/") || strings.HasPrefix(part, "ppt/notesSlides/") {
		slide = partSlideNumber(part)
	}

	var units []TextUnit
	index := -1
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if localName(goquery.NodeName(s)) != "t" {
			return
		}
		index++
		text := ownText(s)
		if !ShouldTranslate(text) {
			return
		}
		units = append(units, TextUnit{
			Text: text,
			Loc: Locator{
				Part:  part,
				Index: index,
				Slide: slide,
				Kind:  "raw-xml",
			},
		})
	})

	return units, nil
}

// localName strips the namespace prefix from an element name, "a:t" -> "t".
func localName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ownText concatenates the direct text children of a node, ignoring text
// of nested elements.
func ownText(s *goquery.Selection) string {
	var buf strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if len(c.Nodes) == 1 && c.Nodes[0].Type == html.TextNode {
			buf.WriteString(c.Nodes[0].Data)
		}
	})
	return buf.String()
}
