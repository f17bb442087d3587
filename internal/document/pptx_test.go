package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slideXML(texts ...string) string {
	body := `<p:sld><p:cSld><p:spTree>`
	for _, text := range texts {
		body += `<p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp>`
	}
	body += `</p:spTree></p:cSld></p:sld>`
	return body
}

func pptxParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml":                `<Types/>`,
		"ppt/presentation.xml":               `<p:presentation/>`,
		"ppt/slides/slide1.xml":              slideXML("Welcome to the roadmap", "Agenda for today"),
		"ppt/slides/slide2.xml":              slideXML("Q3 milestones"),
		"ppt/notesSlides/notesSlide1.xml":    `<p:notes><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>Speaker notes here</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:notes>`,
		"ppt/slideMasters/slideMaster1.xml":  `<p:sldMaster/>`,
	}
}

func TestStructuralEngineExtractsSlidesAndNotes(t *testing.T) {
	path := writeTestPackage(t, "deck.pptx", pptxParts())

	doc, err := Open(path, testLogger(), Options{MinSlideCoverage: 5})
	require.NoError(t, err)
	assert.Equal(t, TypePowerPoint, doc.Type)

	var texts []string
	kinds := make(map[string]string)
	for _, unit := range doc.Units {
		texts = append(texts, unit.Text)
		kinds[unit.Text] = unit.Loc.Kind
	}

	assert.Equal(t, []string{"Welcome to the roadmap", "Agenda for today", "Q3 milestones", "Speaker notes here"}, texts)
	assert.Equal(t, "shape", kinds["Welcome to the roadmap"])
	assert.Equal(t, "notes", kinds["Speaker notes here"])
}

func TestStructuralEngineTaggingTables(t *testing.T) {
	parts := pptxParts()
	parts["ppt/slides/slide3.xml"] = `<p:sld><p:cSld><p:spTree><p:graphicFrame><a:graphic><a:graphicData><a:tbl>` +
		`<a:tr><a:tc><a:txBody><a:p><a:r><a:t>Cell text</a:t></a:r></a:p></a:txBody></a:tc></a:tr>` +
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame></p:spTree></p:cSld></p:sld>`
	path := writeTestPackage(t, "deck.pptx", parts)

	doc, err := Open(path, testLogger(), Options{MinSlideCoverage: 5})
	require.NoError(t, err)

	found := false
	for _, unit := range doc.Units {
		if unit.Text == "Cell text" {
			found = true
			assert.Equal(t, "table", unit.Loc.Kind)
			assert.Equal(t, 3, unit.Loc.Slide)
		}
	}
	assert.True(t, found)
}

func TestSlidePartOrdering(t *testing.T) {
	parts := []string{
		"ppt/slides/slide10.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide1.xml",
	}
	sorted := sortSlideParts(parts)
	assert.Equal(t, []string{
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide10.xml",
	}, sorted)
}

func TestCoverageEscalationPicksUpDiagramText(t *testing.T) {
	parts := pptxParts()
	// slide 4 has almost no structural text but a SmartArt diagram part
	// carries the real content
	parts["ppt/slides/slide4.xml"] = slideXML()
	parts["ppt/diagrams/data1.xml"] = `<dgm:dataModel><dgm:ptLst><dgm:pt>` +
		`<dgm:t><a:p><a:r><a:t>Process step one</a:t></a:r></a:p></dgm:t>` +
		`</dgm:pt></dgm:ptLst></dgm:dataModel>`
	path := writeTestPackage(t, "deck.pptx", parts)

	doc, err := Open(path, testLogger(), Options{MinSlideCoverage: 5})
	require.NoError(t, err)

	var texts []string
	for _, unit := range doc.Units {
		texts = append(texts, unit.Text)
	}
	assert.Contains(t, texts, "Process step one")
}

func TestCoverageEscalationDoesNotDuplicateSlideText(t *testing.T) {
	parts := pptxParts()
	parts["ppt/slides/slide4.xml"] = slideXML() // forces escalation
	path := writeTestPackage(t, "deck.pptx", parts)

	doc, err := Open(path, testLogger(), Options{MinSlideCoverage: 5})
	require.NoError(t, err)

	// the raw engine re-reads slide1 but every unit it finds there has
	// the same locator as the structural one, so nothing is added twice
	counts := make(map[string]int)
	for _, unit := range doc.Units {
		counts[unit.Loc.Key()]++
	}
	for key, n := range counts {
		assert.Equal(t, 1, n, "duplicate unit for %s", key)
	}

	textCount := 0
	for _, unit := range doc.Units {
		if unit.Text == "Welcome to the roadmap" {
			textCount++
		}
	}
	assert.Equal(t, 1, textCount)
}

func TestSlidesBelowCoverage(t *testing.T) {
	pkg := &Package{parts: map[string][]byte{}}
	pkg.SetPart("ppt/slides/slide1.xml", nil)
	pkg.SetPart("ppt/slides/slide2.xml", nil)

	units := []TextUnit{
		{Text: "plenty of text on this slide", Loc: Locator{Part: "ppt/slides/slide1.xml", Slide: 1, Kind: "shape"}},
		{Text: "x", Loc: Locator{Part: "ppt/slides/slide2.xml", Slide: 2, Kind: "shape"}},
		// notes never count toward slide coverage
		{Text: "long speaker notes that look like coverage", Loc: Locator{Part: "ppt/notesSlides/notesSlide2.xml", Slide: 2, Kind: "notes"}},
	}

	assert.Equal(t, []int{2}, slidesBelowCoverage(units, pkg, 10))
	assert.Empty(t, slidesBelowCoverage(units, pkg, 1))
	assert.Empty(t, slidesBelowCoverage(units, pkg, 0))
}

func TestMergeUnitsDedup(t *testing.T) {
	primary := []TextUnit{
		{Text: "Title", Loc: Locator{Part: "ppt/slides/slide1.xml", Index: 0, Slide: 1, Kind: "structural"}},
	}
	extra := []TextUnit{
		// same locator, different kind: dropped
		{Text: "Title", Loc: Locator{Part: "ppt/slides/slide1.xml", Index: 0, Slide: 1, Kind: "raw-xml"}},
		// same visible text on the same slide without comparable locator: dropped
		{Text: "  TITLE ", Loc: Locator{Slide: 1, Shape: 3, Kind: "automation"}},
		// genuinely new text: kept
		{Text: "Hidden WordArt", Loc: Locator{Slide: 1, Shape: 4, Kind: "automation"}},
		// same text but on another slide: kept
		{Text: "Title", Loc: Locator{Part: "ppt/slides/slide2.xml", Index: 0, Slide: 2, Kind: "raw-xml"}},
	}

	merged := mergeUnits(primary, extra)
	require.Len(t, merged, 3)
	assert.Equal(t, "Title", merged[0].Text)
	assert.Equal(t, "Hidden WordArt", merged[1].Text)
	assert.Equal(t, 2, merged[2].Loc.Slide)
}

func TestAutomationEngineUnavailableOffWindows(t *testing.T) {
	engine := newAutomationEngine()
	// the test suite runs on CI hosts without Office; the engine must
	// step aside instead of erroring
	if engine.Available() {
		t.Skip("PowerPoint automation available on this host")
	}
	assert.False(t, engine.Available())
}

func TestPowerPointRoundTrip(t *testing.T) {
	path := writeTestPackage(t, "deck.pptx", pptxParts())

	doc, err := Open(path, testLogger(), Options{MinSlideCoverage: 5})
	require.NoError(t, err)

	translations := make(map[string]string)
	for _, unit := range doc.Units {
		translations[unit.Loc.Key()] = "VI:" + unit.Text
	}
	require.NoError(t, doc.Apply(translations))

	outPath := path + ".out.pptx"
	require.NoError(t, doc.Save(outPath))

	out, err := Open(outPath, testLogger(), Options{MinSlideCoverage: 5})
	require.NoError(t, err)

	var texts []string
	for _, unit := range out.Units {
		texts = append(texts, unit.Text)
	}
	assert.Contains(t, texts, "VI:Welcome to the roadmap")
	assert.Contains(t, texts, "VI:Speaker notes here")

	pkg, err := OpenPackage(outPath)
	require.NoError(t, err)
	master, _ := pkg.Part("ppt/slideMasters/slideMaster1.xml")
	assert.Equal(t, `<p:sldMaster/>`, string(master))
}
