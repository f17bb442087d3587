package document

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeTestPackage builds a minimal OOXML zip on disk.
func writeTestPackage(t *testing.T, name string, parts map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for partName, content := range parts {
		f, err := w.Create(partName)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func xlsxParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"xl/workbook.xml":     `<?xml version="1.0"?><workbook/>`,
		"xl/sharedStrings.xml": `<?xml version="1.0"?><sst>` +
			`<si><t>Quarterly report</t></si>` +
			`<si><t>42</t></si>` +
			`<si><t>Total sales</t></si>` +
			`</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?><worksheet>` +
			`<sheetData><row><c t="inlineStr"><is><t>Inline note</t></is></c>` +
			`<c><f>=SUM(A1:A2)</f><v>10</v></c></row></sheetData>` +
			`</worksheet>`,
		"xl/drawings/drawing1.xml": `<?xml version="1.0"?><xdr:wsDr>` +
			`<xdr:sp><xdr:txBody><a:p><a:r><a:t>Shape label</a:t></a:r></a:p></xdr:txBody></xdr:sp>` +
			`</xdr:wsDr>`,
	}
}

func TestOpenExcelExtractsSharedInlineAndShapeText(t *testing.T) {
	path := writeTestPackage(t, "report.xlsx", xlsxParts())

	doc, err := Open(path, testLogger(), Options{})
	require.NoError(t, err)
	assert.Equal(t, TypeExcel, doc.Type)

	var texts []string
	for _, unit := range doc.Units {
		texts = append(texts, unit.Text)
	}
	assert.Equal(t, []string{"Quarterly report", "Total sales", "Inline note", "Shape label"}, texts)
}

func TestExcelRoundTrip(t *testing.T) {
	path := writeTestPackage(t, "report.xlsx", xlsxParts())

	doc, err := Open(path, testLogger(), Options{})
	require.NoError(t, err)

	translations := make(map[string]string, len(doc.Units))
	for _, unit := range doc.Units {
		translations[unit.Loc.Key()] = "JA:" + unit.Text
	}
	require.NoError(t, doc.Apply(translations))

	outPath := filepath.Join(t.TempDir(), "report-translated.xlsx")
	require.NoError(t, doc.Save(outPath))

	// reopen the written file and confirm the translated text is in place
	// and untouched parts survived
	out, err := Open(outPath, testLogger(), Options{})
	require.NoError(t, err)

	var texts []string
	for _, unit := range out.Units {
		texts = append(texts, unit.Text)
	}
	assert.Contains(t, texts, "JA:Quarterly report")
	assert.Contains(t, texts, "JA:Inline note")
	assert.Contains(t, texts, "JA:Shape label")

	pkg, err := OpenPackage(outPath)
	require.NoError(t, err)
	workbook, ok := pkg.Part("xl/workbook.xml")
	require.True(t, ok)
	assert.Equal(t, `<?xml version="1.0"?><workbook/>`, string(workbook))

	sheet, _ := pkg.Part("xl/worksheets/sheet1.xml")
	assert.Contains(t, string(sheet), "<f>=SUM(A1:A2)</f>", "formulas must not be rewritten")
}

func TestOpenWordExtractsBodyHeadersAndFootnotes(t *testing.T) {
	path := writeTestPackage(t, "letter.docx", map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:r><w:t>Dear team,</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>7</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
		"word/header1.xml":   `<w:hdr><w:p><w:r><w:t>Company header</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml":   `<w:ftr><w:p><w:r><w:t>Page footer</w:t></w:r></w:p></w:ftr>`,
		"word/footnotes.xml": `<w:footnotes><w:footnote><w:p><w:r><w:t>A footnote</w:t></w:r></w:p></w:footnote></w:footnotes>`,
	})

	doc, err := Open(path, testLogger(), Options{})
	require.NoError(t, err)
	assert.Equal(t, TypeWord, doc.Type)

	var texts []string
	for _, unit := range doc.Units {
		texts = append(texts, unit.Text)
	}
	assert.Equal(t, []string{"Dear team,", "Company header", "Page footer", "A footnote"}, texts)
}

func TestOpenRejectsUnsupportedAndTempFiles(t *testing.T) {
	_, err := Open("legacy.xls", testLogger(), Options{})
	assert.Error(t, err)

	_, err = Open("~$deck.pptx", testLogger(), Options{})
	assert.Error(t, err)
}

func TestOpenCorruptedPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	_, err := Open(path, testLogger(), Options{})
	assert.Error(t, err)
}

func TestSaveRefusesToOverwriteSource(t *testing.T) {
	path := writeTestPackage(t, "report.xlsx", xlsxParts())

	doc, err := Open(path, testLogger(), Options{})
	require.NoError(t, err)
	assert.Error(t, doc.Save(path))
}
