// Package document implements the OOXML text round-trip: extracting
// translatable text runs from Excel, Word and PowerPoint packages and
// splicing translations back without touching any other byte of the file.
package document

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Type identifies the document family of a file.
type Type int

const (
	TypeUnknown Type = iota
	TypeExcel
	TypeWord
	TypePowerPoint
)

// String returns a short name for logs.
func (t Type) String() string {
	switch t {
	case TypeExcel:
		return "excel"
	case TypeWord:
		return "word"
	case TypePowerPoint:
		return "powerpoint"
	default:
		return "unknown"
	}
}

// DetectType maps a file name onto its document family. Legacy binary
// formats (.xls, .doc, .ppt) are not OOXML packages and stay TypeUnknown.
func DetectType(path string) Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return TypeExcel
	case ".docx":
		return TypeWord
	case ".pptx":
		return TypePowerPoint
	default:
		return TypeUnknown
	}
}

// IsTempFile reports whether the file is an Office lock/autosave artifact
// ("~$..."), which must never be processed.
func IsTempFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}

// Locator pins a text unit to its place in the package. Units found by
// package parsing carry a part name and the ordinal index of the text node
// within that part. Units found through application automation carry slide
// and shape ordinals instead and cannot be written back by splicing.
type Locator struct {
	Part  string `json:"part,omitempty"`
	Index int    `json:"index"`
	Slide int    `json:"slide,omitempty"` // 1-based, PowerPoint only
	Shape int    `json:"shape,omitempty"` // automation results only
	Kind  string `json:"kind,omitempty"`  // extractor that produced the unit
}

// Key returns the identity used for deduplication and for routing
// translations back to their text node.
func (l Locator) Key() string {
	if l.Part != "" {
		return l.Part + "#" + fmt.Sprint(l.Index)
	}
	return fmt.Sprintf("automation:%d:%d:%d", l.Slide, l.Shape, l.Index)
}

// TextUnit is one extracted text run in extraction order.
type TextUnit struct {
	Text string  `json:"text"`
	Loc  Locator `json:"locator"`
}

var numericOnly = regexp.MustCompile(`^[\d\s,.\-%+/:()]+$`)

// ShouldTranslate filters out strings not worth an API round trip: empty
// or single-character runs, purely numeric content and Excel formulas.
func ShouldTranslate(s string) bool {
	trimmed := strings.TrimSpace(s)
	if len([]rune(trimmed)) < 2 {
		return false
	}
	if strings.HasPrefix(trimmed, "=") {
		return false
	}
	if numericOnly.MatchString(trimmed) {
		return false
	}
	return true
}

// CleanText normalizes whitespace before a string is sent for translation.
// The delimiter-joined batch format cannot carry raw newlines.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeForDedup lowers and collapses a string so the same visible text
// found by two engines compares equal.
func NormalizeForDedup(s string) string {
	return strings.ToLower(CleanText(s))
}
