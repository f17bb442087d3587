package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
)

// textNode is one <t>-local-name element of an XML part. Start and End
// delimit the raw bytes of its content, so a translation can be spliced
// in without reserializing (and thereby reformatting) the part.
type textNode struct {
	Index int
	Text  string // direct character data only
	Start int64
	End   int64
	Path  []string // local names of the open ancestor elements
	Mixed bool     // content includes child elements, unsafe to splice
}

// openText tracks one text element currently being parsed. Diagram XML
// nests text elements (dgm:t wrapping a:t), so this is a stack.
type openText struct {
	node textNode
	text bytes.Buffer
}

// scanTextNodes walks an XML part and returns every text element in
// document order. The index counts all of them, including empty,
// self-closing and wrapper elements, so that every consumer of a part
// agrees on ordinals. Text is the element's own character data, matching
// what the raw-XML engine sees.
func scanTextNodes(data []byte) ([]textNode, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		nodes []textNode
		stack []string
		open  []*openText
		index = -1
	)

	for {
		pre := decoder.InputOffset()
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			for _, o := range open {
				o.node.Mixed = true
			}
			if t.Name.Local == "t" {
				index++
				path := make([]string, len(stack))
				copy(path, stack)
				open = append(open, &openText{node: textNode{
					Index: index,
					Start: decoder.InputOffset(),
					Path:  path,
				}})
			}
		case xml.CharData:
			// attribute character data to the innermost element only
			// when it is a text element
			if len(open) > 0 && len(stack) > 0 && stack[len(stack)-1] == "t" {
				open[len(open)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			if t.Name.Local == "t" && stack[len(stack)-1] == "t" && len(open) > 0 {
				o := open[len(open)-1]
				open = open[:len(open)-1]
				o.node.End = pre
				o.node.Text = o.text.String()
				nodes = append(nodes, o.node)
			}
			stack = stack[:len(stack)-1]
		}
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Index < nodes[j].Index })
	return nodes, nil
}

var xmlEncodingDecl = regexp.MustCompile(`encoding=["']([^"']+)["']`)

// isUTF8Part reports whether a part may be modified by byte splicing. The
// scanner's offsets index the decoded stream, so for any non-UTF-8 part
// (UTF-16 BOM or an explicit encoding declaration) they do not match the
// raw bytes and splicing would corrupt the part.
func isUTF8Part(data []byte) bool {
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		return false
	}

	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	m := xmlEncodingDecl.FindSubmatch(head)
	if m == nil {
		return true
	}
	enc := strings.ToLower(string(m[1]))
	return enc == "utf-8" || enc == "utf8"
}

// selfClosing reports whether the node came from a <t/> element, whose
// recorded offsets point past the tag and must not be spliced.
func selfClosing(data []byte, n textNode) bool {
	return n.Start == n.End && n.Start >= 2 && string(data[n.Start-2:n.Start]) == "/>"
}

// ApplyTranslations splices translations into one part, keyed by text-node
// index. All bytes outside the replaced character data are preserved.
func (p *Package) ApplyTranslations(part string, byIndex map[int]string) error {
	if len(byIndex) == 0 {
		return nil
	}
	data, ok := p.parts[part]
	if !ok {
		return fmt.Errorf("part %s not found", part)
	}
	if !isUTF8Part(data) {
		return nil
	}

	nodes, err := scanTextNodes(data)
	if err != nil {
		return fmt.Errorf("part %s: %w", part, err)
	}

	type splice struct {
		start, end int64
		repl       []byte
	}
	var splices []splice
	for _, node := range nodes {
		repl, ok := byIndex[node.Index]
		if !ok {
			continue
		}
		if node.Mixed || selfClosing(data, node) {
			continue
		}
		splices = append(splices, splice{node.Start, node.End, escapeXMLText(repl)})
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var out bytes.Buffer
	out.Grow(len(data))
	var pos int64
	for _, s := range splices {
		out.Write(data[pos:s.start])
		out.Write(s.repl)
		pos = s.end
	}
	out.Write(data[pos:])

	p.parts[part] = out.Bytes()
	return nil
}

func escapeXMLText(s string) []byte {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.Bytes()
}
