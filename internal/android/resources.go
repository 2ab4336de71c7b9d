// Package android reads and writes Android strings.xml resource files.
//
// Values are kept as raw inner XML. Nothing is unescaped or re-escaped, so inline markup
// like <xliff:g> and escaped apostrophes survive a parse and write cycle unchanged.
package android

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultIndent = "    "
	FileName      = "strings.xml"
)

type EntryKind int

const (
	// KindString is a leaf element, usually <string>. Other leaf resources keep their tag.
	KindString EntryKind = iota
	// KindPlurals is a <plurals> element with quantity items.
	KindPlurals
	// KindArray is a <string-array> or <integer-array> element.
	KindArray
	// KindComment is a comment between resources.
	KindComment
)

func (k EntryKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPlurals:
		return "plurals"
	case KindArray:
		return "array"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Attr is an attribute with its prefix kept literally, e.g. tools:ignore.
type Attr struct {
	Name  string
	Value string
}

type Item struct {
	Attrs []Attr
	Value string
}

func (i Item) Quantity() string {
	return attrValue(i.Attrs, "quantity")
}

type Entry struct {
	Kind         EntryKind
	Tag          string
	Name         string
	Translatable bool
	Attrs        []Attr
	// Value is the raw inner XML of a leaf element or the text of a comment.
	Value string
	// Items of a plurals or array entry in source order.
	Items []Item
	// SelfClosing leaf elements are written as <string name="x"/>.
	SelfClosing bool
}

// Text is the content used to decide whether two entries with the same name differ.
func (e *Entry) Text() string {
	switch e.Kind {
	case KindPlurals, KindArray:
		parts := make([]string, 0, len(e.Items))
		for _, it := range e.Items {
			parts = append(parts, it.Quantity()+"="+strings.TrimSpace(it.Value))
		}

		return strings.Join(parts, "\n")
	default:
		return strings.TrimSpace(e.Value)
	}
}

func (e *Entry) IsComment() bool {
	return e.Kind == KindComment
}

func (e *Entry) Clone() *Entry {
	c := *e
	c.Attrs = append([]Attr(nil), e.Attrs...)
	if e.Items != nil {
		c.Items = make([]Item, len(e.Items))
		for i, it := range e.Items {
			c.Items[i] = Item{Attrs: append([]Attr(nil), it.Attrs...), Value: it.Value}
		}
	}

	return &c
}

type File struct {
	// Prolog is everything in front of <resources>, usually the xml declaration and a header comment.
	Prolog    string
	RootAttrs []Attr
	Entries   []*Entry
	Indent    string
}

func NewFile() *File {
	return &File{Indent: DefaultIndent}
}

// Lookup returns the first entry with the given name or nil.
func (f *File) Lookup(name string) *Entry {
	for _, e := range f.Entries {
		if !e.IsComment() && e.Name == name {
			return e
		}
	}

	return nil
}

// Names returns the names of all resources in document order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		if !e.IsComment() && e.Name != "" {
			names = append(names, e.Name)
		}
	}

	return names
}

// Path returns the strings.xml path of a value folder inside a res directory.
func Path(resDir, valueFolder string) string {
	return filepath.Join(resDir, valueFolder, FileName)
}

func ParseFile(path string) (*File, error) {
	// #nosec G304 resource files are addressed by the configured project tree
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return f, nil
}

func Parse(data []byte) (*File, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	f := NewFile()

	inRoot, done, sawEntry := false, false, false
	var lastText string
	for {
		offset := dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed resource xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if done {
				return nil, fmt.Errorf("unexpected element <%s> after </resources>", rawName(t.Name))
			}
			if !inRoot {
				if rawName(t.Name) != "resources" {
					return nil, fmt.Errorf("unexpected root element <%s>, expected <resources>", rawName(t.Name))
				}
				inRoot = true
				f.Prolog = string(data[:offset])
				f.RootAttrs = rawAttrs(t.Attr)

				continue
			}

			if !sawEntry {
				sawEntry = true
				if indent := indentOf(lastText); indent != "" {
					f.Indent = indent
				}
			}

			e, err := parseEntry(dec, data, t)
			if err != nil {
				return nil, err
			}
			f.Entries = append(f.Entries, e)
		case xml.CharData:
			lastText = string(t)
		case xml.EndElement:
			if inRoot && !done {
				done = true
			}
		case xml.Comment:
			if inRoot && !done {
				f.Entries = append(f.Entries, &Entry{Kind: KindComment, Value: string(t)})
			}
		}
	}

	if !inRoot {
		return nil, fmt.Errorf("missing <resources> element")
	}
	if !done {
		return nil, fmt.Errorf("missing </resources> end element")
	}

	return f, nil
}

func parseEntry(dec *xml.Decoder, data []byte, start xml.StartElement) (*Entry, error) {
	attrs := rawAttrs(start.Attr)
	e := &Entry{
		Tag:          rawName(start.Name),
		Name:         attrValue(attrs, "name"),
		Translatable: !strings.EqualFold(attrValue(attrs, "translatable"), "false"),
		Attrs:        attrs,
	}

	switch e.Tag {
	case "plurals":
		e.Kind = KindPlurals
	case "string-array", "integer-array", "array":
		e.Kind = KindArray
	default:
		e.Kind = KindString
	}

	if e.Kind == KindString {
		value, selfClosing, err := readInner(dec, data, e.Tag)
		if err != nil {
			return nil, errors.Wrapf(err, "reading <%s name=%q>", e.Tag, e.Name)
		}
		e.Value, e.SelfClosing = value, selfClosing

		return e, nil
	}

	for {
		tok, err := dec.RawToken()
		if err != nil {
			return nil, errors.Wrapf(err, "reading <%s name=%q>", e.Tag, e.Name)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			value, _, err := readInner(dec, data, rawName(t.Name))
			if err != nil {
				return nil, errors.Wrapf(err, "reading item of <%s name=%q>", e.Tag, e.Name)
			}
			if rawName(t.Name) == "item" {
				e.Items = append(e.Items, Item{Attrs: rawAttrs(t.Attr), Value: value})
			}
		case xml.EndElement:
			return e, nil
		}
	}
}

// readInner consumes tokens up to the end element matching the already consumed start
// element and returns the raw bytes in between.
func readInner(dec *xml.Decoder, data []byte, tag string) (string, bool, error) {
	innerStart := dec.InputOffset()
	depth := 1
	for {
		offset := dec.InputOffset()
		tok, err := dec.RawToken()
		if err != nil {
			return "", false, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				if rawName(t.Name) != tag {
					return "", false, fmt.Errorf("expected </%s>, found </%s>", tag, rawName(t.Name))
				}
				selfClosing := offset == innerStart && innerStart >= 2 &&
					string(data[innerStart-2:innerStart]) == "/>"

				return string(data[innerStart:offset]), selfClosing, nil
			}
		}
	}
}

// indentOf returns the whitespace in front of the first entry, if it starts on its own line.
func indentOf(text string) string {
	i := strings.LastIndexByte(text, '\n')
	if i < 0 {
		return ""
	}
	indent := text[i+1:]
	if strings.Trim(indent, " \t") != "" {
		return ""
	}

	return indent
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}

	return n.Space + ":" + n.Local
}

func rawAttrs(attrs []xml.Attr) []Attr {
	if len(attrs) == 0 {
		return nil
	}

	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, Attr{Name: rawName(a.Name), Value: a.Value})
	}

	return out
}

func attrValue(attrs []Attr, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}

	return ""
}
