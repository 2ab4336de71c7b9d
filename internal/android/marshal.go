package android

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Namespaces that entries of a resource file may refer to by prefix.
var knownNamespaces = []Attr{
	{Name: "android", Value: "http://schemas.android.com/apk/res/android"},
	{Name: "tools", Value: "http://schemas.android.com/tools"},
	{Name: "app", Value: "http://schemas.android.com/apk/res-auto"},
	{Name: "xliff", Value: "urn:oasis:names:tc:xliff:document:1.2"},
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

// Marshal writes the file with one resource per line, indented by Indent. The output always
// ends with a newline.
func (f *File) Marshal() []byte {
	indent := f.Indent
	if indent == "" {
		indent = DefaultIndent
	}

	var b strings.Builder
	b.WriteString(f.Prolog)
	b.WriteString("<resources")
	writeAttrs(&b, f.RootAttrs)
	b.WriteString(">\n")

	for _, e := range f.Entries {
		b.WriteString(indent)
		switch e.Kind {
		case KindComment:
			b.WriteString("<!--")
			b.WriteString(e.Value)
			b.WriteString("-->\n")
		case KindPlurals, KindArray:
			writeStart(&b, e.Tag, e.Attrs)
			b.WriteString("\n")
			for _, it := range e.Items {
				b.WriteString(indent)
				b.WriteString(indent)
				writeStart(&b, "item", it.Attrs)
				b.WriteString(it.Value)
				b.WriteString("</item>\n")
			}
			b.WriteString(indent)
			b.WriteString("</" + e.Tag + ">\n")
		default:
			if e.SelfClosing && e.Value == "" {
				b.WriteString("<" + e.Tag)
				writeAttrs(&b, e.Attrs)
				b.WriteString("/>\n")

				continue
			}
			writeStart(&b, e.Tag, e.Attrs)
			b.WriteString(e.Value)
			b.WriteString("</" + e.Tag + ">\n")
		}
	}
	b.WriteString("</resources>\n")

	return []byte(b.String())
}

func writeStart(b *strings.Builder, tag string, attrs []Attr) {
	b.WriteString("<" + tag)
	writeAttrs(b, attrs)
	b.WriteString(">")
}

func writeAttrs(b *strings.Builder, attrs []Attr) {
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteString(`"`)
	}
}

func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}

	if err := os.WriteFile(path, f.Marshal(), 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	return nil
}

// EnsureNamespaces declares the android, tools, app and xliff namespaces on the root element
// when an entry uses their prefix without a declaration.
func (f *File) EnsureNamespaces() {
	used := make(map[string]bool)
	markPrefixes := func(attrs []Attr) {
		for _, a := range attrs {
			if prefix, _, ok := strings.Cut(a.Name, ":"); ok {
				used[prefix] = true
			}
		}
	}
	markValue := func(v string) {
		for _, ns := range knownNamespaces {
			if strings.Contains(v, "<"+ns.Name+":") {
				used[ns.Name] = true
			}
		}
	}

	for _, e := range f.Entries {
		markPrefixes(e.Attrs)
		markValue(e.Value)
		for _, it := range e.Items {
			markPrefixes(it.Attrs)
			markValue(it.Value)
		}
	}

	for _, ns := range knownNamespaces {
		decl := "xmlns:" + ns.Name
		if used[ns.Name] && attrValue(f.RootAttrs, decl) == "" {
			f.RootAttrs = append(f.RootAttrs, Attr{Name: decl, Value: ns.Value})
		}
	}
}

// EnsureTrailingNewline appends a newline to content that doesn't end with one.
func EnsureTrailingNewline(content []byte) []byte {
	if len(content) > 0 && content[len(content)-1] == '\n' {
		return content
	}

	return append(content, '\n')
}
