package markdown

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

var schemeStyles = []struct {
	scheme string
	style  string
}{
	{scheme: "light", style: "github"},
	{scheme: "dark", style: "monokai"},
}

var chromaCSS = sync.OnceValue(func() template.CSS {
	var out strings.Builder
	for _, entry := range schemeStyles {
		css := styleCSS(entry.style)
		if css == "" {
			continue
		}
		out.WriteString("@media (prefers-color-scheme: " + entry.scheme + ") {\n")
		out.WriteString(css)
		out.WriteString("}\n")
	}
	return template.CSS(out.String())
})

// ChromaCSS returns the stylesheet for highlighted code blocks.
func ChromaCSS() template.CSS {
	return chromaCSS()
}

func styleCSS(name string) string {
	style := styles.Get(name)
	if style == nil {
		style = styles.Fallback
	}

	var buffer bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buffer, style); err != nil {
		return ""
	}
	return buffer.String()
}
