package content

import _ "embed"

// Home is the landing page copy in markdown.
//
//go:embed home.md
var Home string
