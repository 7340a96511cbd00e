package web

import _ "embed"

// indexHTML is the single-page UI served at the root path.
//
//go:embed static/index.html
var indexHTML []byte
