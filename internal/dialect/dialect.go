// Package dialect identifies the grammar family of a markup-bearing
// document. A dialect decides which tree-sitter grammar parses the file and
// which traversal shape the adapter uses. Template hosts (Vue, Svelte, and
// server-side template extensions) fall back to the HTML grammar with
// reduced fidelity.
package dialect

import (
	"path/filepath"
	"strings"
)

// Dialect is a grammar family requiring distinct traversal logic.
type Dialect uint8

const (
	// Unknown marks files this server does not analyze.
	Unknown Dialect = iota
	// HTML is the primary markup grammar.
	HTML
	// JSX is JavaScript with embedded markup.
	JSX
	// TSX is TypeScript with embedded markup.
	TSX
	// Vue single-file components, parsed with the HTML grammar.
	Vue
	// Svelte components, parsed with the HTML grammar.
	Svelte
)

func (d Dialect) String() string {
	switch d {
	case HTML:
		return "html"
	case JSX:
		return "jsx"
	case TSX:
		return "tsx"
	case Vue:
		return "vue"
	case Svelte:
		return "svelte"
	}
	return "unknown"
}

// FromExtension maps a file extension (without the dot) to a dialect.
func FromExtension(ext string) Dialect {
	switch strings.ToLower(ext) {
	case "html", "htm":
		return HTML
	case "jsx":
		return JSX
	case "tsx":
		return TSX
	case "vue":
		return Vue
	case "svelte":
		return Svelte
	case "astro", "php", "erb", "hbs", "twig":
		// Template hosts: the HTML grammar recovers the markup portions.
		return HTML
	}
	return Unknown
}

// FromPath infers the dialect from a file path or URI suffix.
func FromPath(path string) Dialect {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		if i := strings.LastIndexByte(path, '.'); i >= 0 {
			ext = path[i+1:]
		}
	}
	return FromExtension(ext)
}

// Embedded reports whether the dialect embeds markup inside a script
// grammar (JSX-like traversal) rather than being plain markup.
func (d Dialect) Embedded() bool {
	return d == JSX || d == TSX
}

// Fallback reports whether the dialect is parsed with the HTML grammar at
// reduced fidelity rather than a grammar of its own.
func (d Dialect) Fallback() bool {
	return d == Vue || d == Svelte
}

// Supported reports whether documents of this dialect are diagnosable.
func (d Dialect) Supported() bool {
	return d != Unknown
}

// Extensions lists the canonical extensions scanned by the batch checker.
func Extensions() []string {
	return []string{".html", ".htm", ".jsx", ".tsx", ".vue", ".svelte"}
}
