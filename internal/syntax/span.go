package syntax

import (
	"strings"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"wcaglsp/internal/diag"
)

// NodeSpan projects a tree-sitter node onto a diagnostic span.
func NodeSpan(node *sitter.Node) diag.Span {
	start := node.StartPosition()
	end := node.EndPosition()
	return diag.Span{
		Start:     diag.Pos{Line: toInt(start.Row), Col: toInt(start.Column)},
		End:       diag.Pos{Line: toInt(end.Row), Col: toInt(end.Column)},
		StartByte: toInt(node.StartByte()),
		EndByte:   toInt(node.EndByte()),
	}
}

func toInt(u uint) int {
	v, err := safecast.Conv[int](u)
	if err != nil {
		return 0
	}
	return v
}

func toUint(i int) uint {
	if i < 0 {
		return 0
	}
	v, err := safecast.Conv[uint](i)
	if err != nil {
		return 0
	}
	return v
}

// PointAt computes the tree-sitter point (row, byte column) for a byte
// offset into text.
func PointAt(text string, offset int) sitter.Point {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	prefix := text[:offset]
	row := strings.Count(prefix, "\n")
	col := offset
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		col = offset - i - 1
	}
	return sitter.Point{Row: toUint(row), Column: toUint(col)}
}

// ReplaceEdit describes the replacement of old[startByte:oldEndByte] with
// newText as a tree-sitter input edit. newSource must be the post-edit text.
func ReplaceEdit(newSource string, startByte, oldEndByte int, oldStart, oldEnd sitter.Point, newText string) sitter.InputEdit {
	newEndByte := startByte + len(newText)
	return sitter.InputEdit{
		StartByte:      toUint(startByte),
		OldEndByte:     toUint(oldEndByte),
		NewEndByte:     toUint(newEndByte),
		StartPosition:  oldStart,
		OldEndPosition: oldEnd,
		NewEndPosition: PointAt(newSource, newEndByte),
	}
}

// DiffEdit reduces a whole-text replacement to a single input edit covering
// the changed region, found by trimming the common prefix and suffix. For a
// localized change this keeps incremental re-derivation cost proportional
// to the edit, not the document.
func DiffEdit(oldText, newText string) sitter.InputEdit {
	prefix := commonPrefix(oldText, newText)
	// The suffix must not overlap the prefix.
	maxSuffix := min(len(oldText), len(newText)) - prefix
	suffix := commonSuffix(oldText, newText, maxSuffix)

	startByte := prefix
	oldEndByte := len(oldText) - suffix
	newEndByte := len(newText) - suffix
	return sitter.InputEdit{
		StartByte:      toUint(startByte),
		OldEndByte:     toUint(oldEndByte),
		NewEndByte:     toUint(newEndByte),
		StartPosition:  PointAt(oldText, startByte),
		OldEndPosition: PointAt(oldText, oldEndByte),
		NewEndPosition: PointAt(newText, newEndByte),
	}
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffix(a, b string, limit int) int {
	i := 0
	for i < limit && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}
