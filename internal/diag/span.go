package diag

// Pos is a zero-based line/column position, columns counted in bytes.
type Pos struct {
	Line int
	Col  int
}

// Span covers a half-open source region. Byte offsets accompany the
// line/column form so tests and formatters can slice the source directly.
type Span struct {
	Start     Pos
	End       Pos
	StartByte int
	EndByte   int
}
