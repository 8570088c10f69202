package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// OffsetAt converts an LSP position, whose character counts UTF-16 code
// units, to a byte offset in content. Positions past the end of a line
// clamp to the line end, positions past the last line to len(content).
func OffsetAt(content string, pos protocol.Position) int {
	off := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := strings.IndexByte(content[off:], '\n')
		if i < 0 {
			return len(content)
		}
		off += i + 1
	}
	units := protocol.UInteger(0)
	for off < len(content) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(content[off:])
		if r == '\n' {
			break
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += protocol.UInteger(n)
		off += size
	}
	return off
}

// PositionAt converts a byte offset in content to an LSP position.
func PositionAt(content string, off int) protocol.Position {
	if off > len(content) {
		off = len(content)
	}
	if off < 0 {
		off = 0
	}
	var pos protocol.Position
	lineStart := strings.LastIndexByte(content[:off], '\n') + 1
	pos.Line = protocol.UInteger(strings.Count(content[:lineStart], "\n"))
	for _, r := range content[lineStart:off] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		pos.Character += protocol.UInteger(n)
	}
	return pos
}

func rangeOf(content string, start, end int) protocol.Range {
	return protocol.Range{Start: PositionAt(content, start), End: PositionAt(content, end)}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}
