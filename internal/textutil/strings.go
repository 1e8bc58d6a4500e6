// Package textutil holds display-string sanitization helpers shared by
// the results list and the preview pipeline. Candidate names and preview
// lines come from arbitrary sources and may contain control characters,
// invalid UTF-8, or pathological lengths; everything rendered to the
// terminal goes through here first.
package textutil

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TabWidth is the number of spaces a tab expands to in rendered text.
const TabWidth = 4

// MaxLineLength is the byte length at which lines are cut before
// sanitization.
const MaxLineLength = 300

// PrintableASCIIThreshold is the minimum proportion of printable ASCII
// bytes in a content sample for it to be treated as text.
const PrintableASCIIThreshold = 0.7

// nullSymbol stands in for characters that cannot be rendered.
const nullSymbol = '␀'

// NextCharBoundary returns the smallest index >= i that lies on a UTF-8
// character boundary. Indices past the end clamp to len(s).
func NextCharBoundary(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// PrevCharBoundary returns the largest index <= i that lies on a UTF-8
// character boundary. Indices past the end clamp to len(s).
func PrevCharBoundary(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// SliceUpToCharBoundary returns s[:i] widened to the next character
// boundary so multi-byte characters are never split.
func SliceUpToCharBoundary(s string, i int) string {
	return s[:NextCharBoundary(s, i)]
}

// SliceAtCharBoundaries returns s[start:end] with both indices snapped
// to character boundaries (start backward, end forward). Inverted or
// out-of-range indices yield "".
func SliceAtCharBoundaries(s string, start, end int) string {
	if start > end || start > len(s) || end > len(s) {
		return ""
	}
	return s[PrevCharBoundary(s, start):NextCharBoundary(s, end)]
}

// ReplaceNonPrintable rewrites input for terminal display: tabs expand
// to tabWidth spaces, line feeds and BOMs are dropped, control
// characters and characters above U+0700 (unreliable in terminal cells)
// become ␀, and invalid UTF-8 bytes are shown as \xNN escapes.
func ReplaceNonPrintable(input []byte, tabWidth int) string {
	var out strings.Builder
	out.Grow(len(input))

	for i := 0; i < len(input); {
		r, size := utf8.DecodeRune(input[i:])
		if r == utf8.RuneError && size <= 1 {
			fmt.Fprintf(&out, "\\x%02X", input[i])
			i++
			continue
		}
		i += size

		switch {
		case r == ' ':
			out.WriteByte(' ')
		case r == '\t':
			for range tabWidth {
				out.WriteByte(' ')
			}
		case r == '\n':
			// dropped
		case r <= 0x1F, r >= 0x7F && r <= 0x9F:
			out.WriteRune(nullSymbol)
		case r == '﻿':
			// byte order mark, dropped
		case r > 0x0700:
			out.WriteRune(nullSymbol)
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}

// ProportionPrintableASCII returns the fraction of bytes in buf within
// the printable ASCII range. Content sniffing compares it against
// PrintableASCIIThreshold.
func ProportionPrintableASCII(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	printable := 0
	for _, b := range buf {
		if b >= 32 && b < 127 {
			printable++
		}
	}
	return float64(printable) / float64(len(buf))
}

// PreprocessLine prepares one line of source text for display: cut at
// MaxLineLength, trailing CR/LF/NUL trimmed, then sanitized with
// ReplaceNonPrintable at the standard tab width.
func PreprocessLine(line string) string {
	if len(line) > MaxLineLength {
		line = SliceUpToCharBoundary(line, MaxLineLength)
	}
	line = strings.TrimRight(line, "\r\n\x00")
	return ReplaceNonPrintable([]byte(line), TabWidth)
}

// ShrinkWithEllipsis shortens s to roughly maxLength bytes by removing
// the middle and joining the halves with an ellipsis. Strings already
// within the limit come back unchanged.
func ShrinkWithEllipsis(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	half := maxLength/2 - 2
	if half < 0 {
		half = 0
	}
	return SliceUpToCharBoundary(s, half) + "…" + SliceAtCharBoundaries(s, len(s)-half, len(s))
}
