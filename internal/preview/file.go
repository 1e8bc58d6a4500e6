package preview

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"

	"trawl/internal/entry"
	"trawl/internal/textutil"
)

const (
	// maxPreviewSize caps how much of a file is ever read
	maxPreviewSize = 4 << 20
	// binaryProbeSize is how many leading bytes decide text vs binary
	binaryProbeSize = 256
	// analyseSampleSize is how much text content sniffing sees
	analyseSampleSize = 1024
	// highlightCap disables syntax highlighting on huge files
	highlightCap = 256 << 10
	// maxPreviewLines bounds what one cache slot can hold
	maxPreviewLines = 5000
)

// renderFile builds the default preview for a candidate pointing at a
// file. Lines are sanitized before highlighting, so the only escape
// sequences in the result are the highlighter's own.
func renderFile(e entry.Entry) Content {
	info, err := os.Stat(e.Path)
	if err != nil {
		return Content{Title: e.Name, Kind: KindError, Text: fmt.Sprintf("preview failed: %v", err)}
	}
	if info.IsDir() {
		return renderDir(e)
	}
	if info.Size() > maxPreviewSize {
		return Content{Title: e.Name, Kind: KindTooLarge}
	}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		return Content{Title: e.Name, Kind: KindError, Text: fmt.Sprintf("preview failed: %v", err)}
	}
	if len(data) == 0 {
		return Content{Title: e.Name, Kind: KindLoaded, TargetLine: e.Line, Numbers: true}
	}

	probe := data
	if len(probe) > binaryProbeSize {
		probe = probe[:binaryProbeSize]
	}
	if textutil.ProportionPrintableASCII(probe) < textutil.PrintableASCIIThreshold {
		return Content{Title: e.Name, Kind: KindBinary}
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > maxPreviewLines {
		lines = lines[:maxPreviewLines]
	}
	for i, line := range lines {
		lines[i] = textutil.PreprocessLine(line)
	}
	text := strings.Join(lines, "\n")

	if len(text) <= highlightCap {
		if highlighted, ok := highlight(e.Path, text); ok {
			text = highlighted
		}
	}
	return Content{Title: e.Name, Kind: KindLoaded, Text: text, TargetLine: e.Line, Numbers: true}
}

// renderDir lists a directory, subdirectories marked with a trailing
// separator.
func renderDir(e entry.Entry) Content {
	entries, err := os.ReadDir(e.Path)
	if err != nil {
		return Content{Title: e.Name, Kind: KindError, Text: fmt.Sprintf("preview failed: %v", err)}
	}
	var b strings.Builder
	for _, de := range entries {
		b.WriteString(textutil.PreprocessLine(de.Name()))
		if de.IsDir() {
			b.WriteString(string(os.PathSeparator))
		}
		b.WriteString("\n")
	}
	return Content{Title: e.Name, Kind: KindLoaded, Text: b.String()}
}

// highlight runs chroma over text when a lexer claims the filename,
// falling back to content analysis on the first KB. Plain text is left
// uncolored.
func highlight(path, text string) (string, bool) {
	lexer := lexers.Match(path)
	if lexer == nil {
		sample := text
		if len(sample) > analyseSampleSize {
			sample = textutil.SliceUpToCharBoundary(sample, analyseSampleSize)
		}
		lexer = lexers.Analyse(sample)
	}
	if lexer == nil || lexer.Config().Name == "plaintext" {
		return "", false
	}
	var b strings.Builder
	if err := quick.Highlight(&b, text, lexer.Config().Name, "terminal256", "monokai"); err != nil {
		return "", false
	}
	return b.String(), true
}
