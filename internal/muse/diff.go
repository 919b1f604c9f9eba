package muse

import "strings"

// PositionalDiff compares two texts line by line at matching indexes. The
// shorter side is padded with empty lines up to max(len(old), len(new)); a
// differing pair emits a removed line (old side, if non-empty) followed by an
// added line (new side, if non-empty), and matching lines are emitted with a
// neutral prefix.
//
// This is deliberately not a sequence alignment: an insertion or deletion
// that shifts line numbers reports every subsequent line as replaced. The
// behavior is kept for output compatibility with the original editor.
func PositionalDiff(oldText, newText string) string {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	n := len(oldLines)
	if len(newLines) > n {
		n = len(newLines)
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		var oldLine, newLine string
		if i < len(oldLines) {
			oldLine = oldLines[i]
		}
		if i < len(newLines) {
			newLine = newLines[i]
		}

		if oldLine != newLine {
			if oldLine != "" {
				b.WriteString("- ")
				b.WriteString(oldLine)
				b.WriteByte('\n')
			}
			if newLine != "" {
				b.WriteString("+ ")
				b.WriteString(newLine)
				b.WriteByte('\n')
			}
		} else {
			b.WriteString("  ")
			b.WriteString(oldLine)
			b.WriteByte('\n')
		}
	}

	if b.Len() == 0 {
		return DiffNoChanges
	}
	return b.String()
}
