package chunker

import "strings"

// WindowChunker splits text into fixed-size rune windows with overlap.
// The overlap keeps context that would otherwise be lost at arbitrary
// window boundaries; window size trades retrieval precision against
// context cost.
type WindowChunker struct {
	windowRunes  int
	overlapRunes int
}

// NewWindowChunker creates a chunker with the given window and overlap
// sizes in runes. Non-positive values fall back to the defaults
// (1000/200).
func NewWindowChunker(windowRunes, overlapRunes int) *WindowChunker {
	if windowRunes <= 0 {
		windowRunes = 1000
	}
	if overlapRunes < 0 {
		overlapRunes = 0
	}
	if overlapRunes >= windowRunes {
		overlapRunes = windowRunes / 2
	}
	return &WindowChunker{windowRunes: windowRunes, overlapRunes: overlapRunes}
}

// Split returns the overlapping windows of text in order. Blank windows
// are dropped; text that fits in one window is returned whole.
func (c *WindowChunker) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	runes := []rune(trimmed)
	if len(runes) <= c.windowRunes {
		return []string{trimmed}
	}
	step := c.windowRunes - c.overlapRunes
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.windowRunes
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			out = append(out, window)
		}
		if end >= len(runes) {
			break
		}
	}
	return out
}
