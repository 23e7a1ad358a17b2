package utils

import "unicode"

// SplitText cuts text into overlapping chunks of at most chunkSize runes.
// Cut points prefer, in order, a paragraph break, a sentence end, and plain
// whitespace, searched backward through the trailing half of the window so
// embedded fragments of manual pages stay readable and no chunk shrinks
// below half the requested size. Only text with no boundary at all is cut
// mid-word. Overlap carries the tail of each chunk into the next one.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := boundaryBefore(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = start + step
			if next > cut {
				next = cut
			}
		}
		start = next
	}

	return chunks
}

// boundaryBefore picks the cut position for the window [start,end): the
// latest paragraph break, else sentence end, else whitespace, searched within
// the trailing half of the window. Falls back to end when the window is one
// unbroken run of characters.
func boundaryBefore(runes []rune, start, end int) int {
	half := (end - start) / 2
	if half < 1 {
		return end
	}
	floor := end - half

	for i := end - 1; i >= floor; i-- {
		if runes[i] == '\n' && i > start && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= floor; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}
