package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("texto corto", 100, 10)
	if len(chunks) != 1 || chunks[0] != "texto corto" {
		t.Fatalf("short input must pass through unchanged, got %v", chunks)
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("la anulación de comprobantes requiere permisos. ", 50)
	chunks := SplitText(text, 200, 40)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 200 {
			t.Errorf("chunk %d has %d runes, exceeds limit", i, n)
		}
	}
}

func TestSplitTextBreaksAtSentenceEnd(t *testing.T) {
	text := strings.Repeat("Una oración que termina con punto final aquí. ", 30)
	chunks := SplitText(text, 200, 40)

	for i, chunk := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(chunk, " \n")
		if !strings.HasSuffix(trimmed, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, trimmed[len(trimmed)-20:])
		}
	}
}

func TestSplitTextOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("palabra ", 200)
	chunks := SplitText(text, 160, 40)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	first := []rune(chunks[0])
	tail := string(first[len(first)-20:])
	if !strings.Contains(chunks[1], strings.TrimSpace(tail)) {
		t.Errorf("second chunk does not repeat the tail of the first")
	}
}

func TestSplitTextUnbrokenRunFallsBackToHardCut(t *testing.T) {
	text := strings.Repeat("x", 500)
	chunks := SplitText(text, 200, 50)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	if len([]rune(chunks[0])) != 200 {
		t.Errorf("unbroken text must be cut at the exact window, got %d runes", len([]rune(chunks[0])))
	}
}

func TestSplitTextLosesNoContent(t *testing.T) {
	text := strings.Repeat("registro de retenciones por jurisdicción. ", 40)
	chunks := SplitText(text, 180, 0)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != text {
		t.Error("chunks with zero overlap must concatenate back to the input")
	}
}
