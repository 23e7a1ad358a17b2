package extractor

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestLooksLikeHeading(t *testing.T) {
	tests := []struct {
		line     string
		expected bool
	}{
		{"ANULACION DE COMPROBANTES", true},
		{"PARAMETROS DE SUELDOS 2024", true},
		{"Introducción al sistema", false},
		{"IVA", false},       // too short to be a section heading
		{"1.2.3", false},     // digits only
		{"", false},
		{"ESTE ES UN TITULO DEMASIADO LARGO PARA SER UN ENCABEZADO DE SECCION REALISTA", false},
	}

	for _, tt := range tests {
		if got := looksLikeHeading(tt.line); got != tt.expected {
			t.Errorf("looksLikeHeading(%q) = %v, want %v", tt.line, got, tt.expected)
		}
	}
}

func TestFlattenOutlineRespectsLimit(t *testing.T) {
	root := pdf.Outline{
		Child: []pdf.Outline{
			{Title: "Capítulo 1", Child: []pdf.Outline{
				{Title: "Sección 1.1"},
				{Title: "Sección 1.2"},
			}},
			{Title: "Capítulo 2"},
			{Title: "Capítulo 3"},
		},
	}

	entries := flattenOutline(root, 0, 3)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0] != "  Capítulo 1" {
		t.Errorf("unexpected first entry %q", entries[0])
	}
}
