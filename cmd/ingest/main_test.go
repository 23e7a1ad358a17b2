package main

import "testing"

func TestParseManualName(t *testing.T) {
	tests := []struct {
		filename      string
		displayName   string
		familyID      string
		year          int
		versionNumber int
		versionLabel  string
	}{
		{
			"Manual_Facturacion_2023_v2.pdf",
			"Manual Facturacion 2023 v2", "manual_facturacion", 2023, 2, "v2",
		},
		{
			"Manual_Sueldos_2024.pdf",
			"Manual Sueldos 2024", "manual_sueldos", 2024, 0, "",
		},
		{
			"manual_stock_v10.pdf",
			"manual stock v10", "manual_stock", 0, 10, "v10",
		},
		{
			"Compras.pdf",
			"Compras", "compras", 0, 0, "",
		},
		{
			"Manual_IVA_version_3_2022.pdf",
			"Manual IVA version 3 2022", "manual_iva", 2022, 3, "v3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := parseManualName(tt.filename)
			if got.DisplayName != tt.displayName {
				t.Errorf("display name: got %q, want %q", got.DisplayName, tt.displayName)
			}
			if got.FamilyID != tt.familyID {
				t.Errorf("family: got %q, want %q", got.FamilyID, tt.familyID)
			}
			if got.Year != tt.year {
				t.Errorf("year: got %d, want %d", got.Year, tt.year)
			}
			if got.VersionNumber != tt.versionNumber {
				t.Errorf("version number: got %d, want %d", got.VersionNumber, tt.versionNumber)
			}
			if got.VersionLabel != tt.versionLabel {
				t.Errorf("version label: got %q, want %q", got.VersionLabel, tt.versionLabel)
			}
		})
	}
}

func TestSameFamilyAcrossVersions(t *testing.T) {
	a := parseManualName("Manual_Facturacion_2022_v1.pdf")
	b := parseManualName("Manual_Facturacion_2023_v2.pdf")
	if a.FamilyID != b.FamilyID {
		t.Errorf("editions of the same manual must share a family: %q vs %q", a.FamilyID, b.FamilyID)
	}
}
