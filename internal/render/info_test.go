package render

import (
	"strings"
	"testing"

	"github.com/joeblew999/plat-maps/internal/scale"
)

func TestInfoLinesMetadata(t *testing.T) {
	lines := infoLines(Style{ShowScale: true}, scale.Scale{Label: "1:15.000"})

	want := []string{
		"Sistema de Coordenadas Geográficas",
		"Datum: SIRGAS 2000 (EPSG:4326)",
		"Projeção: Web Mercator (EPSG:3857)",
		"Escala 1:15.000",
	}
	if len(lines) < len(want)+1 {
		t.Fatalf("lines = %v", lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
	if !strings.HasPrefix(lines[len(want)], "Data de geração: ") {
		t.Errorf("missing generation date line, got %q", lines[len(want)])
	}
}

func TestInfoLinesWithoutScale(t *testing.T) {
	lines := infoLines(Style{ShowScale: false}, scale.Scale{Label: "1:15.000"})
	for _, l := range lines {
		if strings.HasPrefix(l, "Escala") {
			t.Fatalf("scale line present despite ShowScale=false: %q", l)
		}
	}
}

func TestInfoLinesAppendsAdditionalInfo(t *testing.T) {
	lines := infoLines(Style{AdditionalInfo: "Responsável: A. Silva\n\nCREA 12345"}, scale.Scale{})
	got := lines[len(lines)-2:]
	if got[0] != "Responsável: A. Silva" || got[1] != "CREA 12345" {
		t.Fatalf("extra lines = %v", got)
	}
}
