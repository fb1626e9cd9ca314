package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"accents stripped", "Evolución Médica", "EVOLUCION MEDICA"},
		{"already canonical", "REGISTRO DE EVOLUCION", "REGISTRO DE EVOLUCION"},
		{"whitespace collapsed", "  ATENCION \t DOMICILIARIA \n POR  ENFERMERIA ", "ATENCION DOMICILIARIA POR ENFERMERIA"},
		{"mixed case", "eNfErMeRiA", "ENFERMERIA"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"tilde stripped from enye", "año", "ANO"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Registro De Evolución Médica",
		"  tf   12 ",
		"ATENCION (VISITA) DOMICILIARIA, POR FONOAUDIOLOGIA",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestContains(t *testing.T) {
	doc := "…cabecera… Registro  de evolución\nmédica …resto…"
	if !Contains(doc, "REGISTRO DE EVOLUCION MEDICA") {
		t.Error("expected accent/case/whitespace-insensitive match")
	}
	if Contains(doc, "REGISTRO DE HISTORIA CLINICA") {
		t.Error("unexpected match for absent phrase")
	}
	if Contains(doc, "") {
		t.Error("empty needle must not match")
	}
	if Contains(doc, "   ") {
		t.Error("whitespace-only needle must not match")
	}
}

func TestCountOccurrences(t *testing.T) {
	doc := "ENFERMERIA visita 1. enfermería visita 2. Enfermeria visita 3."
	if got := CountOccurrences(doc, "enfermeria"); got != 3 {
		t.Errorf("CountOccurrences = %d, want 3", got)
	}
	if got := CountOccurrences(doc, "FISIOTERAPIA"); got != 0 {
		t.Errorf("CountOccurrences for absent phrase = %d, want 0", got)
	}
	if got := CountOccurrences(doc, ""); got != 0 {
		t.Errorf("CountOccurrences with empty needle = %d, want 0", got)
	}
}

func TestEscapeLiteral(t *testing.T) {
	phrase := "ATENCION (VISITA) DOMICILIARIA, POR PSICOLOGIA"
	escaped := EscapeLiteral(phrase)
	if escaped == phrase {
		t.Fatal("expected parentheses to be escaped")
	}
	// The escaped form must match the original literally and nothing else.
	if Normalize(phrase) != Normalize("atencion (visita) domiciliaria, por psicología") {
		t.Error("normalization sanity check failed")
	}
}
