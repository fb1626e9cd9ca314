package pdftext

import (
	"bytes"
	"testing"
)

func TestExtractRejectsEmptyData(t *testing.T) {
	e := NewExtractor(0)
	if _, err := e.Extract(nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestExtractRejectsOversizedData(t *testing.T) {
	e := NewExtractor(16)
	data := bytes.Repeat([]byte("x"), 32)
	if _, err := e.Extract(data); err == nil {
		t.Error("expected error for oversized data")
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	e := NewExtractor(0)
	if _, err := e.Extract([]byte("this is not a pdf")); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
}
