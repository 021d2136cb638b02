package render

import (
	"bytes"
	"testing"
	"time"
)

func renderInput(t *testing.T) RenderInput {
	t.Helper()
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	input, err := Prepare(fixtureInvoice(), fixtureSettings(), fixtureContact(), now)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	return input
}

func TestRenderProducesPDF(t *testing.T) {
	result, err := NewRenderer().Render(renderInput(t))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(result.Bytes) == 0 {
		t.Fatal("empty document")
	}
	if !bytes.HasPrefix(result.Bytes, []byte("%PDF")) {
		t.Fatalf("unexpected document header: %q", result.Bytes[:8])
	}
	if result.QRDegraded {
		t.Fatal("QR generation should succeed for a valid payload")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	renderer := NewRenderer()
	input := renderInput(t)

	first, err := renderer.Render(input)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.Render(input)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first.Bytes, second.Bytes) {
		t.Fatal("rendering the same input twice produced different bytes")
	}
}

func TestRenderWithoutSlip(t *testing.T) {
	input := renderInput(t)
	input.Slip = nil

	result, err := NewRenderer().Render(input)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(result.Bytes, []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
}
