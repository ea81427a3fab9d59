package render

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestToPDFWithoutConverter(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err == nil {
		t.Skip("rsvg-convert installed")
	}
	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errors.Is(err, ErrConverterMissing) {
		t.Errorf("ToPDF() error = %v, want ErrConverterMissing", err)
	}
}
