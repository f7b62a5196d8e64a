package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, "copy")
	p.Update(50, 100)
	p.Update(100, 100)
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "[copy] 50% (50/100 files)")
	assert.Contains(t, out, "[copy] 100% (100/100 files)")
	assert.True(t, out[len(out)-1] == '\n')
}

func TestPrinterNoTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, "restore")
	p.Update(7, 0)
	assert.Contains(t, buf.String(), "[restore] 7 files")
}

func TestPrinterSilentWhenUnused(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, "copy").Finish()
	assert.Empty(t, buf.String())

	var nilPrinter *Printer
	nilPrinter.Update(1, 2) // no-op, no panic
	nilPrinter.Finish()
}
