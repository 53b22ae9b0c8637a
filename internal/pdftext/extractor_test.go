package pdftext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name string
	args []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return s.stdout, s.stderr, s.err
}

func writeLayout(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("not really a pdf"), 0o644))
	return p
}

func TestExtractRunsPdftotext(t *testing.T) {
	path := writeLayout(t, "12345 Box.pdf")
	r := &stubRunner{stdout: []byte("WIDGET\r\nPRO\t\t500g\n\f1234-5678-90\n\f")}
	e := NewExtractor(Config{Pdftotext: "/opt/bin/pdftotext", Layout: true, MaxPages: 3}, nil).WithRunner(r)

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/pdftotext", r.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "-f", "1", "-l", "3", path, "-"}, r.args)
	assert.Equal(t, "WIDGET\nPRO 500g\n\n1234-5678-90", res.Text)
	assert.Equal(t, 2, res.Pages, "falls back to form feeds when the page count is unavailable")
	assert.Equal(t, constants.PDF, res.Format)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtractIllustrator(t *testing.T) {
	path := writeLayout(t, "777 sleeve.AI")
	r := &stubRunner{stdout: []byte("text")}
	res, err := NewExtractor(Config{}, nil).WithRunner(r).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, constants.AI, res.Format)
	assert.Equal(t, "pdftotext", r.name)
	assert.NotContains(t, r.args, "-layout")
}

func TestExtractErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := NewExtractor(Config{}, nil).WithRunner(&stubRunner{}).Extract(context.Background(), "x.png")
		assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	})

	t.Run("no text layer", func(t *testing.T) {
		path := writeLayout(t, "scan.pdf")
		_, err := NewExtractor(Config{}, nil).WithRunner(&stubRunner{stdout: []byte(" \n\f \n")}).Extract(context.Background(), path)
		assert.ErrorIs(t, err, common.ErrNoTextLayer)
	})

	t.Run("command failure keeps stderr", func(t *testing.T) {
		path := writeLayout(t, "broken.pdf")
		boom := errors.New("exit status 1")
		res, err := NewExtractor(Config{}, nil).
			WithRunner(&stubRunner{stderr: []byte("Syntax Error: Couldn't read xref table"), err: boom}).
			Extract(context.Background(), path)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, res.Warnings, "Syntax Error: Couldn't read xref table")
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a\r\nb\rc", "a\nb\nc"},
		{"EAN\t\t0123  456", "EAN 0123 456"},
		{"top\n\n\n\n\nbottom   ", "top\n\nbottom"},
		{"page1\fpage2", "page1\n\npage2"},
		{"100\u00a0g", "100 g"},
		{"O1 01", "O1 01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "%q", tt.in)
	}
}
