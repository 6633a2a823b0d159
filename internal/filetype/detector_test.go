package filetype

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte("<x/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectBytesPDF(t *testing.T) {
	info := New().DetectBytes([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), "report.bin")
	assert.Equal(t, MIMEPDF, info.MIMEType)
	assert.Equal(t, KindPDF, info.Kind)
	assert.True(t, info.Sniffed)
	assert.Equal(t, ".pdf", info.Extension)
}

func TestDetectBytesPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))

	info := New().DetectBytes(buf.Bytes(), "scan")
	assert.Equal(t, "image/png", info.MIMEType)
	assert.Equal(t, KindImage, info.Kind)
	assert.True(t, info.Sniffed)
}

func TestDetectBytesExtensionFallback(t *testing.T) {
	garbage := []byte{0x00, 0x01, 0x02, 0xfe, 0xff, 0x00, 0x13, 0x37}

	cases := []struct {
		name string
		mime string
		kind Kind
	}{
		{"photo.JPG", "image/jpeg", KindImage},
		{"page.tiff", "image/tiff", KindImage},
		{"legacy.doc", MIMEDocx, KindWordProcessing},
		{"broken.pdf", MIMEPDF, KindPDF},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := New().DetectBytes(garbage, tc.name)
			assert.Equal(t, tc.mime, info.MIMEType)
			assert.Equal(t, tc.kind, info.Kind)
			assert.False(t, info.Sniffed)
		})
	}
}

func TestDetectBytesUnknown(t *testing.T) {
	info := New().DetectBytes([]byte{0x00, 0x01, 0x02, 0xfe, 0xff, 0x00}, "blob.xyz")
	assert.Equal(t, MIMEOctetStream, info.MIMEType)
	assert.Equal(t, KindOther, info.Kind)
	assert.True(t, info.Sniffed)
}

func TestDetectBytesZipOverride(t *testing.T) {
	data := zipBytes(t, "notes/a.xml", "notes/b.xml")

	info := New().DetectBytes(data, "Contract.DOCX")
	assert.Equal(t, MIMEDocx, info.MIMEType)
	assert.Equal(t, KindWordProcessing, info.Kind)

	plain := New().DetectBytes(data, "archive.zip")
	assert.Equal(t, KindOther, plain.Kind)
}

func TestDetectBytesText(t *testing.T) {
	info := New().DetectBytes([]byte("just some notes about the quarterly plan\n"), "notes.txt")
	assert.True(t, strings.HasPrefix(info.MIMEType, "text/plain"))
	assert.Equal(t, KindOther, info.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPDF, KindOf(MIMEPDF))
	assert.Equal(t, KindImage, KindOf("image/bmp"))
	assert.Equal(t, KindWordProcessing, KindOf(MIMEDocx))
	assert.Equal(t, KindOther, KindOf("application/msword"))
}
