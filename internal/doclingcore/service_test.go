package doclingcore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/local/docorchestrator/internal/chunker"
	"github.com/local/docorchestrator/internal/ooxml/ooxmlfixture"
	"github.com/local/docorchestrator/internal/pdftext/pdffixture"
)

func newService() *Service {
	return New(nil, chunker.New(chunker.Config{Size: 40, Overlap: 5}))
}

func TestProcessPDF(t *testing.T) {
	res := newService().Process(pdffixture.Build("First page text", "Second page text"), "Report.PDF", "doc-1")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, ".pdf", res.FileExtension)
	assert.Equal(t, ServiceName, res.ProcessingService)
	assert.Equal(t, "doc-1", res.DocumentID)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, 1, res.Pages[0].PageNumber)
	assert.Contains(t, res.Pages[1].Text, "Second page text")
	assert.Equal(t, 2, res.Metadata["total_pages"])
	assert.NotEmpty(t, res.MethodUsed)
	assert.NotEmpty(t, res.Chunks)
}

func TestProcessDocx(t *testing.T) {
	data := ooxmlfixture.Docx([]string{"Title", "", "  Body text  "}, [][]string{{" a ", "b"}, {"c", "d"}})
	res := newService().Process(data, "memo.docx", "")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Title\nBody text", res.Text)
	require.Len(t, res.Paragraphs, 2)
	assert.Equal(t, Paragraph{Index: 2, Text: "Body text"}, res.Paragraphs[1])
	require.Len(t, res.Tables, 1)
	assert.Equal(t, Table{Index: 0, Data: [][]string{{"a", "b"}, {"c", "d"}}, Rows: 2, Cols: 2}, res.Tables[0])
	assert.Equal(t, 1, res.Metadata["total_tables"])
}

func TestProcessPptx(t *testing.T) {
	res := newService().Process(ooxmlfixture.Pptx("Agenda", "Results\nQ3 up"), "deck.pptx", "")

	require.True(t, res.Success, res.Error)
	require.Len(t, res.Slides, 2)
	assert.Equal(t, "Results\nQ3 up\n", res.Slides[1].Text)
	assert.Equal(t, "Agenda\n\nResults\nQ3 up\n\n", res.Text)
}

func TestProcessXlsx(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"part", "qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"bolt", 12}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res := newService().Process(buf.Bytes(), "parts.xlsx", "")
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Sheets, 1)
	assert.Equal(t, [][]string{{"part", "qty"}, {"bolt", "12"}}, res.Sheets[0].Data)
	assert.Contains(t, res.Text, "bolt\t12")
	assert.Equal(t, "excelize", res.MethodUsed)
}

func TestProcessText(t *testing.T) {
	s := newService()

	utf := s.Process([]byte("naïve café"), "notes.md", "")
	require.True(t, utf.Success)
	assert.Equal(t, "naïve café", utf.Text)
	assert.Equal(t, "utf-8", utf.Metadata["encoding"])

	latin := s.Process([]byte{'c', 'a', 'f', 0xE9}, "legacy.txt", "")
	require.True(t, latin.Success)
	assert.Equal(t, "café", latin.Text)
	assert.Equal(t, "latin-1", latin.Metadata["encoding"])

	unknown := s.Process([]byte("a,b\n1,2"), "data.weird", "")
	require.True(t, unknown.Success)
	assert.Equal(t, "text", unknown.MethodUsed)
}

func TestProcessCorruptDocx(t *testing.T) {
	res := newService().Process([]byte("not a zip"), "broken.docx", "d")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "docx")
	assert.Empty(t, res.Chunks)
	assert.Equal(t, "broken.docx", res.Filename)
}

func TestProcessChunksLongText(t *testing.T) {
	text := strings.Repeat("Sentence number one is here. ", 10)
	res := newService().Process([]byte(text), "long.txt", "")
	require.True(t, res.Success)
	assert.Greater(t, len(res.Chunks), 3)
	assert.Equal(t, len(res.Chunks), res.Metadata["total_chunks"])
}

func post(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/docling-core", bytes.NewReader(raw)))
	return rec
}

func TestHandler(t *testing.T) {
	h := newService().Handler()

	rec := post(t, h, map[string]string{
		"document_bytes": base64.StdEncoding.EncodeToString([]byte("hello")),
		"filename":       "hi.txt",
		"document_id":    "abc",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "abc", res.DocumentID)

	rec = post(t, h, map[string]string{"filename": "x.txt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No document bytes provided")

	rec = post(t, h, map[string]string{"document_bytes": "%%%"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docling-core", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
