package filetype

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Well-known MIME types the analyzers dispatch on.
const (
	MIMEPDF           = "application/pdf"
	MIMEDocx          = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPptx          = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MIMEXlsx          = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEOctetStream   = "application/octet-stream"
	wordProcessingSfx = "wordprocessingml.document"
)

// Kind groups MIME types by the analyzer that handles them.
type Kind string

const (
	KindPDF            Kind = "pdf"
	KindImage          Kind = "image"
	KindWordProcessing Kind = "word_processing"
	KindOther          Kind = "other"
)

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType  string
	Extension string
	Kind      Kind
	Sniffed   bool // false when the filename extension decided the type
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// extensionTypes is consulted only when magic bytes are inconclusive.
var extensionTypes = map[string]string{
	".pdf":  MIMEPDF,
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".docx": MIMEDocx,
	".doc":  MIMEDocx,
}

// DetectBytes detects the file type of an in-memory document. Magic bytes win;
// the filename extension is used for generic containers (ZIP, OLE) and when
// sniffing yields nothing better than application/octet-stream.
func (d *Detector) DetectBytes(data []byte, filename string) *FileTypeInfo {
	mtype := mimetype.Detect(data)
	mimeType := mtype.String()
	extension := mtype.Extension()
	ext := strings.ToLower(filepath.Ext(filename))
	sniffed := true

	log.Debug().Str("mime", mimeType).Str("ext", extension).Str("file", filename).Msg("detected file type")

	// ZIP-based Office formats are only told apart by their extension here
	if mimeType == "application/zip" || strings.Contains(mimeType, "application/x-zip") {
		switch ext {
		case ".docx":
			mimeType, extension = MIMEDocx, ".docx"
		case ".xlsx":
			mimeType, extension = MIMEXlsx, ".xlsx"
		case ".pptx":
			mimeType, extension = MIMEPptx, ".pptx"
		case ".odt":
			mimeType, extension = "application/vnd.oasis.opendocument.text", ".odt"
		default:
			log.Warn().Str("ext", ext).Msg("ZIP file with unrecognized extension")
		}
		if mimeType != "application/zip" {
			log.Debug().Str("original", mtype.String()).Str("override", mimeType).Msg("overriding ZIP detection based on extension")
		}
	}

	// Legacy OLE/CFB containers (.doc, .xls, .ppt)
	if mimeType == "application/x-ole-storage" || mimeType == "application/x-cfb" {
		switch ext {
		case ".doc":
			mimeType, extension = "application/msword", ".doc"
		case ".xls":
			mimeType, extension = "application/vnd.ms-excel", ".xls"
		case ".ppt":
			mimeType, extension = "application/vnd.ms-powerpoint", ".ppt"
		default:
			log.Warn().Str("ext", ext).Msg("OLE storage with unrecognized extension")
		}
	}

	if mimeType == MIMEOctetStream {
		if byExt, ok := extensionTypes[ext]; ok {
			log.Debug().Str("ext", ext).Str("fallback", byExt).Msg("magic bytes inconclusive, using extension")
			mimeType, extension, sniffed = byExt, ext, false
		}
	}

	return &FileTypeInfo{
		MIMEType:  mimeType,
		Extension: extension,
		Kind:      KindOf(mimeType),
		Sniffed:   sniffed,
	}
}

// KindOf maps a MIME type onto the analyzer family that handles it.
func KindOf(mimeType string) Kind {
	switch {
	case mimeType == MIMEPDF:
		return KindPDF
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasSuffix(mimeType, wordProcessingSfx):
		return KindWordProcessing
	default:
		return KindOther
	}
}
