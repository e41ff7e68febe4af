package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"meeting-brief-service/internal/domain"
)

// Format is the resolved document format an extractor run operates on.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatTXT  Format = "txt"
	FormatMD   Format = "md"
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

var mimeFormats = map[string]Format{
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   FormatDOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FormatPPTX,
	"text/plain":    FormatTXT,
	"text/markdown": FormatMD,
	"text/csv":      FormatCSV,
	"application/csv":          FormatCSV,
	"application/vnd.ms-excel": FormatXLS,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
}

var extFormats = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".pptx": FormatPPTX,
	".txt":  FormatTXT,
	".md":   FormatMD,
	".csv":  FormatCSV,
	".xls":  FormatXLS,
	".xlsx": FormatXLSX,
}

// Extractor normalizes heterogeneous office documents into plain text.
type Extractor struct {
	log *zerolog.Logger
}

func NewExtractor(log *zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// ResolveFormat resolves the effective format from the declared MIME type,
// falling back to the filename extension when the type is generic (browsers
// frequently send application/octet-stream).
func ResolveFormat(declaredMIME, filename string) (Format, error) {
	mt := strings.ToLower(strings.TrimSpace(declaredMIME))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if f, ok := mimeFormats[mt]; ok {
		return f, nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, filename, declaredMIME)
}

// Extract produces plain text from raw file bytes. Failures are typed:
// domain.ErrUnsupportedFormat when the format cannot be resolved and
// domain.ErrParseFailure (carrying the cause) when decoding fails. The
// submission boundary rejects unsupported formats before extraction and
// treats decode failures as a per-file skip.
func (e *Extractor) Extract(data []byte, declaredMIME, filename string) (string, error) {
	format, err := ResolveFormat(declaredMIME, filename)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatPDF:
		return e.extractPDF(data)
	case FormatDOCX:
		return e.extractDOCX(data)
	case FormatPPTX:
		// Best effort: a PPTX that cannot be decoded is treated as plain
		// text rather than failing the whole call.
		if text, err := e.extractPPTX(data); err == nil {
			return text, nil
		} else if e.log != nil {
			e.log.Warn().Err(err).Str("filename", filename).Msg("pptx decode failed, falling back to plain text")
		}
		return string(data), nil
	case FormatTXT, FormatMD:
		return string(data), nil
	case FormatCSV:
		return e.extractCSV(data)
	case FormatXLS:
		return e.extractXLS(data)
	case FormatXLSX:
		return e.extractXLSX(data)
	default:
		return "", fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, filename, declaredMIME)
	}
}
