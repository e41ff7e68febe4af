package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"meeting-brief-service/internal/domain"
)

// extractDOCX pulls raw paragraph text out of word/document.xml. Tables and
// images are dropped.
func (e *Extractor) extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", domain.ErrParseFailure, err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: docx: missing word/document.xml", domain.ErrParseFailure)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", domain.ErrParseFailure, err)
	}
	defer rc.Close()

	text, err := wordMLText(rc)
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", domain.ErrParseFailure, err)
	}
	return text, nil
}

// wordMLText walks WordprocessingML, collecting w:t runs into paragraphs and
// skipping anything nested under w:tbl.
func wordMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b        strings.Builder
		tblDepth int
		inText   bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "t":
				inText = tblDepth == 0
			case "tab":
				if tblDepth == 0 {
					b.WriteString("\t")
				}
			case "br":
				if tblDepth == 0 {
					b.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tblDepth > 0 {
					tblDepth--
				}
			case "t":
				inText = false
			case "p":
				if tblDepth == 0 {
					b.WriteString("\n")
				}
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// extractPPTX collects a:t runs from each slide, in slide order.
func (e *Extractor) extractPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pptx: %v", domain.ErrParseFailure, err)
	}

	var slides []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: pptx: no slides found", domain.ErrParseFailure)
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var b strings.Builder
	for _, f := range slides {
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: pptx: %v", domain.ErrParseFailure, err)
		}
		text, err := drawingMLText(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: pptx %s: %v", domain.ErrParseFailure, f.Name, err)
		}
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func slideNumber(name string) int {
	name = strings.TrimPrefix(name, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	n, _ := strconv.Atoi(name)
	return n
}

// drawingMLText collects a:t runs, one line per a:p paragraph.
func drawingMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
