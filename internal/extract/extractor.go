// Package extract turns uploaded files into plain text. PDFs are
// transcribed through the Gemini Files API with a local parser fallback,
// audio is transcribed through Gemini, and DOCX, CSV and plain text are
// decoded locally.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/relaymind/knowledgecore/internal/domain"
	"github.com/relaymind/knowledgecore/internal/gemini"
)

// DocumentAnalyzer transcribes an uploaded document via a model.
type DocumentAnalyzer interface {
	AnalyzeFile(ctx context.Context, data []byte, mimeType, displayName, prompt string) (string, error)
}

// AudioTranscriber produces a verbatim transcript of an audio file.
type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, data []byte, mimeType, displayName string) (string, error)
}

// Extractor dispatches file content to the right decoder by type.
type Extractor struct {
	analyzer    DocumentAnalyzer
	transcriber AudioTranscriber
}

// New creates an Extractor. analyzer and transcriber may be nil, in which
// case PDF extraction skips straight to the local parser and audio files
// are rejected.
func New(analyzer DocumentAnalyzer, transcriber AudioTranscriber) *Extractor {
	return &Extractor{analyzer: analyzer, transcriber: transcriber}
}

// Extract converts fileData into plain text. fileType is a MIME type or a
// bare extension, matched case-insensitively.
func (e *Extractor) Extract(ctx context.Context, fileData []byte, fileType, fileName string) (string, error) {
	normalized := strings.ToLower(fileType)

	switch {
	case normalized == "application/pdf" || normalized == "pdf":
		return e.extractPDF(ctx, fileData, fileName)
	case normalized == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" || normalized == "docx":
		return extractDOCX(fileData)
	case normalized == "text/csv" || normalized == "csv":
		return extractCSV(fileData)
	case strings.HasPrefix(normalized, "audio/") || isAudioExtension(normalized):
		return e.extractAudio(ctx, fileData, normalized, fileName)
	case normalized == "text/plain" || normalized == "txt":
		return string(fileData), nil
	default:
		return "", domain.NewUnsupportedFormatError(fileType)
	}
}

// extractPDF prefers model transcription for layout fidelity and falls back
// to local text extraction when the model returns nothing useful.
func (e *Extractor) extractPDF(ctx context.Context, data []byte, fileName string) (string, error) {
	if e.analyzer != nil {
		text, err := e.analyzer.AnalyzeFile(ctx, data, "application/pdf", fileName, gemini.PDFTranscriptionPrompt)
		if err == nil && len(strings.TrimSpace(text)) > 10 {
			return text, nil
		}
		if err != nil {
			log.Printf("extract: model pdf transcription failed, falling back to local parser: %v", err)
		} else {
			log.Printf("extract: model pdf transcription returned empty result, falling back to local parser")
		}
	}

	text, err := localPDFText(data)
	if err != nil {
		return "", domain.NewExtractionFailedError("failed to parse pdf", err)
	}
	return text, nil
}

func localPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Extractor) extractAudio(ctx context.Context, data []byte, fileType, fileName string) (string, error) {
	if e.transcriber == nil {
		return "", domain.NewUnsupportedFormatError(fileType)
	}
	text, err := e.transcriber.TranscribeAudio(ctx, data, audioMIMEType(fileType, fileName), fileName)
	if err != nil {
		return "", domain.NewExtractionFailedError("failed to transcribe audio", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.NewExtractionFailedError("audio transcription returned empty content", nil)
	}
	return text, nil
}

func isAudioExtension(fileType string) bool {
	switch fileType {
	case "mp3", "wav", "m4a", "ogg":
		return true
	}
	return false
}

func audioMIMEType(fileType, fileName string) string {
	if strings.HasPrefix(fileType, "audio/") {
		return fileType
	}
	ext := fileType
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(fileName), ".")
	}
	switch ext {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "m4a":
		return "audio/mp4"
	case "ogg":
		return "audio/ogg"
	}
	return "audio/mpeg"
}

// extractDOCX pulls the text runs out of the main document part of the
// OOXML archive. Paragraph breaks become newlines.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewExtractionFailedError("failed to open docx archive", err)
	}

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", domain.NewExtractionFailedError("docx archive has no document part", nil)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", domain.NewExtractionFailedError("failed to read docx document part", err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.NewExtractionFailedError("failed to parse docx xml", err)
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
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// extractCSV renders each record as a JSON object keyed by the header row,
// one object per line, preserving column order.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return "", nil
	}
	if err != nil {
		return "", domain.NewExtractionFailedError("failed to parse csv header", err)
	}

	var lines []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.NewExtractionFailedError("failed to parse csv row", err)
		}

		var row bytes.Buffer
		row.WriteByte('{')
		for i, header := range headers {
			if i > 0 {
				row.WriteByte(',')
			}
			value := ""
			if i < len(record) {
				value = record[i]
			}
			key, _ := json.Marshal(header)
			val, _ := json.Marshal(value)
			fmt.Fprintf(&row, "%s:%s", key, val)
		}
		row.WriteByte('}')
		lines = append(lines, row.String())
	}
	return strings.Join(lines, "\n"), nil
}
