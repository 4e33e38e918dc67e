// Package chunker splits normalized document text into overlapping,
// size-bounded segments with positional metadata. Paragraphs that fit the
// size budget become one chunk each; oversized paragraphs are re-split on
// sentence boundaries into greedy windows with a bounded backward overlap.
package chunker

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/relaymind/knowledgecore/internal/domain"
)

// Defaults used when a caller passes non-positive tuning values.
const (
	DefaultMaxLength = 1000
	DefaultOverlap   = 150
)

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// Chunk splits text into ordered chunks of at most maxLength characters with
// up to overlap characters of trailing-sentence re-inclusion between adjacent
// windows. Lengths and offsets are counted in runes.
//
// Chunk never fails outward: any internal panic is logged and yields an empty
// slice, and empty input yields nil. Callers must treat zero chunks as a
// no-op, not an error.
func Chunk(text string, maxLength, overlap int) (chunks []domain.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chunker: recovered from panic, returning no chunks: %v", r)
			chunks = nil
		}
	}()

	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	paragraphs := paragraphSep.Split(text, -1)
	currentPosition := 0
	chunkIndex := 0

	for _, paragraph := range paragraphs {
		paragraphLen := utf8.RuneCountInString(paragraph)

		// Blank paragraphs still advance the offset: their own length plus
		// the two newlines the split consumed.
		if strings.TrimSpace(paragraph) == "" {
			currentPosition += paragraphLen + 2
			continue
		}

		if paragraphLen <= maxLength {
			chunkText := strings.TrimSpace(paragraph)
			chunkIndex++
			chunks = append(chunks, newChunk(chunkText, chunkIndex-1,
				fmt.Sprintf("paragraph_%d", chunkIndex), currentPosition))
			currentPosition += paragraphLen + 2
			continue
		}

		// Oversized paragraph: accumulate sentences into greedy windows.
		sentences := splitSentences(paragraph)
		sentenceStart := currentPosition
		i := 0
		for i < len(sentences) {
			current := ""
			j := i
			for j < len(sentences) && utf8.RuneCountInString(current)+utf8.RuneCountInString(sentences[j]) <= maxLength {
				current += sentences[j] + " "
				j++
			}

			// A single sentence longer than the budget becomes its own chunk.
			if i == j {
				chunkText := strings.TrimSpace(sentences[i])
				chunkIndex++
				chunks = append(chunks, newChunk(chunkText, chunkIndex-1,
					fmt.Sprintf("sentence_%d", chunkIndex), sentenceStart))
				sentenceStart += utf8.RuneCountInString(sentences[i]) + 1
				i++
				continue
			}

			chunkText := strings.TrimSpace(current)
			chunkIndex++
			chunks = append(chunks, newChunk(chunkText, chunkIndex-1,
				fmt.Sprintf("paragraph_%d", chunkIndex), sentenceStart))

			// Walk backward from the end of the window until the overlap
			// budget is spent; the next window restarts from there, bounded
			// below by i+1 so progress is guaranteed.
			overlapLen := 0
			k := j - 1
			for k > i && overlapLen < overlap {
				overlapLen += utf8.RuneCountInString(sentences[k]) + 1
				k--
			}
			if k > i+1 {
				i = k
			} else {
				i = i + 1
			}
			sentenceStart += utf8.RuneCountInString(chunkText) + 1
		}
		currentPosition += paragraphLen + 2
	}

	// Drop empties, then back-fill the final count on the survivors.
	final := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			final = append(final, c)
		}
	}
	for idx := range final {
		final[idx].Metadata.TotalChunks = len(final)
	}
	return final
}

func newChunk(text string, index int, section string, start int) domain.Chunk {
	size := utf8.RuneCountInString(text)
	return domain.Chunk{
		Text: text,
		Metadata: domain.ChunkMetadata{
			ChunkIndex:    index,
			ChunkSize:     size,
			StartPosition: start,
			EndPosition:   start + size,
			Section:       section,
		},
	}
}

// splitSentences splits a paragraph after each '.', '?' or '!' that is
// followed by whitespace, consuming the whitespace run. The terminator stays
// attached to its sentence.
func splitSentences(paragraph string) []string {
	var sentences []string
	runes := []rune(paragraph)
	start := 0
	i := 0
	for i < len(runes) {
		if isTerminator(runes[i]) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
