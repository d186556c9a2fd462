// Package chatproc turns raw chat export text into normalized,
// bounded-size memory chunks plus per-file metadata. It is pure text
// processing: no storage and no network.
package chatproc

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the chunk bound used when the caller passes 0.
const DefaultMaxChunkSize = 1000

// timestampLayout is the only format ever parsed for date ranges.
// The WhatsApp-bracketed and ISO patterns below are detected but do not
// fit this layout, so lines matching them never contribute to the date
// range. Intentional: the selective behavior is part of the contract.
const timestampLayout = "1/2/2006, 3:04:05 PM"

var timestampPatterns = []*regexp.Regexp{
	// WhatsApp style: [1/2/23, 3:04:05 PM]
	regexp.MustCompile(`\[\d{1,2}/\d{1,2}/\d{2,4},\s\d{1,2}:\d{2}(?::\d{2})?\s[AP]M\]`),
	// Unbracketed variant: 1/2/2023, 3:04:05 PM
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4},\s\d{1,2}:\d{2}(?::\d{2})?\s[AP]M`),
	// ISO: 2023-01-02 15:04:05
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

var participantRe = regexp.MustCompile(`^([^:]+):`)

// systemMessages are messenger boilerplate lines removed during
// normalization. Literal substrings, not patterns.
var systemMessages = []string{
	"Messages and calls are end-to-end encrypted",
	"You changed the group description",
	"You changed the group icon",
	"You added",
	"You removed",
	"You left",
	"You joined",
}

// Normalize strips timestamps and known system-message boilerplate from
// raw chat export text and collapses whitespace. Normalizing already
// normalized text returns it unchanged.
func Normalize(text string) string {
	for _, re := range timestampPatterns {
		text = re.ReplaceAllString(text, "")
	}
	for _, msg := range systemMessages {
		text = strings.ReplaceAll(text, msg, "")
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitChunks splits normalized text on blank-line boundaries and
// greedily packs the resulting messages into chunks of at most
// maxChunkSize characters, joined with single spaces. The size check
// counts only message lengths, so a chunk may modestly exceed the bound
// by its join separators, and a single oversized message becomes its own
// chunk. Empty or whitespace-only input yields no chunks.
func SplitChunks(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	var chunks []string
	var current []string
	size := 0

	for _, message := range strings.Split(text, "\n\n") {
		message = strings.TrimSpace(message)
		if message == "" {
			continue
		}
		n := utf8.RuneCountInString(message)
		if size+n > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			size = 0
		}
		current = append(current, message)
		size += n
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// DateRange is either fully unset or has Start <= End.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Metadata summarizes a raw chat export.
type Metadata struct {
	TotalMessages int        `json:"total_messages"`
	DateRange     DateRange  `json:"date_range"`
	Participants  []string   `json:"participants"`
}

// ExtractMetadata scans raw (unnormalized) export text line by line for
// the message count, the timestamp date range and participant names.
// Participants come from a "Name:" line prefix, deduplicated in
// first-seen order. Only the first matching timestamp pattern per line
// is considered, and only values fitting the canonical layout are
// parsed; everything else is skipped silently.
func ExtractMetadata(text string) Metadata {
	md := Metadata{Participants: []string{}}
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			md.TotalMessages++
		}

		for _, re := range timestampPatterns {
			raw := re.FindString(line)
			if raw == "" {
				continue
			}
			if ts, err := time.Parse(timestampLayout, raw); err == nil {
				if md.DateRange.Start == nil || ts.Before(*md.DateRange.Start) {
					t := ts
					md.DateRange.Start = &t
				}
				if md.DateRange.End == nil || ts.After(*md.DateRange.End) {
					t := ts
					md.DateRange.End = &t
				}
			}
			break
		}

		if m := participantRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "" && !seen[name] {
				seen[name] = true
				md.Participants = append(md.Participants, name)
			}
		}
	}
	return md
}
