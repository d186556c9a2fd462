package chatproc

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRemovesTimestampsAndBoilerplate(t *testing.T) {
	in := "[1/2/23, 3:04:05 PM] Alice: hey\n" +
		"Messages and calls are end-to-end encrypted\n" +
		"2023-01-02 15:04:05 Bob: hi there"

	got := Normalize(in)
	assert.Equal(t, "Alice: hey Bob: hi there", got)
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "1/2/2023, 3:04:05 PM Alice: dinner?\n\nYou added Bob\n\nBob:  sounds   good"
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("  \n\t "))
}

func TestSplitChunksGreedyBound(t *testing.T) {
	// 5+5=10 fits exactly at max 10; adding "foo" would overflow.
	got := SplitChunks("hello\n\nworld\n\nfoo", 10)
	assert.Equal(t, []string{"hello world", "foo"}, got)
}

func TestSplitChunksOversizedMessage(t *testing.T) {
	long := strings.Repeat("x", 50)
	got := SplitChunks("hi\n\n"+long+"\n\nbye", 10)
	require.Len(t, got, 3)
	assert.Equal(t, "hi", got[0])
	assert.Equal(t, long, got[1])
	assert.Equal(t, "bye", got[2])
}

func TestSplitChunksEmpty(t *testing.T) {
	assert.Empty(t, SplitChunks("", 100))
	assert.Empty(t, SplitChunks("\n\n  \n\n", 100))
}

func TestSplitChunksCoverage(t *testing.T) {
	messages := []string{"one", "two two", "three three three", "four", "five five"}
	got := SplitChunks(strings.Join(messages, "\n\n"), 12)

	// Every message appears exactly once, in order.
	joined := strings.Join(got, " ")
	assert.Equal(t, strings.Join(messages, " "), joined)
}

func TestExtractMetadataScenario(t *testing.T) {
	md := ExtractMetadata("Alice: Hi there\n\nBob: [1/2/23, 3:04:05 PM] Hello!\n\n")

	assert.Equal(t, 2, md.TotalMessages)
	assert.Equal(t, []string{"Alice", "Bob"}, md.Participants)
	// The bracketed form matches the detection pattern but not the parse
	// layout, so the range stays unset.
	assert.Nil(t, md.DateRange.Start)
	assert.Nil(t, md.DateRange.End)
}

func TestExtractMetadataParsesCanonicalFormat(t *testing.T) {
	md := ExtractMetadata("Alice: 1/2/2023, 3:04:05 PM lunch\nBob: 1/5/2023, 9:30:00 AM sure")

	require.NotNil(t, md.DateRange.Start)
	require.NotNil(t, md.DateRange.End)
	assert.Equal(t, time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC), *md.DateRange.Start)
	assert.Equal(t, time.Date(2023, 1, 5, 9, 30, 0, 0, time.UTC), *md.DateRange.End)
	assert.True(t, !md.DateRange.End.Before(*md.DateRange.Start))
}

func TestExtractMetadataSkipsISOTimestamps(t *testing.T) {
	md := ExtractMetadata("Alice: 2023-01-02 15:04:05 hello")
	assert.Nil(t, md.DateRange.Start)
	assert.Nil(t, md.DateRange.End)
	assert.Equal(t, 1, md.TotalMessages)
}

func TestExtractMetadataDedupesParticipants(t *testing.T) {
	md := ExtractMetadata("Alice: a\nBob: b\nAlice: c\n : d\n")
	assert.Equal(t, []string{"Alice", "Bob"}, md.Participants)
	assert.Equal(t, 4, md.TotalMessages)
}

func TestExtractMetadataEmpty(t *testing.T) {
	md := ExtractMetadata("")
	assert.Equal(t, 0, md.TotalMessages)
	assert.Empty(t, md.Participants)
	assert.Nil(t, md.DateRange.Start)
}
