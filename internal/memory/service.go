package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/ai"
	"github.com/RigvedaVangipurapu/Perf-Partner/internal/chatproc"
	"gorm.io/gorm"
)

// Options tunes the ingestion and retrieval pipeline. Zero values fall
// back to the defaults below.
type Options struct {
	MaxChunkSize        int           // chunker bound, characters
	MemoryContextLimit  int           // memories fed to a recommendation
	NotesContextLimit   int           // notes fed to a recommendation
	ResolverSampleLimit int           // chars of raw text sent to the resolver
	RecommendTimeout    time.Duration // caller-side generation timeout
}

func (o *Options) applyDefaults() {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = chatproc.DefaultMaxChunkSize
	}
	if o.MemoryContextLimit <= 0 {
		o.MemoryContextLimit = 5
	}
	if o.NotesContextLimit <= 0 {
		o.NotesContextLimit = 3
	}
	if o.ResolverSampleLimit <= 0 {
		o.ResolverSampleLimit = 12000
	}
	if o.RecommendTimeout <= 0 {
		o.RecommendTimeout = 30 * time.Second
	}
}

type Service struct {
	repo     *Repo
	provider ai.Provider
	opts     Options
}

func NewService(repo *Repo, provider ai.Provider, opts Options) *Service {
	opts.applyDefaults()
	return &Service{repo: repo, provider: provider, opts: opts}
}

// IngestResult echoes the extracted metadata for one processed upload.
type IngestResult struct {
	TotalMessages int                `json:"total_messages"`
	DateRange     chatproc.DateRange `json:"date_range"`
	Participants  []string           `json:"participants"`
	ChatFileID    uint64             `json:"chat_file_id"`
	UploadedAt    time.Time          `json:"uploaded_at"`
}

// IngestChat runs the full pipeline on one raw upload: resolve
// participant names, normalize and chunk the text, extract metadata,
// then persist the file, its people and its memories. Extraction and
// resolution failures degrade to empty results; only decode and storage
// failures abort the ingest. Writes are committed step by step, not
// under one transaction, so a mid-loop failure leaves earlier rows in
// place.
func (s *Service) IngestChat(ctx context.Context, raw []byte, filename string) (*IngestResult, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%q: %w", filename, ErrDecode)
	}
	text := string(raw)

	names, ok := s.resolveParticipants(ctx, text)
	if !ok {
		names = []string{}
	}

	chunks := chatproc.SplitChunks(chatproc.Normalize(text), s.opts.MaxChunkSize)
	meta := chatproc.ExtractMetadata(text)

	people := make([]*Person, 0, len(names))
	for _, name := range names {
		p, err := s.upsertPerson(ctx, name)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}

	participantsJSON, err := json.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("encoding participants: %w", err)
	}

	file := &ChatFile{
		Filename:       filename,
		FileSize:       int64(len(raw)),
		TotalMessages:  meta.TotalMessages,
		Participants:   string(participantsJSON),
		DateRangeStart: meta.DateRange.Start,
		DateRangeEnd:   meta.DateRange.End,
	}
	if err := s.repo.CreateChatFile(ctx, file); err != nil {
		return nil, fmt.Errorf("%w: creating chat file: %v", ErrStorage, err)
	}

	owner := defaultAttribution(people)
	for _, chunk := range chunks {
		m := &Memory{Text: chunk, ChatFileID: file.ID}
		if owner != nil {
			m.PersonID = &owner.ID
		}
		if err := s.repo.CreateMemory(ctx, m); err != nil {
			return nil, fmt.Errorf("%w: storing memory: %v", ErrStorage, err)
		}
		if owner != nil {
			if err := s.repo.IncrementPersonMessageCount(ctx, owner.ID); err != nil {
				return nil, fmt.Errorf("%w: updating message count: %v", ErrStorage, err)
			}
		}
	}

	return &IngestResult{
		TotalMessages: meta.TotalMessages,
		DateRange:     meta.DateRange,
		Participants:  names,
		ChatFileID:    file.ID,
		UploadedAt:    file.UploadedAt,
	}, nil
}

// defaultAttribution picks the person that owns every chunk of an
// upload: the first resolved participant. Deliberately a named policy
// so per-speaker attribution can replace it without touching
// IngestChat.
func defaultAttribution(people []*Person) *Person {
	if len(people) == 0 {
		return nil
	}
	return people[0]
}

func (s *Service) upsertPerson(ctx context.Context, name string) (*Person, error) {
	p, err := s.repo.GetPersonByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: looking up person: %v", ErrStorage, err)
	}
	p = &Person{Name: name, Aliases: "[]"}
	if err := s.repo.CreatePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: creating person: %v", ErrStorage, err)
	}
	return p, nil
}

// Files

func (s *Service) ListFiles(ctx context.Context) ([]ChatFile, error) {
	files, err := s.repo.ListChatFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing files: %v", ErrStorage, err)
	}
	return files, nil
}

func (s *Service) DeleteFile(ctx context.Context, id uint64) error {
	if err := s.repo.DeleteChatFile(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("chat file %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: deleting file: %v", ErrStorage, err)
	}
	return nil
}

// Notes

// NoteUpdate carries a partial note edit; nil fields are left alone.
type NoteUpdate struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (s *Service) AddNote(ctx context.Context, title, content string, category *string) (*Note, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("title and content are required: %w", ErrValidation)
	}
	n := &Note{Title: title, Content: content, Category: category}
	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: creating note: %v", ErrStorage, err)
	}
	return n, nil
}

func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	notes, err := s.repo.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing notes: %v", ErrStorage, err)
	}
	return notes, nil
}

func (s *Service) UpdateNote(ctx context.Context, id uint64, patch NoteUpdate) (*Note, error) {
	n, err := s.repo.GetNoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading note: %v", ErrStorage, err)
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", ErrValidation)
		}
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, fmt.Errorf("content cannot be empty: %w", ErrValidation)
		}
		n.Content = *patch.Content
	}
	if patch.Category != nil {
		n.Category = patch.Category
	}

	if err := s.repo.SaveNote(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: saving note: %v", ErrStorage, err)
	}
	return n, nil
}

func (s *Service) DeleteNote(ctx context.Context, id uint64) error {
	if err := s.repo.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("note %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: deleting note: %v", ErrStorage, err)
	}
	return nil
}

// People

func (s *Service) ListPeople(ctx context.Context) ([]Person, error) {
	people, err := s.repo.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing people: %v", ErrStorage, err)
	}
	return people, nil
}

func (s *Service) DeletePerson(ctx context.Context, id uint64) error {
	if err := s.repo.DeletePerson(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("person %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: deleting person: %v", ErrStorage, err)
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: computing stats: %v", ErrStorage, err)
	}
	return stats, nil
}

// Recommendations

// ContextUsed echoes exactly which stored strings were sent to the
// generation service. Privacy-transparency contract: callers show this
// to the user.
type ContextUsed struct {
	ChatMemories []string `json:"chat_memories"`
	PartnerNotes []string `json:"partner_notes"`
}

type RecommendationResult struct {
	Recommendation string      `json:"recommendation"`
	ContextUsed    ContextUsed `json:"context_used"`
}

// Recommend selects recent memories and notes, builds a prompt and asks
// the generation service for a personalized answer. Retrieval is
// recency-ordered for now, a stand-in for relevance ranking. Fails with
// ErrNotFound when no memories and no notes exist at all, and with
// ErrUpstream on any generation failure or timeout.
func (s *Service) Recommend(ctx context.Context, question string) (*RecommendationResult, error) {
	mems, err := s.repo.ListRecentMemories(ctx, s.opts.MemoryContextLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: loading memories: %v", ErrStorage, err)
	}
	notes, err := s.repo.ListRecentNotes(ctx, s.opts.NotesContextLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: loading notes: %v", ErrStorage, err)
	}
	if len(mems) == 0 && len(notes) == 0 {
		return nil, fmt.Errorf("no chat memories or notes stored yet: %w", ErrNotFound)
	}

	memTexts := make([]string, 0, len(mems))
	for _, m := range mems {
		memTexts = append(memTexts, m.Text)
	}
	noteLines := make([]string, 0, len(notes))
	for _, n := range notes {
		noteLines = append(noteLines, n.Title+": "+n.Content)
	}

	prompt := buildRecommendationPrompt(memTexts, noteLines, question)

	ctx, cancel := context.WithTimeout(ctx, s.opts.RecommendTimeout)
	defer cancel()

	reply, err := s.provider.Chat(ctx, []ai.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return &RecommendationResult{
		Recommendation: reply,
		ContextUsed: ContextUsed{
			ChatMemories: memTexts,
			PartnerNotes: noteLines,
		},
	}, nil
}

func buildRecommendationPrompt(memories, notes []string, question string) string {
	var b strings.Builder
	b.WriteString("Based on the following context about the user's relationships and life:\n\n")

	if len(memories) > 0 {
		b.WriteString("Chat History Context:\n")
		for _, m := range memories {
			b.WriteString("- " + m + "\n")
		}
		b.WriteString("\n")
	}
	if len(notes) > 0 {
		b.WriteString("Personal Notes:\n")
		for _, n := range notes {
			b.WriteString("- " + n + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: " + question + "\n\n")
	b.WriteString("Please provide a thoughtful, personalized answer that references concrete details from the chat history and notes above. Be specific and personal rather than generic.")
	return b.String()
}

// Async jobs

func (s *Service) CreateJob(ctx context.Context, job *Job) error {
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("%w: creating job: %v", ErrStorage, err)
	}
	return nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading job: %v", ErrStorage, err)
	}
	return j, nil
}

// RunJob executes one queued recommendation job to completion, marking
// it succeeded or failed. Called by the worker.
func (s *Service) RunJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	res, err := s.Recommend(ctx, j.Question)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	payload, err := json.Marshal(res)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}
	return s.repo.MarkJobSucceeded(ctx, jobID, string(payload))
}
