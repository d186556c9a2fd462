package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/RigvedaVangipurapu/Perf-Partner/internal/ai"
)

type fakeProvider struct {
	reply string
	err   error
	last  []ai.Message
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.last = append([]ai.Message(nil), messages...)
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&ChatFile{}, &Memory{}, &Person{}, &Note{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

func newTestService(t *testing.T, prov ai.Provider) (*Service, *Repo, *gorm.DB) {
	t.Helper()
	gdb := openTestDB(t)
	repo := NewRepo(gdb)
	return NewService(repo, prov, Options{}), repo, gdb
}

func TestIngestChat_StoresFileChunksAndPeople(t *testing.T) {
	prov := &fakeProvider{reply: `["Alice","Bob"]`}
	svc, _, gdb := newTestService(t, prov)

	raw := []byte("Alice: Hi there\n\nBob: Hello back\n")
	res, err := svc.IngestChat(context.Background(), raw, "export.txt")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if res.TotalMessages != 2 {
		t.Fatalf("expected 2 messages, got %d", res.TotalMessages)
	}
	if len(res.Participants) != 2 || res.Participants[0] != "Alice" || res.Participants[1] != "Bob" {
		t.Fatalf("unexpected participants: %v", res.Participants)
	}
	if res.ChatFileID == 0 {
		t.Fatalf("expected chat file id to be set")
	}

	var file ChatFile
	if err := gdb.First(&file, res.ChatFileID).Error; err != nil {
		t.Fatalf("load file: %v", err)
	}
	if file.Filename != "export.txt" || file.FileSize != int64(len(raw)) {
		t.Fatalf("unexpected file record: %+v", file)
	}
	if file.Participants != `["Alice","Bob"]` {
		t.Fatalf("unexpected participants json: %q", file.Participants)
	}

	// Normalization collapses the blank line, so this upload is one chunk.
	var mems []Memory
	if err := gdb.Where("chat_file_id = ?", file.ID).Find(&mems).Error; err != nil {
		t.Fatalf("load memories: %v", err)
	}
	if len(mems) != 1 {
		t.Fatalf("expected 1 memory, got %d", len(mems))
	}
	if mems[0].Text != "Alice: Hi there Bob: Hello back" {
		t.Fatalf("unexpected chunk text: %q", mems[0].Text)
	}

	// All chunks attributed to the first resolved participant.
	var alice Person
	if err := gdb.Where("name = ?", "Alice").First(&alice).Error; err != nil {
		t.Fatalf("load alice: %v", err)
	}
	if mems[0].PersonID == nil || *mems[0].PersonID != alice.ID {
		t.Fatalf("expected chunk owned by alice")
	}
	if alice.MessageCount != 1 {
		t.Fatalf("expected alice message_count=1, got %d", alice.MessageCount)
	}

	var bob Person
	if err := gdb.Where("name = ?", "Bob").First(&bob).Error; err != nil {
		t.Fatalf("load bob: %v", err)
	}
	if bob.MessageCount != 0 {
		t.Fatalf("expected bob message_count=0, got %d", bob.MessageCount)
	}

	// ListPeople filters to message_count >= 1.
	people, err := svc.ListPeople(context.Background())
	if err != nil {
		t.Fatalf("list people: %v", err)
	}
	if len(people) != 1 || people[0].Name != "Alice" {
		t.Fatalf("expected only alice listed, got %+v", people)
	}
}

func TestIngestChat_ResolverFailureDegrades(t *testing.T) {
	prov := &fakeProvider{err: errors.New("quota exceeded")}
	svc, _, gdb := newTestService(t, prov)

	res, err := svc.IngestChat(context.Background(), []byte("Alice: hi\n"), "a.txt")
	if err != nil {
		t.Fatalf("ingest should not fail on resolver errors: %v", err)
	}
	if len(res.Participants) != 0 {
		t.Fatalf("expected empty participants, got %v", res.Participants)
	}

	var mems []Memory
	if err := gdb.Where("chat_file_id = ?", res.ChatFileID).Find(&mems).Error; err != nil {
		t.Fatalf("load memories: %v", err)
	}
	if len(mems) != 1 || mems[0].PersonID != nil {
		t.Fatalf("expected one unattributed chunk, got %+v", mems)
	}
}

func TestIngestChat_InvalidUTF8(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{reply: "[]"})

	_, err := svc.IngestChat(context.Background(), []byte{0xff, 0xfe, 0xfd}, "bad.bin")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDeleteFile_CascadesChunks(t *testing.T) {
	prov := &fakeProvider{reply: `["Alice"]`}
	svc, repo, _ := newTestService(t, prov)

	first, err := svc.IngestChat(context.Background(), []byte("Alice: one\n"), "one.txt")
	if err != nil {
		t.Fatalf("ingest one: %v", err)
	}
	second, err := svc.IngestChat(context.Background(), []byte("Alice: two\n"), "two.txt")
	if err != nil {
		t.Fatalf("ingest two: %v", err)
	}

	if err := svc.DeleteFile(context.Background(), first.ChatFileID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	n, err := repo.CountMemoriesByChatFile(context.Background(), first.ChatFileID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected deleted file to have 0 memories, got %d", n)
	}

	n, err = repo.CountMemoriesByChatFile(context.Background(), second.ChatFileID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected other file untouched, got %d memories", n)
	}

	if err := svc.DeleteFile(context.Background(), first.ChatFileID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestRecommend_EmptyStore(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{reply: "irrelevant"})

	_, err := svc.Recommend(context.Background(), "what gift?")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecommend_BuildsPromptAndEchoesContext(t *testing.T) {
	prov := &fakeProvider{reply: "Take them stargazing."}
	svc, repo, _ := newTestService(t, prov)

	// Seed more memories than the context limit.
	for i := 1; i <= 7; i++ {
		if err := repo.CreateMemory(context.Background(), &Memory{
			Text:       fmt.Sprintf("memory %d", i),
			ChatFileID: 1,
		}); err != nil {
			t.Fatalf("seed memory %d: %v", i, err)
		}
	}
	cat := "Interests"
	if _, err := svc.AddNote(context.Background(), "Favorite flower", "peonies", &cat); err != nil {
		t.Fatalf("add note: %v", err)
	}

	res, err := svc.Recommend(context.Background(), "what gift?")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Recommendation != "Take them stargazing." {
		t.Fatalf("unexpected recommendation: %q", res.Recommendation)
	}

	// Most-recent 5, newest first.
	if len(res.ContextUsed.ChatMemories) != 5 {
		t.Fatalf("expected 5 memories in context, got %d", len(res.ContextUsed.ChatMemories))
	}
	if res.ContextUsed.ChatMemories[0] != "memory 7" {
		t.Fatalf("expected newest memory first, got %q", res.ContextUsed.ChatMemories[0])
	}
	if len(res.ContextUsed.PartnerNotes) != 1 || res.ContextUsed.PartnerNotes[0] != "Favorite flower: peonies" {
		t.Fatalf("unexpected notes context: %v", res.ContextUsed.PartnerNotes)
	}

	if len(prov.last) != 1 {
		t.Fatalf("expected one provider message, got %d", len(prov.last))
	}
	prompt := prov.last[0].Content
	for _, want := range []string{
		"Chat History Context:",
		"- memory 7",
		"Personal Notes:",
		"- Favorite flower: peonies",
		"Question: what gift?",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestRecommend_UpstreamError(t *testing.T) {
	prov := &fakeProvider{err: errors.New("timeout")}
	svc, repo, _ := newTestService(t, prov)

	if err := repo.CreateMemory(context.Background(), &Memory{Text: "m", ChatFileID: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Recommend(context.Background(), "q")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestNotes_ValidationAndLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{})

	if _, err := svc.AddNote(context.Background(), " ", "content", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
	if _, err := svc.AddNote(context.Background(), "title", "", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty content, got %v", err)
	}

	note, err := svc.AddNote(context.Background(), "Birthday", "loves surprises", nil)
	if err != nil {
		t.Fatalf("add note: %v", err)
	}

	newTitle := "Birthday plans"
	cat := "Memories"
	updated, err := svc.UpdateNote(context.Background(), note.ID, NoteUpdate{Title: &newTitle, Category: &cat})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Title != "Birthday plans" || updated.Content != "loves surprises" {
		t.Fatalf("unexpected updated note: %+v", updated)
	}
	if updated.Category == nil || *updated.Category != "Memories" {
		t.Fatalf("expected category set, got %+v", updated.Category)
	}

	empty := ""
	if _, err := svc.UpdateNote(context.Background(), note.ID, NoteUpdate{Content: &empty}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty content patch, got %v", err)
	}

	if _, err := svc.UpdateNote(context.Background(), 9999, NoteUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing note, got %v", err)
	}

	if err := svc.DeleteNote(context.Background(), note.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}
	if err := svc.DeleteNote(context.Background(), note.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{reply: "[]"})

	if _, err := svc.IngestChat(context.Background(), []byte("Alice: hi\n"), "a.txt"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := svc.AddNote(context.Background(), "t", "c", nil); err != nil {
		t.Fatalf("note: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalChatFiles != 1 || stats.TotalMemories != 1 || stats.TotalNotes != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunJob_SucceedsAndRecordsResult(t *testing.T) {
	prov := &fakeProvider{reply: "Cook their favorite meal."}
	svc, repo, _ := newTestService(t, prov)

	if err := repo.CreateMemory(context.Background(), &Memory{Text: "loves pasta", ChatFileID: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	job := &Job{ID: "01TESTJOB0000000000000000X", Question: "dinner idea?", Status: JobQueued}
	if err := svc.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := svc.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}

	got, err := svc.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobSucceeded {
		t.Fatalf("expected succeeded, got %s (err=%v)", got.Status, got.Error)
	}
	if got.Result == nil {
		t.Fatalf("expected result payload")
	}
	var res RecommendationResult
	if err := json.Unmarshal([]byte(*got.Result), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Recommendation != "Cook their favorite meal." {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunJob_MarksFailureOnEmptyStore(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{reply: "x"})

	job := &Job{ID: "01TESTJOB0000000000000000Y", Question: "q", Status: JobQueued}
	if err := svc.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := svc.RunJob(context.Background(), job.ID); err == nil {
		t.Fatalf("expected run to fail")
	}

	got, err := svc.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobFailed || got.Error == nil {
		t.Fatalf("expected failed with error, got %+v", got)
	}
}
