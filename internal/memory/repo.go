package memory

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Chat files

func (r *Repo) CreateChatFile(ctx context.Context, f *ChatFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *Repo) GetChatFileByID(ctx context.Context, id uint64) (*ChatFile, error) {
	var f ChatFile
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ListChatFiles returns files in DESC upload order (newest -> oldest).
func (r *Repo) ListChatFiles(ctx context.Context) ([]ChatFile, error) {
	var files []ChatFile
	if err := r.db.WithContext(ctx).
		Order("uploaded_at DESC, id DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteChatFile removes the file row and every memory it owns.
// Returns gorm.ErrRecordNotFound when the id does not exist.
func (r *Repo) DeleteChatFile(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).
		Where("chat_file_id = ?", id).
		Delete(&Memory{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&ChatFile{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Memories

func (r *Repo) CreateMemory(ctx context.Context, m *Memory) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListRecentMemories returns the most-recently-created memories,
// system-wide. Placeholder retrieval policy until real relevance
// ranking exists.
func (r *Repo) ListRecentMemories(ctx context.Context, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = 5
	}
	var mems []Memory
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&mems).Error; err != nil {
		return nil, err
	}
	return mems, nil
}

func (r *Repo) CountMemoriesByChatFile(ctx context.Context, fileID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Memory{}).
		Where("chat_file_id = ?", fileID).
		Count(&n).Error
	return n, err
}

// People

func (r *Repo) CreatePerson(ctx context.Context, p *Person) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repo) GetPersonByName(ctx context.Context, name string) (*Person, error) {
	var p Person
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPeople returns people with at least one attributed message.
func (r *Repo) ListPeople(ctx context.Context) ([]Person, error) {
	var people []Person
	if err := r.db.WithContext(ctx).
		Where("message_count >= ?", 1).
		Order("message_count DESC, name ASC").
		Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *Repo) IncrementPersonMessageCount(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&Person{}).
		Where("id = ?", id).
		Update("message_count", gorm.Expr("message_count + 1")).Error
}

func (r *Repo) DeletePerson(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&Person{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Notes

func (r *Repo) CreateNote(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repo) GetNoteByID(ctx context.Context, id uint64) (*Note, error) {
	var n Note
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repo) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// ListRecentNotes returns the most-recently-updated notes.
func (r *Repo) ListRecentNotes(ctx context.Context, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 3
	}
	var notes []Note
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *Repo) SaveNote(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *Repo) DeleteNote(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&Note{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Stats

type Stats struct {
	TotalChatFiles int64 `json:"total_chat_files"`
	TotalMemories  int64 `json:"total_memories"`
	TotalNotes     int64 `json:"total_notes"`
}

func (r *Repo) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := r.db.WithContext(ctx).Model(&ChatFile{}).Count(&s.TotalChatFiles).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&Memory{}).Count(&s.TotalMemories).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&Note{}).Count(&s.TotalNotes).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) UpdateJobStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, result string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": JobSucceeded,
			"result": result,
			"error":  nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": JobFailed,
			"error":  errMsg,
			"result": nil,
		}).Error
}
