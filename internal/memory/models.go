package memory

import "time"

// ChatFile is one uploaded chat export and its extracted metadata.
// Participants is a JSON-encoded array of resolved names.
type ChatFile struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename       string     `gorm:"type:varchar(255);not null" json:"filename"`
	FileSize       int64      `gorm:"not null" json:"file_size"`
	TotalMessages  int        `gorm:"not null" json:"total_messages"`
	Participants   string     `gorm:"type:text" json:"participants"`
	DateRangeStart *time.Time `json:"date_range_start"`
	DateRangeEnd   *time.Time `json:"date_range_end"`
	UploadedAt     time.Time  `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (ChatFile) TableName() string { return "chat_files" }

// Memory is one stored chunk of normalized chat text. Immutable once
// created; removed only when its owning file is deleted.
type Memory struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Text           string     `gorm:"type:text;not null" json:"text"`
	Timestamp      *time.Time `json:"timestamp"`
	RelevanceScore *float64   `json:"relevance_score"`
	ChatFileID     uint64     `gorm:"index;not null" json:"chat_file_id"`
	PersonID       *uint64    `gorm:"index" json:"person_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Memory) TableName() string { return "chat_memories" }

// Person is a deduplicated participant identity, unique by exact name.
// Aliases is a JSON-encoded array.
type Person struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Aliases          string     `gorm:"type:text" json:"aliases"`
	FirstMessageDate *time.Time `json:"first_message_date"`
	LastMessageDate  *time.Time `json:"last_message_date"`
	MessageCount     int        `gorm:"not null;default:0" json:"message_count"`
	ProfileNotes     string     `gorm:"type:text" json:"profile_notes"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Person) TableName() string { return "people" }

// Note is a user-authored note, independent of any chat file. Category
// is an open label, not an enum.
type Note struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  *string   `gorm:"type:varchar(64)" json:"category"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Note) TableName() string { return "notes" }
