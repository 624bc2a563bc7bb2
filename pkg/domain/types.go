package domain

import "time"

// WorkType distinguishes single-page documents from multi-page books.
// It is fixed at creation time and also applies to files.
type WorkType string

const (
	TypeSingle WorkType = "single"
	TypeBook   WorkType = "book"
)

// IsValid reports whether t is a known work/file type.
func (t WorkType) IsValid() bool {
	return t == TypeSingle || t == TypeBook
}

type InputType string

const (
	InputText     InputType = "text"
	InputTextarea InputType = "textarea"
	InputRichtext InputType = "richtext"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Streak       int       `json:"streak"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLogin"`
}

// Work is a top-level document project owned by one user.
type Work struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"userId"`
	Type      WorkType       `json:"type"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	PageCount int            `json:"pageCount"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Folder groups files inside a work. ParentID is nil for root folders;
// non-nil parents always belong to the same work and never form a cycle.
type Folder struct {
	ID       uint   `json:"id"`
	WorkID   uint   `json:"workId"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parentId"`
	Order    int    `json:"order"`
}

type File struct {
	ID        uint     `json:"id"`
	WorkID    uint     `json:"workId"`
	Name      string   `json:"name"`
	Type      WorkType `json:"type"`
	Content   string   `json:"content"`
	Order     int      `json:"order"`
	ParentID  *uint    `json:"parentId"`
	Extension string   `json:"extension"`
}

// Input is one form field of a file. For book files PageNum partitions
// inputs into pages and Order sequences them within a page; for single
// files PageNum is nil and Order is the whole sequence.
type Input struct {
	ID      uint      `json:"id"`
	FileID  uint      `json:"fileId"`
	Section string    `json:"section"`
	Label   string    `json:"label"`
	Value   string    `json:"value"`
	Order   int       `json:"order"`
	Type    InputType `json:"type"`
	PageNum *int      `json:"pageNum,omitempty"`
}

// Payment records a download purchase for a work. Payments are audit
// records: they survive deletion of the work they reference.
type Payment struct {
	ID            uint          `json:"id"`
	UserID        uint          `json:"userId"`
	WorkID        uint          `json:"workId"`
	Amount        int64         `json:"amount"`
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	Pages         int           `json:"pages"`
	TransactionID string        `json:"transactionId"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Settings holds per-user editor preferences.
type Settings struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"userId"`
	Theme       string `json:"theme"`
	FontSize    int    `json:"fontSize"`
	AutoSave    bool   `json:"autoSave"`
	AutoCorrect bool   `json:"autoCorrect"`
}

// FileTree is the unsorted folder/file set of one work; callers build
// the hierarchy from ParentID.
type FileTree struct {
	Files   []File   `json:"files"`
	Folders []Folder `json:"folders"`
}
