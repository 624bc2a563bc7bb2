package store

import (
	"didactax/pkg/domain"
)

// Store defines persistence operations over the six durable collections.
//
// All operations share the same contract: Create* assigns the record ID
// and returns it; Get* reports absence via its ok result and never as an
// error; Update* shallow-merges a partial column set and returns
// ErrNotFound for a missing ID; Delete* is idempotent. Listing methods
// return unsorted results; callers sort.
//
// Structural deletes go through the cascade methods, which remove all
// dependents child-first inside a single transaction and are safe to
// re-run.
type Store interface {
	// users
	CreateUser(domain.User) (uint, error)
	GetUser(id uint) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	HasUserEmail(email string) (bool, error)
	UpdateUser(id uint, fields map[string]any) error

	// works
	CreateWork(domain.Work) (uint, error)
	GetWork(id uint) (domain.Work, bool, error)
	ListWorksByUser(userID uint) ([]domain.Work, error)
	UpdateWork(id uint, fields map[string]any) error
	DeleteWorkCascade(id uint) error

	// folders
	CreateFolder(domain.Folder) (uint, error)
	GetFolder(id uint) (domain.Folder, bool, error)
	ListFoldersByWork(workID uint) ([]domain.Folder, error)
	ListFoldersByParent(workID uint, parentID *uint) ([]domain.Folder, error)
	UpdateFolder(id uint, fields map[string]any) error
	MoveFolder(id uint, parentID *uint) error
	ReorderFolders(workID uint, parentID *uint, orderedIDs []uint) error
	DeleteFolderCascade(id uint) error

	// files
	CreateFile(domain.File) (uint, error)
	GetFile(id uint) (domain.File, bool, error)
	ListFilesByWork(workID uint) ([]domain.File, error)
	ListFilesByParent(workID uint, parentID *uint) ([]domain.File, error)
	UpdateFile(id uint, fields map[string]any) error
	MoveFile(id uint, parentID *uint) error
	ReorderFiles(workID uint, parentID *uint, orderedIDs []uint) error
	DeleteFileCascade(id uint) error

	// inputs
	CreateInput(domain.Input) (uint, error)
	GetInput(id uint) (domain.Input, bool, error)
	ListInputsByFile(fileID uint) ([]domain.Input, error)
	UpdateInput(id uint, fields map[string]any) error
	ReorderInputs(fileID uint, pageNum *int, orderedIDs []uint) error
	DeleteInput(id uint) error

	// payments
	CreatePayment(domain.Payment) (uint, error)
	ListPaymentsByUser(userID uint) ([]domain.Payment, error)
	HasCompletedPayment(userID, workID uint) (bool, error)

	// settings
	GetSettingsByUser(userID uint) (domain.Settings, bool, error)
	SaveSettings(domain.Settings) (uint, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID uint) (string, error)
	GetUserIDByToken(token string) (uint, bool, error)
	DeleteSession(token string) error
}
