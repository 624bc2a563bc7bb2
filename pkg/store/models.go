package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"didactax/pkg/domain"
)

// GORM models used for persistence. Primary keys use SQLite
// AUTOINCREMENT so IDs grow monotonically and are never reused.
type UserModel struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	Streak       int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
	LastLogin    time.Time
}

type WorkModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    uint   `gorm:"not null;index"`
	Type      string `gorm:"not null"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text"`
	Metadata  datatypes.JSON
	PageCount int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type FolderModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	WorkID   uint   `gorm:"not null;index"`
	Name     string `gorm:"not null"`
	ParentID *uint  `gorm:"index"`
	Order    int    `gorm:"column:sort_order;not null;default:0"`
}

type FileModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	WorkID    uint   `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	Type      string `gorm:"not null"`
	Content   string `gorm:"type:text"`
	Order     int    `gorm:"column:sort_order;not null;default:0"`
	ParentID  *uint  `gorm:"index"`
	Extension string
}

type InputModel struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	FileID  uint   `gorm:"not null;index"`
	Section string `gorm:"not null"`
	Label   string
	Value   string `gorm:"type:text"`
	Order   int    `gorm:"column:sort_order;not null;default:0"`
	Type    string `gorm:"not null"`
	PageNum *int
}

type PaymentModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	UserID        uint   `gorm:"not null;index"`
	WorkID        uint   `gorm:"not null;index"`
	Amount        int64  `gorm:"not null"`
	Method        string `gorm:"not null"`
	Status        string `gorm:"not null;index"`
	Pages         int    `gorm:"not null"`
	TransactionID string
	CreatedAt     time.Time `gorm:"not null"`
}

type SettingsModel struct {
	ID          uint `gorm:"primaryKey;autoIncrement"`
	UserID      uint `gorm:"not null;uniqueIndex"`
	Theme       string
	FontSize    int
	AutoSave    bool
	AutoCorrect bool
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Streak:       u.Streak,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Streak:       m.Streak,
		CreatedAt:    m.CreatedAt,
		LastLogin:    m.LastLogin,
	}
}

func workToModel(w domain.Work) WorkModel {
	meta, _ := json.Marshal(w.Metadata)
	return WorkModel{
		ID:        w.ID,
		UserID:    w.UserID,
		Type:      string(w.Type),
		Title:     w.Title,
		Content:   w.Content,
		Metadata:  meta,
		PageCount: w.PageCount,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func workFromModel(m WorkModel) domain.Work {
	var meta map[string]any
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.Work{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      domain.WorkType(m.Type),
		Title:     m.Title,
		Content:   m.Content,
		Metadata:  meta,
		PageCount: m.PageCount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func folderToModel(f domain.Folder) FolderModel {
	return FolderModel{
		ID:       f.ID,
		WorkID:   f.WorkID,
		Name:     f.Name,
		ParentID: f.ParentID,
		Order:    f.Order,
	}
}

func folderFromModel(m FolderModel) domain.Folder {
	return domain.Folder{
		ID:       m.ID,
		WorkID:   m.WorkID,
		Name:     m.Name,
		ParentID: m.ParentID,
		Order:    m.Order,
	}
}

func fileToModel(f domain.File) FileModel {
	return FileModel{
		ID:        f.ID,
		WorkID:    f.WorkID,
		Name:      f.Name,
		Type:      string(f.Type),
		Content:   f.Content,
		Order:     f.Order,
		ParentID:  f.ParentID,
		Extension: f.Extension,
	}
}

func fileFromModel(m FileModel) domain.File {
	return domain.File{
		ID:        m.ID,
		WorkID:    m.WorkID,
		Name:      m.Name,
		Type:      domain.WorkType(m.Type),
		Content:   m.Content,
		Order:     m.Order,
		ParentID:  m.ParentID,
		Extension: m.Extension,
	}
}

func inputToModel(in domain.Input) InputModel {
	return InputModel{
		ID:      in.ID,
		FileID:  in.FileID,
		Section: in.Section,
		Label:   in.Label,
		Value:   in.Value,
		Order:   in.Order,
		Type:    string(in.Type),
		PageNum: in.PageNum,
	}
}

func inputFromModel(m InputModel) domain.Input {
	return domain.Input{
		ID:      m.ID,
		FileID:  m.FileID,
		Section: m.Section,
		Label:   m.Label,
		Value:   m.Value,
		Order:   m.Order,
		Type:    domain.InputType(m.Type),
		PageNum: m.PageNum,
	}
}

func paymentToModel(p domain.Payment) PaymentModel {
	return PaymentModel{
		ID:            p.ID,
		UserID:        p.UserID,
		WorkID:        p.WorkID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        string(p.Status),
		Pages:         p.Pages,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}

func paymentFromModel(m PaymentModel) domain.Payment {
	return domain.Payment{
		ID:            m.ID,
		UserID:        m.UserID,
		WorkID:        m.WorkID,
		Amount:        m.Amount,
		Method:        m.Method,
		Status:        domain.PaymentStatus(m.Status),
		Pages:         m.Pages,
		TransactionID: m.TransactionID,
		CreatedAt:     m.CreatedAt,
	}
}

func settingsToModel(s domain.Settings) SettingsModel {
	return SettingsModel{
		ID:          s.ID,
		UserID:      s.UserID,
		Theme:       s.Theme,
		FontSize:    s.FontSize,
		AutoSave:    s.AutoSave,
		AutoCorrect: s.AutoCorrect,
	}
}

func settingsFromModel(m SettingsModel) domain.Settings {
	return domain.Settings{
		ID:          m.ID,
		UserID:      m.UserID,
		Theme:       m.Theme,
		FontSize:    m.FontSize,
		AutoSave:    m.AutoSave,
		AutoCorrect: m.AutoCorrect,
	}
}
