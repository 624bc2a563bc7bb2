package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"didactax/pkg/domain"
)

// GormStore implements Store using GORM over an embedded SQLite database.
//
// SQLite enforces no foreign keys here, so referential integrity is
// maintained by this layer: parent references are validated on create
// and move, and structural deletes cascade child-first inside a single
// transaction. Every cascade is idempotent so re-running one after an
// interruption heals any orphaned rows.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (or creates) the database file and runs auto-migrations.
func NewGormStore(path string) (*GormStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path required")
	}
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{}, &WorkModel{}, &FolderModel{},
		&FileModel{}, &InputModel{}, &PaymentModel{}, &SettingsModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateUser registers a user and returns the assigned ID.
func (s *GormStore) CreateUser(u domain.User) (uint, error) {
	if strings.TrimSpace(u.Email) == "" {
		return 0, fmt.Errorf("%w: email required", ErrValidation)
	}
	model := userToModel(u)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (s *GormStore) GetUser(id uint) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) UpdateUser(id uint, fields map[string]any) error {
	return s.partialUpdate(&UserModel{}, id, fields)
}

// CreateWork stores a new work and returns the assigned ID.
func (s *GormStore) CreateWork(w domain.Work) (uint, error) {
	if strings.TrimSpace(w.Title) == "" {
		return 0, fmt.Errorf("%w: title required", ErrValidation)
	}
	if !w.Type.IsValid() {
		return 0, fmt.Errorf("%w: unknown work type %q", ErrValidation, w.Type)
	}
	if err := s.requireRow(&UserModel{}, w.UserID, "user"); err != nil {
		return 0, err
	}
	model := workToModel(w)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (s *GormStore) GetWork(id uint) (domain.Work, bool, error) {
	var model WorkModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Work{}, false, nil
		}
		return domain.Work{}, false, err
	}
	return workFromModel(model), true, nil
}

func (s *GormStore) ListWorksByUser(userID uint) ([]domain.Work, error) {
	var models []WorkModel
	if err := s.db.Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Work, 0, len(models))
	for _, m := range models {
		res = append(res, workFromModel(m))
	}
	return res, nil
}

func (s *GormStore) UpdateWork(id uint, fields map[string]any) error {
	return s.partialUpdate(&WorkModel{}, id, fields)
}

// DeleteWorkCascade removes a work with all its folders, files and
// inputs. Payments referencing the work are kept as audit records.
// Deleting an absent work is a no-op.
func (s *GormStore) DeleteWorkCascade(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var fileIDs []uint
		if err := tx.Model(&FileModel{}).Where("work_id = ?", id).Pluck("id", &fileIDs).Error; err != nil {
			return err
		}
		if len(fileIDs) > 0 {
			if err := tx.Delete(&InputModel{}, "file_id IN ?", fileIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&FileModel{}, "work_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&FolderModel{}, "work_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&WorkModel{}, "id = ?", id).Error
	})
}

// CreateFolder validates the parent reference and stores a new folder.
func (s *GormStore) CreateFolder(f domain.Folder) (uint, error) {
	if strings.TrimSpace(f.Name) == "" {
		return 0, fmt.Errorf("%w: folder name required", ErrValidation)
	}
	if err := s.requireRow(&WorkModel{}, f.WorkID, "work"); err != nil {
		return 0, err
	}
	if f.ParentID != nil {
		if err := s.checkFolderParent(s.db, f.WorkID, *f.ParentID); err != nil {
			return 0, err
		}
	}
	model := folderToModel(f)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (s *GormStore) GetFolder(id uint) (domain.Folder, bool, error) {
	var model FolderModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Folder{}, false, nil
		}
		return domain.Folder{}, false, err
	}
	return folderFromModel(model), true, nil
}

func (s *GormStore) ListFoldersByWork(workID uint) ([]domain.Folder, error) {
	var models []FolderModel
	if err := s.db.Where("work_id = ?", workID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Folder, 0, len(models))
	for _, m := range models {
		res = append(res, folderFromModel(m))
	}
	return res, nil
}

func (s *GormStore) ListFoldersByParent(workID uint, parentID *uint) ([]domain.Folder, error) {
	var models []FolderModel
	if err := scopeParent(s.db.Where("work_id = ?", workID), parentID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Folder, 0, len(models))
	for _, m := range models {
		res = append(res, folderFromModel(m))
	}
	return res, nil
}

func (s *GormStore) UpdateFolder(id uint, fields map[string]any) error {
	return s.partialUpdate(&FolderModel{}, id, fields)
}

// MoveFolder reparents a folder after validating the target: it must
// exist in the same work and must not be the folder itself or one of
// its descendants.
func (s *GormStore) MoveFolder(id uint, parentID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var folder FolderModel
		if err := tx.First(&folder, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if parentID != nil {
			if *parentID == id {
				return fmt.Errorf("%w: folder cannot be its own parent", ErrIntegrity)
			}
			if err := s.checkFolderParent(tx, folder.WorkID, *parentID); err != nil {
				return err
			}
			if err := s.checkNoCycle(tx, id, *parentID); err != nil {
				return err
			}
		}
		return tx.Model(&FolderModel{}).Where("id = ?", id).Update("parent_id", parentID).Error
	})
}

func (s *GormStore) ReorderFolders(workID uint, parentID *uint, orderedIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var got []uint
		if err := scopeParent(tx.Model(&FolderModel{}).Where("work_id = ?", workID), parentID).
			Pluck("id", &got).Error; err != nil {
			return err
		}
		if err := checkPermutation(got, orderedIDs); err != nil {
			return err
		}
		for i, folderID := range orderedIDs {
			if err := tx.Model(&FolderModel{}).Where("id = ?", folderID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteFolderCascade removes a folder together with its whole subtree:
// nested folders, their files, and every input of those files.
func (s *GormStore) DeleteFolderCascade(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var root FolderModel
		if err := tx.First(&root, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		// Breadth-first walk; folderIDs ends up ordered parents-first.
		folderIDs := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&FolderModel{}).Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			folderIDs = append(folderIDs, children...)
			frontier = children
		}

		var fileIDs []uint
		if err := tx.Model(&FileModel{}).Where("parent_id IN ?", folderIDs).
			Pluck("id", &fileIDs).Error; err != nil {
			return err
		}
		if len(fileIDs) > 0 {
			if err := tx.Delete(&InputModel{}, "file_id IN ?", fileIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&FileModel{}, "id IN ?", fileIDs).Error; err != nil {
				return err
			}
		}
		// Children before parents.
		for i := len(folderIDs) - 1; i >= 0; i-- {
			if err := tx.Delete(&FolderModel{}, "id = ?", folderIDs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateFile validates the parent reference and stores a new file.
func (s *GormStore) CreateFile(f domain.File) (uint, error) {
	if strings.TrimSpace(f.Name) == "" {
		return 0, fmt.Errorf("%w: file name required", ErrValidation)
	}
	if !f.Type.IsValid() {
		return 0, fmt.Errorf("%w: unknown file type %q", ErrValidation, f.Type)
	}
	if err := s.requireRow(&WorkModel{}, f.WorkID, "work"); err != nil {
		return 0, err
	}
	if f.ParentID != nil {
		if err := s.checkFolderParent(s.db, f.WorkID, *f.ParentID); err != nil {
			return 0, err
		}
	}
	model := fileToModel(f)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (s *GormStore) GetFile(id uint) (domain.File, bool, error) {
	var model FileModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.File{}, false, nil
		}
		return domain.File{}, false, err
	}
	return fileFromModel(model), true, nil
}

func (s *GormStore) ListFilesByWork(workID uint) ([]domain.File, error) {
	var models []FileModel
	if err := s.db.Where("work_id = ?", workID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.File, 0, len(models))
	for _, m := range models {
		res = append(res, fileFromModel(m))
	}
	return res, nil
}

func (s *GormStore) ListFilesByParent(workID uint, parentID *uint) ([]domain.File, error) {
	var models []FileModel
	if err := scopeParent(s.db.Where("work_id = ?", workID), parentID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.File, 0, len(models))
	for _, m := range models {
		res = append(res, fileFromModel(m))
	}
	return res, nil
}

func (s *GormStore) UpdateFile(id uint, fields map[string]any) error {
	return s.partialUpdate(&FileModel{}, id, fields)
}

// MoveFile puts a file into a folder of the same work, or at the work
// root when parentID is nil.
func (s *GormStore) MoveFile(id uint, parentID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var file FileModel
		if err := tx.First(&file, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if parentID != nil {
			if err := s.checkFolderParent(tx, file.WorkID, *parentID); err != nil {
				return err
			}
		}
		return tx.Model(&FileModel{}).Where("id = ?", id).Update("parent_id", parentID).Error
	})
}

func (s *GormStore) ReorderFiles(workID uint, parentID *uint, orderedIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var got []uint
		if err := scopeParent(tx.Model(&FileModel{}).Where("work_id = ?", workID), parentID).
			Pluck("id", &got).Error; err != nil {
			return err
		}
		if err := checkPermutation(got, orderedIDs); err != nil {
			return err
		}
		for i, fileID := range orderedIDs {
			if err := tx.Model(&FileModel{}).Where("id = ?", fileID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteFileCascade removes a file and all its inputs. Absent file is a no-op.
func (s *GormStore) DeleteFileCascade(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&InputModel{}, "file_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&FileModel{}, "id = ?", id).Error
	})
}

// CreateInput stores a new form input for an existing file.
func (s *GormStore) CreateInput(in domain.Input) (uint, error) {
	if err := s.requireRow(&FileModel{}, in.FileID, "file"); err != nil {
		return 0, err
	}
	model := inputToModel(in)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (s *GormStore) GetInput(id uint) (domain.Input, bool, error) {
	var model InputModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Input{}, false, nil
		}
		return domain.Input{}, false, err
	}
	return inputFromModel(model), true, nil
}

func (s *GormStore) ListInputsByFile(fileID uint) ([]domain.Input, error) {
	var models []InputModel
	if err := s.db.Where("file_id = ?", fileID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Input, 0, len(models))
	for _, m := range models {
		res = append(res, inputFromModel(m))
	}
	return res, nil
}

func (s *GormStore) UpdateInput(id uint, fields map[string]any) error {
	return s.partialUpdate(&InputModel{}, id, fields)
}

// ReorderInputs renumbers the inputs of one sibling scope (a file page,
// or the whole file when pageNum is nil) to the given order. After it
// returns, sort orders in the scope are exactly 0..len-1.
func (s *GormStore) ReorderInputs(fileID uint, pageNum *int, orderedIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		scoped := tx.Model(&InputModel{}).Where("file_id = ?", fileID)
		if pageNum == nil {
			scoped = scoped.Where("page_num IS NULL")
		} else {
			scoped = scoped.Where("page_num = ?", *pageNum)
		}
		var got []uint
		if err := scoped.Pluck("id", &got).Error; err != nil {
			return err
		}
		if err := checkPermutation(got, orderedIDs); err != nil {
			return err
		}
		for i, inputID := range orderedIDs {
			if err := tx.Model(&InputModel{}).Where("id = ?", inputID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteInput removes one input. Sibling orders are left untouched;
// compaction only happens on an explicit reorder.
func (s *GormStore) DeleteInput(id uint) error {
	return s.db.Delete(&InputModel{}, "id = ?", id).Error
}

// CreatePayment records a payment and returns the assigned ID.
func (s *GormStore) CreatePayment(p domain.Payment) (uint, error) {
	if err := s.requireRow(&UserModel{}, p.UserID, "user"); err != nil {
		return 0, err
	}
	model := paymentToModel(p)
	model.ID = 0
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func (s *GormStore) ListPaymentsByUser(userID uint) ([]domain.Payment, error) {
	var models []PaymentModel
	if err := s.db.Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Payment, 0, len(models))
	for _, m := range models {
		res = append(res, paymentFromModel(m))
	}
	return res, nil
}

// HasCompletedPayment reports whether at least one completed payment
// exists for the user/work pair. Any other status does not count.
func (s *GormStore) HasCompletedPayment(userID, workID uint) (bool, error) {
	var count int64
	err := s.db.Model(&PaymentModel{}).
		Where("user_id = ? AND work_id = ? AND status = ?", userID, workID, string(domain.PaymentCompleted)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) GetSettingsByUser(userID uint) (domain.Settings, bool, error) {
	var model SettingsModel
	if err := s.db.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Settings{}, false, nil
		}
		return domain.Settings{}, false, err
	}
	return settingsFromModel(model), true, nil
}

// SaveSettings upserts the per-user settings row.
func (s *GormStore) SaveSettings(settings domain.Settings) (uint, error) {
	model := settingsToModel(settings)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"theme", "font_size", "auto_save", "auto_correct"}),
	}).Create(&model).Error
	if err != nil {
		return 0, err
	}
	var saved SettingsModel
	if err := s.db.Where("user_id = ?", settings.UserID).First(&saved).Error; err != nil {
		return 0, err
	}
	return saved.ID, nil
}

// partialUpdate merges the given columns into an existing row, failing
// with ErrNotFound when the row does not exist.
func (s *GormStore) partialUpdate(model any, id uint, fields map[string]any) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(model).Where("id = ?", id).Updates(fields).Error
	})
}

// requireRow checks existence of a referenced parent row.
func (s *GormStore) requireRow(model any, id uint, kind string) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %d does not exist", ErrIntegrity, kind, id)
	}
	return nil
}

// checkFolderParent validates that a parent folder exists and belongs
// to the given work.
func (s *GormStore) checkFolderParent(tx *gorm.DB, workID, parentID uint) error {
	var parent FolderModel
	if err := tx.First(&parent, "id = ?", parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: parent folder %d does not exist", ErrIntegrity, parentID)
		}
		return err
	}
	if parent.WorkID != workID {
		return fmt.Errorf("%w: parent folder %d belongs to another work", ErrIntegrity, parentID)
	}
	return nil
}

// checkNoCycle walks up from newParent and fails if it reaches folderID.
func (s *GormStore) checkNoCycle(tx *gorm.DB, folderID, newParentID uint) error {
	current := newParentID
	for {
		var parent FolderModel
		if err := tx.First(&parent, "id = ?", current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if parent.ID == folderID {
			return fmt.Errorf("%w: move would create a folder cycle", ErrIntegrity)
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
}

// scopeParent narrows a query to one sibling scope.
func scopeParent(tx *gorm.DB, parentID *uint) *gorm.DB {
	if parentID == nil {
		return tx.Where("parent_id IS NULL")
	}
	return tx.Where("parent_id = ?", *parentID)
}

// checkPermutation verifies that want is a permutation of got, so a
// reorder always covers the whole sibling scope exactly once.
func checkPermutation(got, want []uint) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: reorder must list all %d siblings, got %d", ErrValidation, len(got), len(want))
	}
	seen := make(map[uint]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	dup := make(map[uint]bool, len(want))
	for _, id := range want {
		if !seen[id] {
			return fmt.Errorf("%w: id %d is not part of the sibling scope", ErrValidation, id)
		}
		if dup[id] {
			return fmt.Errorf("%w: id %d listed twice", ErrValidation, id)
		}
		dup[id] = true
	}
	return nil
}
