package app

import (
	"sort"
	"strings"

	"didactax/pkg/domain"
	"didactax/pkg/store"
)

const fileExtension = ".docx"

// singleSections is the form template seeded into every single-page file.
var singleSections = []struct {
	Section string
	Label   string
	Type    domain.InputType
}{
	{"title", "Title", domain.InputText},
	{"objective", "Objective", domain.InputTextarea},
	{"keywords", "Keywords", domain.InputTextarea},
	{"keyConcepts", "Key Concepts", domain.InputTextarea},
	{"vocabulary", "Other Words (Vocabulary)", domain.InputTextarea},
	{"examples", "Examples", domain.InputTextarea},
	{"questions", "Questions", domain.InputTextarea},
	{"summary", "Summary", domain.InputTextarea},
	{"practice", "Practice / Action", domain.InputTextarea},
	{"references", "References", domain.InputTextarea},
}

// LoadFileTree returns all files and folders of a work, unsorted; the
// caller builds the hierarchy from parent references.
func (a *App) LoadFileTree(userID, workID uint) (domain.FileTree, error) {
	if _, err := a.WorkForUser(userID, workID); err != nil {
		return domain.FileTree{}, err
	}
	files, err := a.store.ListFilesByWork(workID)
	if err != nil {
		return domain.FileTree{}, err
	}
	folders, err := a.store.ListFoldersByWork(workID)
	if err != nil {
		return domain.FileTree{}, err
	}
	return domain.FileTree{Files: files, Folders: folders}, nil
}

// FolderForUser loads a folder and checks that its work belongs to the user.
func (a *App) FolderForUser(userID, folderID uint) (domain.Folder, error) {
	folder, ok, err := a.store.GetFolder(folderID)
	if err != nil {
		return domain.Folder{}, err
	}
	if !ok {
		return domain.Folder{}, store.ErrNotFound
	}
	if _, err := a.WorkForUser(userID, folder.WorkID); err != nil {
		return domain.Folder{}, err
	}
	return folder, nil
}

// FileForUser loads a file and checks that its work belongs to the user.
func (a *App) FileForUser(userID, fileID uint) (domain.File, error) {
	file, ok, err := a.store.GetFile(fileID)
	if err != nil {
		return domain.File{}, err
	}
	if !ok {
		return domain.File{}, store.ErrNotFound
	}
	if _, err := a.WorkForUser(userID, file.WorkID); err != nil {
		return domain.File{}, err
	}
	return file, nil
}

// InputForUser loads an input and checks ownership through its file.
func (a *App) InputForUser(userID, inputID uint) (domain.Input, error) {
	input, ok, err := a.store.GetInput(inputID)
	if err != nil {
		return domain.Input{}, err
	}
	if !ok {
		return domain.Input{}, store.ErrNotFound
	}
	if _, err := a.FileForUser(userID, input.FileID); err != nil {
		return domain.Input{}, err
	}
	return input, nil
}

// CreateFolder appends a folder at the end of its sibling scope.
func (a *App) CreateFolder(userID, workID uint, parentID *uint, name string) (domain.Folder, error) {
	if _, err := a.WorkForUser(userID, workID); err != nil {
		return domain.Folder{}, err
	}
	siblings, err := a.store.ListFoldersByParent(workID, parentID)
	if err != nil {
		return domain.Folder{}, err
	}
	id, err := a.store.CreateFolder(domain.Folder{
		WorkID:   workID,
		Name:     name,
		ParentID: parentID,
		Order:    nextOrder(folderOrders(siblings)),
	})
	if err != nil {
		return domain.Folder{}, err
	}
	folder, _, err := a.store.GetFolder(id)
	return folder, err
}

// RenameFolder is a single O(1) update; children keep referencing the
// folder by ID.
func (a *App) RenameFolder(folderID uint, name string) error {
	return a.store.UpdateFolder(folderID, map[string]any{"name": name})
}

// MoveFolder reparents a folder within its work.
func (a *App) MoveFolder(folderID uint, parentID *uint) error {
	return a.store.MoveFolder(folderID, parentID)
}

// ReorderFolders renumbers one sibling scope to the given order.
func (a *App) ReorderFolders(workID uint, parentID *uint, orderedIDs []uint) error {
	return a.store.ReorderFolders(workID, parentID, orderedIDs)
}

// DeleteFolder removes the folder subtree with all contained files and
// their inputs.
func (a *App) DeleteFolder(folderID uint) error {
	return a.store.DeleteFolderCascade(folderID)
}

// CreateFile creates a file and seeds its input form: the section
// template for single files, per-page inputs for books.
func (a *App) CreateFile(userID, workID uint, parentID *uint, name string, fileType domain.WorkType, pageCount int) (domain.File, error) {
	if _, err := a.WorkForUser(userID, workID); err != nil {
		return domain.File{}, err
	}
	if pageCount < 1 {
		pageCount = 1
	}
	siblings, err := a.store.ListFilesByParent(workID, parentID)
	if err != nil {
		return domain.File{}, err
	}
	if !strings.HasSuffix(name, fileExtension) {
		name += fileExtension
	}
	id, err := a.store.CreateFile(domain.File{
		WorkID:    workID,
		Name:      name,
		Type:      fileType,
		Content:   "",
		Order:     nextOrder(fileOrders(siblings)),
		ParentID:  parentID,
		Extension: fileExtension,
	})
	if err != nil {
		return domain.File{}, err
	}
	if fileType == domain.TypeBook {
		err = a.seedBookInputs(id, pageCount)
	} else {
		err = a.seedSingleInputs(id)
	}
	if err != nil {
		return domain.File{}, err
	}
	file, _, err := a.store.GetFile(id)
	return file, err
}

func (a *App) seedSingleInputs(fileID uint) error {
	for i, section := range singleSections {
		_, err := a.store.CreateInput(domain.Input{
			FileID:  fileID,
			Section: section.Section,
			Label:   section.Label,
			Value:   "",
			Order:   i,
			Type:    section.Type,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// seedBookInputs creates the per-page form: page 1 opens with a page
// title, the last page (of a multi-page book) closes with a summary,
// and every page carries one rich-text body.
func (a *App) seedBookInputs(fileID uint, pageCount int) error {
	for page := 1; page <= pageCount; page++ {
		pageNum := page
		if page == 1 {
			_, err := a.store.CreateInput(domain.Input{
				FileID:  fileID,
				Section: "pageTitle",
				Label:   "Page Title",
				Order:   0,
				Type:    domain.InputText,
				PageNum: &pageNum,
			})
			if err != nil {
				return err
			}
		}
		if page == pageCount && pageCount > 1 {
			_, err := a.store.CreateInput(domain.Input{
				FileID:  fileID,
				Section: "pageSummary",
				Label:   "Page Summary",
				Order:   0,
				Type:    domain.InputTextarea,
				PageNum: &pageNum,
			})
			if err != nil {
				return err
			}
		}
		_, err := a.store.CreateInput(domain.Input{
			FileID:  fileID,
			Section: "body",
			Label:   "Body Content",
			Order:   1,
			Type:    domain.InputRichtext,
			PageNum: &pageNum,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RenameFile is a single O(1) update.
func (a *App) RenameFile(fileID uint, name string) error {
	return a.store.UpdateFile(fileID, map[string]any{"name": name})
}

// MoveFile places a file into a folder, or at the work root.
func (a *App) MoveFile(fileID uint, parentID *uint) error {
	return a.store.MoveFile(fileID, parentID)
}

// ReorderFiles renumbers one sibling scope to the given order.
func (a *App) ReorderFiles(workID uint, parentID *uint, orderedIDs []uint) error {
	return a.store.ReorderFiles(workID, parentID, orderedIDs)
}

// DeleteFile removes the file and all its inputs.
func (a *App) DeleteFile(fileID uint) error {
	return a.store.DeleteFileCascade(fileID)
}

func nextOrder(orders []int) int {
	next := 0
	for _, o := range orders {
		if o >= next {
			next = o + 1
		}
	}
	return next
}

func folderOrders(folders []domain.Folder) []int {
	orders := make([]int, len(folders))
	for i, f := range folders {
		orders[i] = f.Order
	}
	return orders
}

func fileOrders(files []domain.File) []int {
	orders := make([]int, len(files))
	for i, f := range files {
		orders[i] = f.Order
	}
	return orders
}

// sortInputs orders inputs by page then intra-page order for rendering.
func sortInputs(inputs []domain.Input) {
	sort.SliceStable(inputs, func(i, j int) bool {
		pi, pj := pageOf(inputs[i]), pageOf(inputs[j])
		if pi != pj {
			return pi < pj
		}
		return inputs[i].Order < inputs[j].Order
	})
}

func pageOf(in domain.Input) int {
	if in.PageNum == nil {
		return 1
	}
	return *in.PageNum
}
