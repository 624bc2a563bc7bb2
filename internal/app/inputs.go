package app

import (
	"sort"

	"didactax/pkg/domain"
)

// FileInputs returns a file's inputs sorted by page, then intra-page order.
func (a *App) FileInputs(fileID uint) ([]domain.Input, error) {
	inputs, err := a.store.ListInputsByFile(fileID)
	if err != nil {
		return nil, err
	}
	sortInputs(inputs)
	return inputs, nil
}

// AddInput appends a new input at the end of its sibling scope (the
// page for book files, the whole file otherwise). Existing orders are
// never renumbered on insert.
func (a *App) AddInput(fileID uint, pageNum *int, section, label string, inputType domain.InputType) (domain.Input, error) {
	inputs, err := a.store.ListInputsByFile(fileID)
	if err != nil {
		return domain.Input{}, err
	}
	orders := make([]int, 0, len(inputs))
	for _, in := range inputs {
		if samePage(in.PageNum, pageNum) {
			orders = append(orders, in.Order)
		}
	}
	id, err := a.store.CreateInput(domain.Input{
		FileID:  fileID,
		Section: section,
		Label:   label,
		Value:   "",
		Order:   nextOrder(orders),
		Type:    inputType,
		PageNum: pageNum,
	})
	if err != nil {
		return domain.Input{}, err
	}
	input, _, err := a.store.GetInput(id)
	return input, err
}

// UpdateInputValue persists one field edit.
func (a *App) UpdateInputValue(inputID uint, value string) error {
	return a.store.UpdateInput(inputID, map[string]any{"value": value})
}

// UpdateInputLabel renames one form field.
func (a *App) UpdateInputLabel(inputID uint, label string) error {
	return a.store.UpdateInput(inputID, map[string]any{"label": label})
}

// DeleteInput removes an input without compacting sibling orders;
// renumbering only happens through ReorderInputs.
func (a *App) DeleteInput(inputID uint) error {
	return a.store.DeleteInput(inputID)
}

// ReorderInputs renumbers the inputs of one page scope to 0..n-1.
func (a *App) ReorderInputs(fileID uint, pageNum *int, orderedIDs []uint) error {
	return a.store.ReorderInputs(fileID, pageNum, orderedIDs)
}

// PageNumbers returns the current page set of a file.
func (a *App) PageNumbers(fileID uint) ([]int, error) {
	inputs, err := a.store.ListInputsByFile(fileID)
	if err != nil {
		return nil, err
	}
	return ComputePageNumbers(inputs), nil
}

// ComputePageNumbers derives the page list of a book file: the sorted
// distinct pageNum values of its inputs. Pages are never stored as
// rows, so this is recomputed after every input change. Inputs without
// a page count as page 1.
func ComputePageNumbers(inputs []domain.Input) []int {
	seen := make(map[int]bool, len(inputs))
	pages := make([]int, 0, len(inputs))
	for _, in := range inputs {
		page := pageOf(in)
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)
	return pages
}

// ClampPage maps a requested page onto the nearest existing one, so
// navigating past either end of the book stays on a valid page.
func ClampPage(pages []int, want int) int {
	if len(pages) == 0 {
		return 1
	}
	nearest := pages[0]
	for _, p := range pages {
		if abs(p-want) < abs(nearest-want) {
			nearest = p
		}
	}
	return nearest
}

func samePage(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
