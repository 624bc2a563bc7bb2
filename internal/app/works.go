package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"didactax/pkg/domain"
	"didactax/pkg/paging"
	"didactax/pkg/store"
)

const defaultBookPages = 10

// CreateWork starts a new document project. The type is fixed for the
// lifetime of the work: single works always have one page, books
// default to ten when no count is given.
func (a *App) CreateWork(userID uint, workType domain.WorkType, title string, pageCount int) (domain.Work, error) {
	switch workType {
	case domain.TypeSingle:
		pageCount = 1
	case domain.TypeBook:
		if pageCount < 1 {
			pageCount = defaultBookPages
		}
	}
	now := a.now()
	id, err := a.store.CreateWork(domain.Work{
		UserID:    userID,
		Type:      workType,
		Title:     title,
		Content:   "",
		Metadata:  map[string]any{},
		PageCount: pageCount,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Work{}, err
	}
	work, _, err := a.store.GetWork(id)
	return work, err
}

// WorkForUser loads a work and checks ownership.
func (a *App) WorkForUser(userID, workID uint) (domain.Work, error) {
	work, ok, err := a.store.GetWork(workID)
	if err != nil {
		return domain.Work{}, err
	}
	if !ok {
		return domain.Work{}, store.ErrNotFound
	}
	if work.UserID != userID {
		return domain.Work{}, ErrNotOwner
	}
	return work, nil
}

// ListWorks returns one dashboard page of the user's works, most
// recently updated first (falling back to creation time).
func (a *App) ListWorks(userID uint, pageNumber int) (paging.Page[domain.Work], error) {
	works, err := a.store.ListWorksByUser(userID)
	if err != nil {
		return paging.Page[domain.Work]{}, err
	}
	sorted := paging.SortBy(works, func(x, y domain.Work) bool {
		return lastTouched(x).After(lastTouched(y))
	})
	return paging.Paginate(sorted, pageNumber, a.pageSize), nil
}

// UpdateWork merges title/content/metadata changes. The work type is
// immutable and cannot be changed here.
func (a *App) UpdateWork(userID, workID uint, title, content *string, metadata map[string]any) (domain.Work, error) {
	if _, err := a.WorkForUser(userID, workID); err != nil {
		return domain.Work{}, err
	}
	fields := map[string]any{}
	if title != nil {
		if *title == "" {
			return domain.Work{}, fmt.Errorf("%w: title required", store.ErrValidation)
		}
		fields["title"] = *title
	}
	if content != nil {
		fields["content"] = *content
	}
	if metadata != nil {
		meta, err := encodeMetadata(metadata)
		if err != nil {
			return domain.Work{}, err
		}
		fields["metadata"] = meta
	}
	if err := a.store.UpdateWork(workID, fields); err != nil {
		return domain.Work{}, err
	}
	work, _, err := a.store.GetWork(workID)
	return work, err
}

// SaveWork is the debounced auto-save hook: it touches the updatedAt
// timestamp and nothing else, so re-saving unchanged content is safe.
func (a *App) SaveWork(userID, workID uint) error {
	if _, err := a.WorkForUser(userID, workID); err != nil {
		return err
	}
	return a.store.UpdateWork(workID, map[string]any{"updated_at": a.now()})
}

// DeleteWork cascades through folders, files and inputs, then removes
// the work. Payments stay behind as audit records. Deleting twice is
// not an error.
func (a *App) DeleteWork(userID, workID uint) error {
	_, err := a.WorkForUser(userID, workID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return a.store.DeleteWorkCascade(workID)
}

func encodeMetadata(metadata map[string]any) ([]byte, error) {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata not serializable", store.ErrValidation)
	}
	return raw, nil
}

func lastTouched(w domain.Work) time.Time {
	if !w.UpdatedAt.IsZero() {
		return w.UpdatedAt
	}
	return w.CreatedAt
}
