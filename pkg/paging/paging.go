// Package paging provides in-memory sort and page-slicing helpers for
// dashboard style listings.
package paging

import "sort"

// Page is one slice of a listing plus the total page count for it.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"totalPages"`
}

// SortBy stable-sorts a copy of items with the given less function and
// returns the copy; the input slice is left untouched.
func SortBy[T any](items []T, less func(a, b T) bool) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// Paginate slices items into 1-based pages of pageSize. A pageNumber
// past the end yields empty Items with the correct TotalPages; bad
// arguments clamp rather than fail.
func Paginate[T any](items []T, pageNumber, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	start := (pageNumber - 1) * pageSize
	if start >= len(items) {
		return Page[T]{Items: []T{}, TotalPages: totalPages}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{Items: items[start:end], TotalPages: totalPages}
}
