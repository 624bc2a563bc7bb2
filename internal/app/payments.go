package app

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"didactax/pkg/domain"
	"didactax/pkg/paging"
)

const (
	wordsPerPage  = 250
	basePrice     = 500
	baseTierPages = 250
	extendedBase  = 1000
	perExtraPage  = 2
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Quote estimates the printable page count of a work from its total
// word count and prices the download: a flat base price up to 250
// pages, then a higher base plus a per-page rate.
func (a *App) Quote(userID, workID uint) (pages int, amount int64, err error) {
	if _, err := a.WorkForUser(userID, workID); err != nil {
		return 0, 0, err
	}
	files, err := a.store.ListFilesByWork(workID)
	if err != nil {
		return 0, 0, err
	}
	words := 0
	for _, file := range files {
		inputs, err := a.store.ListInputsByFile(file.ID)
		if err != nil {
			return 0, 0, err
		}
		for _, in := range inputs {
			words += countWords(in.Value)
		}
	}
	pages = (words + wordsPerPage - 1) / wordsPerPage
	if pages < 1 {
		pages = 1
	}
	amount = basePrice
	if pages > baseTierPages {
		amount = extendedBase + int64(pages-baseTierPages)*perExtraPage
	}
	return pages, amount, nil
}

// RecordPayment stores a completed payment for a work, quoting the
// amount from its current content. A missing transaction reference is
// filled with a generated one.
func (a *App) RecordPayment(userID, workID uint, method, transactionID string) (domain.Payment, error) {
	pages, amount, err := a.Quote(userID, workID)
	if err != nil {
		return domain.Payment{}, err
	}
	if strings.TrimSpace(transactionID) == "" {
		transactionID = uuid.NewString()
	}
	payment := domain.Payment{
		UserID:        userID,
		WorkID:        workID,
		Amount:        amount,
		Method:        method,
		Status:        domain.PaymentCompleted,
		Pages:         pages,
		TransactionID: transactionID,
		CreatedAt:     a.now(),
	}
	id, err := a.store.CreatePayment(payment)
	if err != nil {
		return domain.Payment{}, err
	}
	payment.ID = id
	return payment, nil
}

// PaymentStatus reports whether the work is unlocked for download:
// true iff a completed payment exists for the user/work pair.
func (a *App) PaymentStatus(userID, workID uint) (bool, error) {
	return a.store.HasCompletedPayment(userID, workID)
}

// Payments lists the user's payment history, most recent first.
func (a *App) Payments(userID uint) ([]domain.Payment, error) {
	payments, err := a.store.ListPaymentsByUser(userID)
	if err != nil {
		return nil, err
	}
	return paging.SortBy(payments, func(x, y domain.Payment) bool {
		return x.CreatedAt.After(y.CreatedAt)
	}), nil
}

// countWords counts whitespace-separated words after stripping markup.
func countWords(value string) int {
	if value == "" {
		return 0
	}
	plain := htmlTagPattern.ReplaceAllString(value, " ")
	return len(strings.Fields(plain))
}
