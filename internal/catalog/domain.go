// internal/catalog/domain.go
package catalog

import (
	"strings"
	"time"

	"biblioteca/internal/apperr"
)

// Kind tags the variant payload of a catalog item.
type Kind string

const (
	KindBook       Kind = "BOOK"
	KindPeriodical Kind = "PERIODICAL"
	KindRecording  Kind = "RECORDING"
)

// ParseKind maps a wire value to a Kind, reporting whether it is known.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindBook:
		return KindBook, true
	case KindPeriodical:
		return KindPeriodical, true
	case KindRecording:
		return KindRecording, true
	}
	return "", false
}

// BookDetails is the variant payload of a book.
type BookDetails struct {
	Author    string `json:"author"`
	PageCount int    `json:"page_count"`
	ISBN      string `json:"isbn,omitempty"`
}

// PeriodicalDetails is the variant payload of a periodical.
type PeriodicalDetails struct {
	IssueNumber int    `json:"issue_number"`
	IssueDate   string `json:"issue_date"`
	Publisher   string `json:"publisher,omitempty"`
}

// RecordingDetails is the variant payload of a recording.
type RecordingDetails struct {
	Director        string `json:"director"`
	DurationMinutes int    `json:"duration_minutes"`
	Genre           string `json:"genre,omitempty"`
}

// Item is a catalog entry: a shared core plus exactly one variant
// payload selected by Kind. Code is the identity key, unique across the
// whole catalog regardless of variant. Borrowed is the only mutable
// shared field; the payload is immutable after creation.
type Item struct {
	Code       string             `json:"code"`
	Title      string             `json:"title"`
	Kind       Kind               `json:"kind"`
	Borrowed   bool               `json:"borrowed"`
	Book       *BookDetails       `json:"book,omitempty"`
	Periodical *PeriodicalDetails `json:"periodical,omitempty"`
	Recording  *RecordingDetails  `json:"recording,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ItemSpec is the flat input used to create an item; only the fields of
// the declared kind are consulted.
type ItemSpec struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Kind  string `json:"kind"`

	// Book
	Author    string `json:"author,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	ISBN      string `json:"isbn,omitempty"`

	// Periodical
	IssueNumber int    `json:"issue_number,omitempty"`
	IssueDate   string `json:"issue_date,omitempty"`
	Publisher   string `json:"publisher,omitempty"`

	// Recording
	Director        string `json:"director,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Genre           string `json:"genre,omitempty"`
}

// newItem validates the spec and builds an available item from it.
func newItem(spec ItemSpec) (*Item, error) {
	if strings.TrimSpace(spec.Code) == "" {
		return nil, apperr.Validation("code", "must not be empty")
	}
	if strings.TrimSpace(spec.Title) == "" {
		return nil, apperr.Validation("title", "must not be empty")
	}
	kind, ok := ParseKind(spec.Kind)
	if !ok {
		return nil, apperr.Validation("kind", "must be one of BOOK, PERIODICAL, RECORDING")
	}

	item := &Item{
		Code:      strings.TrimSpace(spec.Code),
		Title:     strings.TrimSpace(spec.Title),
		Kind:      kind,
		Borrowed:  false,
		CreatedAt: time.Now(),
	}

	switch kind {
	case KindBook:
		if strings.TrimSpace(spec.Author) == "" {
			return nil, apperr.Validation("author", "must not be empty")
		}
		if spec.PageCount <= 0 {
			return nil, apperr.Validation("page_count", "must be greater than zero")
		}
		item.Book = &BookDetails{
			Author:    strings.TrimSpace(spec.Author),
			PageCount: spec.PageCount,
			ISBN:      strings.TrimSpace(spec.ISBN),
		}
	case KindPeriodical:
		if spec.IssueNumber <= 0 {
			return nil, apperr.Validation("issue_number", "must be greater than zero")
		}
		if strings.TrimSpace(spec.IssueDate) == "" {
			return nil, apperr.Validation("issue_date", "must not be empty")
		}
		item.Periodical = &PeriodicalDetails{
			IssueNumber: spec.IssueNumber,
			IssueDate:   strings.TrimSpace(spec.IssueDate),
			Publisher:   strings.TrimSpace(spec.Publisher),
		}
	case KindRecording:
		if strings.TrimSpace(spec.Director) == "" {
			return nil, apperr.Validation("director", "must not be empty")
		}
		if spec.DurationMinutes <= 0 {
			return nil, apperr.Validation("duration_minutes", "must be greater than zero")
		}
		item.Recording = &RecordingDetails{
			Director:        strings.TrimSpace(spec.Director),
			DurationMinutes: spec.DurationMinutes,
			Genre:           strings.TrimSpace(spec.Genre),
		}
	}

	return item, nil
}

// Statistics summarizes the catalog for reporting.
type Statistics struct {
	Total     int          `json:"total"`
	Available int          `json:"available"`
	Borrowed  int          `json:"borrowed"`
	ByKind    map[Kind]int `json:"by_kind"`
}
