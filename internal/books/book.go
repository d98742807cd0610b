package books

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category is read-only from the client's perspective.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryOption is the {label, value} projection used by selection prompts.
type CategoryOption struct {
	Label string
	Value int64
}

// Book mirrors the backend book record. Category and the timestamps are
// server-derived and must never be sent back on update.
type Book struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	CategoryID  int64      `json:"categoryId"`
	Category    *Category  `json:"category,omitempty"`
	LikeCount   int        `json:"likeCount"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	Description string     `json:"description,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// CreateBookRequest is the body for POST /api/book.
type CreateBookRequest struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  int64   `json:"categoryId"`
	CoverURL    string  `json:"coverUrl,omitempty"`
	Description string  `json:"description,omitempty"`
	ISBN        string  `json:"isbn,omitempty"`
}

// EditDraft holds the fields of a book currently being edited. Price and
// stock are kept as entered text and only coerced to numbers when the draft
// is applied.
type EditDraft struct {
	Title       string
	Author      string
	Price       string
	Stock       string
	CategoryID  int64
	CoverURL    string
	Description string
	ISBN        string
}

// NewEditDraft seeds a draft from an existing book.
func NewEditDraft(b Book) EditDraft {
	return EditDraft{
		Title:       b.Title,
		Author:      b.Author,
		Price:       strconv.FormatFloat(b.Price, 'f', -1, 64),
		Stock:       strconv.Itoa(b.Stock),
		CategoryID:  b.CategoryID,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		ISBN:        b.ISBN,
	}
}

// Apply merges the draft into base, coercing price and stock to their
// numeric types. Empty draft fields keep the base value.
func (d EditDraft) Apply(base Book) (Book, error) {
	merged := base

	if d.Title != "" {
		merged.Title = d.Title
	}
	if d.Author != "" {
		merged.Author = d.Author
	}
	if d.CategoryID != 0 {
		merged.CategoryID = d.CategoryID
	}
	if d.CoverURL != "" {
		merged.CoverURL = d.CoverURL
	}
	if d.Description != "" {
		merged.Description = d.Description
	}
	if d.ISBN != "" {
		merged.ISBN = d.ISBN
	}

	if s := strings.TrimSpace(d.Price); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Book{}, fmt.Errorf("invalid price %q: %w", d.Price, err)
		}
		merged.Price = price
	}
	if s := strings.TrimSpace(d.Stock); s != "" {
		stock, err := strconv.Atoi(s)
		if err != nil {
			return Book{}, fmt.Errorf("invalid stock %q: %w", d.Stock, err)
		}
		merged.Stock = stock
	}

	return merged, nil
}

// UpdatePayload builds the PATCH body for a book. The identifier is routed
// into the URL by the caller, and the server-owned fields (category and the
// two timestamps) are stripped so they are never round-tripped.
func UpdatePayload(b Book) (map[string]any, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	delete(payload, "id")
	delete(payload, "category")
	delete(payload, "createdAt")
	delete(payload, "updatedAt")

	// Re-assert numeric types; the round trip above already yields JSON
	// numbers, but the payload must hold them even when a draft carried text.
	payload["price"] = b.Price
	payload["stock"] = b.Stock

	return payload, nil
}

// CategoryOptions projects categories into prompt options.
func CategoryOptions(categories []Category) []CategoryOption {
	options := make([]CategoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, CategoryOption{Label: c.Name, Value: c.ID})
	}
	return options
}
