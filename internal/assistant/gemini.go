// Package assistant relays free-text questions about a book to the Gemini
// generative endpoint.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bookhub/internal/books"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	modelID        = "gemini-2.5-flash"

	// Free-tier quota is tight, keep well under it.
	rateLimit = 1
	rateBurst = 2

	defaultQuestion = "Provide additional details and a short summary."
)

// ErrMissingAPIKey is returned before any network call when no key is
// configured.
var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")

// Error is a failed assistant exchange: a non-success response or an empty
// answer body.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini API error: %s", e.Message)
}

// Client talks to the generative endpoint. It is independent of the
// bookstore REST client and carries its key as a query parameter.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates an assistant client. An empty key is allowed here so
// callers can still probe HasKey; Ask fails before dialing out.
func NewClient(apiKey string) *Client {
	return newClient(apiKey, defaultBaseURL)
}

func newClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HasKey reports whether the assistant feature can be offered at all.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// bookContext is the compact projection of a book embedded in the prompt.
// Empty fields are omitted by serialization.
type bookContext struct {
	Title       string  `json:"title,omitempty"`
	Author      string  `json:"author,omitempty"`
	Description string  `json:"description,omitempty"`
	ISBN        string  `json:"isbn,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Stock       int     `json:"stock,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// BuildPrompt produces the deterministic prompt for one exchange: a fixed
// instruction preamble, the book projection as JSON, and the raw question
// (or a default when blank).
func BuildPrompt(book books.Book, question string) string {
	ctx := bookContext{
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		ISBN:        book.ISBN,
		Price:       book.Price,
		Stock:       book.Stock,
	}
	if book.Category != nil {
		ctx.Category = book.Category.Name
	}
	// Marshaling a struct cannot fail here.
	raw, _ := json.Marshal(ctx)

	if strings.TrimSpace(question) == "" {
		question = defaultQuestion
	}

	return strings.Join([]string{
		"You are a helpful assistant for a bookstore staff member.",
		"Given this book record (JSON) and the user question, answer clearly and concisely.",
		"If you are unsure, say so. Do not invent ISBNs or factual claims that are not supported.",
		"",
		"BOOK_JSON: " + string(raw),
		"",
		"QUESTION: " + question,
	}, "\n")
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Ask sends one question about one book and returns the plain-text answer.
func (c *Client) Ask(ctx context.Context, book books.Book, question string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, modelID, url.QueryEscape(c.apiKey))

	body := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: BuildPrompt(book, question)}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed generateResponse
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{StatusCode: resp.StatusCode, Message: failureMessage(resp, raw, &parsed, parseErr)}
	}

	if parseErr != nil || len(parsed.Candidates) == 0 {
		return "", &Error{Message: "Gemini returned an empty response"}
	}

	var lines []string
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.Text != "" {
			lines = append(lines, p.Text)
		}
	}
	if len(lines) == 0 {
		return "", &Error{Message: "Gemini returned an empty response"}
	}
	return strings.Join(lines, "\n"), nil
}

// failureMessage picks the richest detail available: the server-provided
// error message, else the raw body, else the HTTP status text.
func failureMessage(resp *http.Response, raw []byte, parsed *generateResponse, parseErr error) string {
	if parseErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	if trimmed := strings.TrimSpace(string(raw)); trimmed != "" {
		return trimmed
	}
	return resp.Status
}
