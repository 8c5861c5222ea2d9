package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timeout for explanation requests; the model can take a while
const explainRequestTimeout = 120 * time.Second

// manages HTTP requests to the explainer REST API
type ReaderClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// creates a new reader REST client. EXPLAINER_API_ENDPOINT and
// EXPLAINER_TOKEN configure the server and the signed-in identity;
// without a token the reader runs anonymously
func NewReaderClient() *ReaderClient {
	endpoint := os.Getenv("EXPLAINER_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return &ReaderClient{
		endpoint: endpoint,
		token:    os.Getenv("EXPLAINER_TOKEN"),
		httpClient: &http.Client{
			Timeout: explainRequestTimeout,
		},
	}
}

type bookPayload struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	WordCount int    `json:"word_count"`
}

type booksResponse struct {
	Books []bookPayload `json:"books"`
}

type contentResponse struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type explainRequest struct {
	Passage   string `json:"passage"`
	Context   string `json:"context,omitempty"`
	BookTitle string `json:"book_title,omitempty"`
}

type explainResponse struct {
	Explanation      string  `json:"explanation"`
	Model            string  `json:"model"`
	Cached           bool    `json:"cached"`
	CreditsRemaining float64 `json:"credits_remaining"`
}

type denialResponse struct {
	Error                  string  `json:"error"`
	Message                string  `json:"message"`
	CreditsRemaining       float64 `json:"credits_remaining"`
	MinutesUntilNextCredit int     `json:"minutes_until_next_credit"`
}

// returns a tea.Cmd that loads the library list
func (c *ReaderClient) LoadBooksCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body, err := c.get(ctx, "/api/v1/books")
		if err != nil {
			return ErrorMsg{err: err}
		}

		var resp booksResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to parse library: %w", err)}
		}

		books := make([]bookItem, 0, len(resp.Books))
		for _, b := range resp.Books {
			books = append(books, bookItem{
				slug:   b.Slug,
				title:  b.Title,
				author: b.Author,
				words:  b.WordCount,
			})
		}

		return BooksLoadedMsg{books: books}
	}
}

// returns a tea.Cmd that loads a book's text
func (c *ReaderClient) LoadContentCmd(slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		body, err := c.get(ctx, "/api/v1/books/"+slug+"/content")
		if err != nil {
			return ErrorMsg{err: err}
		}

		var resp contentResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to parse book content: %w", err)}
		}

		return ContentLoadedMsg{slug: resp.Slug, title: resp.Title, content: resp.Content}
	}
}

// returns a tea.Cmd that requests an explanation for a passage
func (c *ReaderClient) ExplainCmd(passage, surrounding, bookTitle string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), explainRequestTimeout)
		defer cancel()

		payload, err := json.Marshal(explainRequest{
			Passage:   passage,
			Context:   surrounding,
			BookTitle: bookTitle,
		})
		if err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to marshal request: %w", err)}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.endpoint+"/api/v1/explain", bytes.NewReader(payload))
		if err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to create request: %w", err)}
		}

		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return ErrorMsg{err: fmt.Errorf("request failed: %w", err)}
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to read response: %w", err)}
		}

		if resp.StatusCode == http.StatusPaymentRequired {
			var denial denialResponse
			if err := json.Unmarshal(body, &denial); err != nil {
				return ErrorMsg{err: fmt.Errorf("paywall denial with unreadable body")}
			}

			return PaywallDeniedMsg{
				minutesUntilNextCredit: denial.MinutesUntilNextCredit,
				creditsRemaining:       denial.CreditsRemaining,
			}
		}

		if resp.StatusCode != http.StatusOK {
			return ErrorMsg{err: apiError(resp.StatusCode, body)}
		}

		var result explainResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to parse explanation: %w", err)}
		}

		return ExplainResultMsg{
			explanation:      result.Explanation,
			model:            result.Model,
			cached:           result.Cached,
			creditsRemaining: result.CreditsRemaining,
		}
	}
}

func (c *ReaderClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	return body, nil
}

func (c *ReaderClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func apiError(status int, body []byte) error {
	var errResp denialResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
	}

	return fmt.Errorf("request failed with status %d: %s", status, string(body))
}
