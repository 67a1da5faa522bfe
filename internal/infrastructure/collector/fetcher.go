package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/infrastructure/textproc"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"golang.org/x/net/html"
)

// Fetcher retrieves a single web page and reduces it to clean plain text.
type Fetcher struct {
	client    *http.Client
	cleaner   *textproc.Cleaner
	logger    logger.Logger
	userAgent string
}

// Page is the cleaned result of one fetch.
type Page struct {
	URL     string
	Title   string
	Content string
}

// NewFetcher creates a new Fetcher
func NewFetcher(userAgent string, timeout time.Duration, logger logger.Logger) (*Fetcher, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("user agent must not be empty")
	}

	cleaner, err := textproc.NewCleaner(logger)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		cleaner:   cleaner,
		logger:    logger,
		userAgent: userAgent,
	}, nil
}

// Fetch downloads url, strips markup when the response is HTML and runs the
// text normalization chain over the result.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	page := &Page{URL: url}
	text := string(body)

	if isHTML(resp.Header.Get("Content-Type"), text) {
		page.Title = extractTitle(text)
		text, err = textproc.StripHTML(text)
		if err != nil {
			return nil, err
		}
	}

	cleaned, _ := f.cleaner.CleanText(text)
	if cleaned == "" {
		return nil, fmt.Errorf("no text content at %s", url)
	}
	page.Content = cleaned

	f.logger.Info(fmt.Sprintf("Fetched %s (%d bytes of text)", url, len(cleaned)))
	return page, nil
}

// isHTML decides from the content type header, falling back to sniffing the
// body for pages served as text/plain.
func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}

// extractTitle returns the text of the first <title> element, if any.
func extractTitle(source string) string {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}
