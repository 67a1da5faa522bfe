package textproc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Gutenberg license marker lines delimit the actual book text.
const (
	gutenbergStartMarker = "*** START OF"
	gutenbergEndMarker   = "*** END OF"
)

// CleanStats summarizes one cleaning run.
type CleanStats struct {
	Input        string `json:"input"`
	Output       string `json:"output"`
	BytesIn      int    `json:"bytes_in"`
	BytesOut     int    `json:"bytes_out"`
	LinesDropped int    `json:"lines_dropped"`
}

// Cleaner normalizes raw corpus text for downstream tokenization.
type Cleaner struct {
	logger logger.Logger
}

// NewCleaner creates a new Cleaner
func NewCleaner(logger logger.Logger) (*Cleaner, error) {
	return &Cleaner{logger: logger}, nil
}

// CleanText applies the full normalization chain to raw text: strip the
// Gutenberg license envelope when present, normalize to NFC, drop control
// characters, normalize line endings and collapse blank-line runs.
func (c *Cleaner) CleanText(raw string) (string, int) {
	text := stripGutenbergEnvelope(raw)
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = dropControlRunes(text)

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	dropped := 0
	blankRun := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blankRun++
			// A single blank line separates paragraphs
			if blankRun > 1 {
				dropped++
				continue
			}
		} else {
			blankRun = 0
		}
		cleaned = append(cleaned, line)
	}

	result := strings.TrimSpace(strings.Join(cleaned, "\n"))
	if result != "" {
		result += "\n"
	}
	return result, dropped
}

// CleanFile cleans a single file and writes the result to output.
func (c *Cleaner) CleanFile(input, output string) (*CleanStats, error) {
	raw, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	cleaned, dropped := c.CleanText(string(raw))

	if err := os.MkdirAll(filepath.Dir(output), 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, []byte(cleaned), 0600); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	stats := &CleanStats{
		Input:        input,
		Output:       output,
		BytesIn:      len(raw),
		BytesOut:     len(cleaned),
		LinesDropped: dropped,
	}
	c.logger.Info("Cleaned ", input, " -> ", output)
	return stats, nil
}

// CleanCorpus cleans every .txt file under inputDir into outputDir, keeping
// file names, and returns per-file stats.
func (c *Cleaner) CleanCorpus(inputDir, outputDir string) ([]*CleanStats, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var allStats []*CleanStats
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		input := filepath.Join(inputDir, entry.Name())
		output := filepath.Join(outputDir, entry.Name())
		stats, err := c.CleanFile(input, output)
		if err != nil {
			return nil, fmt.Errorf("failed to clean %s: %w", entry.Name(), err)
		}
		allStats = append(allStats, stats)
	}

	c.logger.Info("Cleaned ", len(allStats), " corpus files from ", inputDir)
	return allStats, nil
}

// StripHTML extracts the visible text from an HTML document, skipping script
// and style elements.
func StripHTML(source string) (string, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return sb.String(), nil
}

// stripGutenbergEnvelope returns the text between the *** START OF ... *** and
// *** END OF ... *** marker lines. Text without markers passes through as is.
func stripGutenbergEnvelope(text string) string {
	startIdx := strings.Index(text, gutenbergStartMarker)
	if startIdx >= 0 {
		// The body starts after the marker line
		if nl := strings.IndexByte(text[startIdx:], '\n'); nl >= 0 {
			text = text[startIdx+nl+1:]
		}
	}
	if endIdx := strings.Index(text, gutenbergEndMarker); endIdx >= 0 {
		// Back up to the start of the marker line
		lineStart := strings.LastIndexByte(text[:endIdx], '\n')
		if lineStart >= 0 {
			text = text[:lineStart]
		} else {
			text = ""
		}
	}
	return text
}

// dropControlRunes removes control characters except newline and tab.
func dropControlRunes(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
