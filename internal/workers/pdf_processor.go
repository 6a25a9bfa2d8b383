// internal/workers/pdf_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

var (
	// a discard line starts with a barcode: digits, optionally with letters or dashes
	discardLineRe = regexp.MustCompile(`^([0-9][0-9A-Za-z-]{3,})\s+(.+)$`)
	pdfHeaderRe   = regexp.MustCompile(`(?i)^\s*barcode\b`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// ParseDiscardPDF extracts discard entries from a printed list. Each entry is
// one line "<barcode> <title>", optionally followed by "| <contributors>".
// Lines that do not start with a barcode continue the previous title.
func ParseDiscardPDF(ctx context.Context, path string, logger *slog.Logger) ([]domain.DiscardEntry, []string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open PDF: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	var lines []string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}

	entries, warnings := parseDiscardLines(lines)
	logger.InfoContext(ctx, "extracted discard entries from PDF",
		slog.Int("pages", r.NumPage()),
		slog.Int("count", len(entries)))

	return entries, warnings, nil
}

func parseDiscardLines(lines []string) ([]domain.DiscardEntry, []string) {
	var (
		entries  []domain.DiscardEntry
		warnings []string
	)

	for i, raw := range lines {
		line := strings.TrimSpace(spacesRe.ReplaceAllString(raw, " "))
		if line == "" || pdfHeaderRe.MatchString(line) {
			continue
		}

		m := discardLineRe.FindStringSubmatch(line)
		if m == nil {
			if len(entries) == 0 {
				warnings = append(warnings, fmt.Sprintf("line %d: no barcode", i+1))
				continue
			}
			last := &entries[len(entries)-1]
			title, contributors := splitContributors(line)
			if last.Contributors == "" && contributors != "" {
				last.Title = strings.TrimSpace(last.Title + " " + title)
				last.Contributors = contributors
			} else if last.Contributors == "" {
				last.Title = strings.TrimSpace(last.Title + " " + title)
			}
			continue
		}

		title, contributors := splitContributors(m[2])
		entries = append(entries, domain.DiscardEntry{
			Barcode:      m[1],
			Title:        title,
			Contributors: contributors,
		})
	}

	return entries, warnings
}

func splitContributors(s string) (string, string) {
	title, contributors, found := strings.Cut(s, "|")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(title), strings.TrimSpace(contributors)
}
