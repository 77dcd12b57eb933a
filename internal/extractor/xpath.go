// Package extractor provides a configuration-driven Extractor: field names
// mapped to XPath expressions. Sites with layouts too irregular for a flat
// field map implement scraper.Extractor directly instead.
package extractor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/htmldoc"
	"github.com/jobwire/boardcrawler/internal/scraper"
)

// XPath extracts a posting by evaluating one XPath expression per field.
type XPath struct {
	fields   map[string]string
	required []string
	logger   *zap.Logger
}

// NewXPath builds an extractor from a field-to-expression map. Fields listed
// in required must match on every page; a posting missing one is treated as
// absent rather than persisted half-empty.
func NewXPath(fields map[string]string, required []string, logger *zap.Logger) (*XPath, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one field expression is required")
	}
	for name, expr := range fields {
		if err := htmldoc.CheckExpr(expr); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("required field %q has no expression", name)
		}
	}
	return &XPath{fields: fields, required: required, logger: logger}, nil
}

// Extract evaluates every field expression against the document.
func (x *XPath) Extract(doc *htmldoc.Document, postingURL string) (scraper.Posting, error) {
	posting := scraper.Posting{}
	for name, expr := range x.fields {
		value, ok, err := doc.First(expr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if !ok || value == "" {
			continue
		}
		posting[name] = value
	}

	for _, name := range x.required {
		if _, ok := posting[name]; !ok {
			x.logger.Warn("posting missing required field",
				zap.String("url", postingURL),
				zap.String("field", name),
			)
			return nil, nil
		}
	}

	posting["url"] = postingURL
	posting["scraped_at"] = time.Now().UTC().Format(time.RFC3339)
	return posting, nil
}
