// Package fetch retrieves rendered text content from company websites. It
// is the Content Fetcher collaborator: the pipeline consumes it through the
// Fetcher interface and never sees HTTP mechanics.
package fetch

import (
	"context"
	"strings"

	"github.com/sells-group/execdiscovery/internal/model"
)

// Fetcher retrieves the rendered text content of a single page.
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*model.FetchedPage, error)
}

// PageSet is the outcome of fetching one site across its priority sub-paths.
type PageSet struct {
	Pages []model.FetchedPage
	// ServedBase is the URL variant that actually returned content, which
	// may differ from the input after protocol/www fallback.
	ServedBase string
}

// CombinedText concatenates all page texts into one corpus. Pattern
// matching runs once over the combined text; there is no ordering
// dependency between pages.
func (ps *PageSet) CombinedText() string {
	var b strings.Builder
	for _, p := range ps.Pages {
		b.WriteString(p.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
