package parsers

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/deadline"
)

// NotionParser treats the page's first text area as its title and every
// static text block after it as page content.
type NotionParser struct{}

func (NotionParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	return parseSingleDocument(ctx, w.Root, dl)
}
