package parsers

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/deadline"
)

// ObsidianParser shares Notion's single-document grammar: first text area
// is the title, subsequent static text is content.
type ObsidianParser struct{}

func (ObsidianParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	return parseSingleDocument(ctx, w.Root, dl)
}
