package parsers

import (
	"context"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// parseSingleDocument implements the Notion/Obsidian contract: the first
// text area found is the title, every static text after it is content.
func parseSingleDocument(ctx context.Context, root a11y.Element, dl deadline.Deadline) (ParseResult, error) {
	titleEl, ok := traverse.FindElement(ctx, root, match.HasRole(RoleTextArea), traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}, nil
	}
	docTitle := cleanText(value(ctx, titleEl))

	var parts []string
	safeEach(traverse.FindElements(ctx, root, match.HasRole(RoleStaticText), traverse.Options{Deadline: dl}), func(e a11y.Element) {
		if v := cleanText(value(ctx, e)); v != "" {
			parts = append(parts, v)
		}
	})
	if docTitle == "" && len(parts) == 0 {
		return ParseResult{}, nil
	}
	return ParseResult{Document: &Document{Title: docTitle, Content: strings.Join(parts, "\n")}}, nil
}
