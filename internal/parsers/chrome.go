package parsers

import (
	"context"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// ChromeParser locates the page's web-area (excluding the browser's own
// chrome container) and flattens its static text into one frame.
type ChromeParser struct{}

func (ChromeParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	isTopChrome := func(ctx context.Context, e a11y.Element) bool {
		v, ok, _ := e.Attribute(ctx, "chrome-ui")
		return ok && v == "true"
	}
	webArea, ok := traverse.FindElement(ctx, w.Root, match.All(match.HasRole(RoleWebArea), match.Not(isTopChrome)), traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}, nil
	}

	url, _, _ := webArea.Attribute(ctx, "url")
	pageTitle := title(ctx, webArea)
	text := traverse.CollectTreeValues(ctx, webArea, match.HasRole(RoleStaticText), " ", traverse.Options{Deadline: dl})
	if cleanText(text) == "" {
		return ParseResult{}, nil
	}
	return ParseResult{BrowserFrame: &BrowserFrame{URL: url, Title: pageTitle, Text: cleanText(text)}}, nil
}
