package parsers

import (
	"context"
	"regexp"
	"strings"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/datetime"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
	"github.com/beeper/slunk-harvester/internal/match"
	"github.com/beeper/slunk-harvester/internal/traverse"
)

// Slack role/class/description constants this parser keys its state
// transitions on. The accessibility tree exposes React DOM classes
// verbatim, so these are the literal class names Slack ships.
const (
	slackWorkspaceWrapperClass = "p-client_workspace_wrapper"
	slackViewContentsPrimary   = "p-view_contents--primary"
	slackContentListSubrole    = "content-list"
	slackThreadsViewHeading    = "threads_view_heading"
	slackThreadsViewFooter     = "threads_view_footer"
)

var slackChildWindowTitleRE = regexp.MustCompile(`^.* - (.+) - Slack$`)

// SlackParser is the exemplar per-app parser: a finite state machine over
// Slack's DOM-in-accessibility, including the threads state machine and
// thread sidebar.
type SlackParser struct{}

func (SlackParser) Parse(ctx context.Context, w Window, dl deadline.Deadline) (ParseResult, error) {
	webArea, ok := traverse.FindElement(ctx, w.Root, match.HasRole(RoleWebArea), traverse.Options{Deadline: dl})
	if !ok {
		webArea = w.Root
	}

	switcher, ok := traverse.FindElement(ctx, webArea, isWorkspaceSwitcherDescription, traverse.Options{Deadline: dl})
	if ok {
		return parseSlackMainWindow(ctx, webArea, switcher, dl), nil
	}
	return parseSlackChildWindow(ctx, w, webArea, dl), nil
}

func isWorkspaceSwitcherDescription(ctx context.Context, e a11y.Element) bool {
	return description(ctx, e) == "Workspaces"
}

func parseSlackMainWindow(ctx context.Context, webArea, switcher a11y.Element, dl deadline.Deadline) ParseResult {
	workspace := slackSelectedWorkspaceTitle(ctx, switcher)

	wrapper, ok := traverse.FindElement(ctx, webArea, match.HasClass(slackWorkspaceWrapperClass), traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}
	}
	workspaceDisplayName := description(ctx, wrapper)
	if workspaceDisplayName == "" {
		workspaceDisplayName = workspace
	}

	primary, ok := traverse.FindElement(ctx, wrapper, match.HasClass(slackViewContentsPrimary), traverse.Options{Deadline: dl})
	if !ok {
		return ParseResult{}
	}

	var convos []ingest.ConversationRecord
	if description(ctx, primary) == "Threads" {
		convos = append(convos, parseSlackThreads(ctx, primary, workspace, workspaceDisplayName)...)
	} else {
		channelLists := traverse.FindElements(ctx, primary, match.Always, traverse.Options{Deadline: dl})
		contentList, ok := findFirst(channelLists, func(e a11y.Element) bool { return subrole(ctx, e) == slackContentListSubrole })
		if ok {
			channel := slackChannelNameFromPrimary(ctx, primary)
			messages := parseSlackContentList(ctx, contentList)
			if len(messages) > 0 {
				convos = append(convos, ingest.ConversationRecord{
					App:       "slack",
					Workspace: workspace,
					Channel:   workspace + ", " + workspaceDisplayName + ", " + channel,
					Messages:  messages,
				})
			}
		}
	}

	if sidebar, ok := slackThreadSidebar(ctx, wrapper); ok {
		messages := parseSlackContentList(ctx, sidebar)
		if len(messages) > 0 {
			convos = append(convos, ingest.ConversationRecord{
				App:       "slack",
				Workspace: workspace,
				Channel:   workspace + ", " + workspaceDisplayName + ", thread",
				Messages:  messages,
			})
		}
	}

	if len(convos) == 0 {
		return ParseResult{}
	}
	return ParseResult{ActiveConversations: convos}
}

// slackSelectedWorkspaceTitle returns the title of the switcher row marked
// selected, following the same "selected" attribute convention the rest of
// the tree uses for current-tab state.
func slackSelectedWorkspaceTitle(ctx context.Context, switcher a11y.Element) string {
	for _, row := range children(ctx, switcher) {
		if v, ok, _ := row.Attribute(ctx, "selected"); ok && v == "true" {
			return title(ctx, row)
		}
	}
	if rows := children(ctx, switcher); len(rows) > 0 {
		return title(ctx, rows[0])
	}
	return ""
}

func slackChannelNameFromPrimary(ctx context.Context, primary a11y.Element) string {
	if d := description(ctx, primary); d != "" {
		return d
	}
	return title(ctx, primary)
}

// slackThreadSidebar looks for a second content-list under wrapper whose
// description contains "Thread"; this is the thread sidebar surface,
// distinct from the primary channel or the threads view itself.
func slackThreadSidebar(ctx context.Context, wrapper a11y.Element) (a11y.Element, bool) {
	lists := traverse.FindElements(ctx, wrapper, func(ctx context.Context, e a11y.Element) bool {
		return subrole(ctx, e) == slackContentListSubrole
	}, traverse.Options{})
	for _, l := range lists {
		if strings.Contains(description(ctx, l), "Thread") {
			return l, true
		}
	}
	return nil, false
}

func parseSlackChildWindow(ctx context.Context, w Window, webArea a11y.Element, dl deadline.Deadline) ParseResult {
	if w.Title == "Slack" {
		if hasHuddlePanel(ctx, webArea) {
			return ParseResult{}
		}
	}
	m := slackChildWindowTitleRE.FindStringSubmatch(w.Title)
	workspace := ""
	if m != nil {
		workspace = m[1]
	}

	lists := traverse.FindElements(ctx, webArea, func(ctx context.Context, e a11y.Element) bool {
		return subrole(ctx, e) == slackContentListSubrole
	}, traverse.Options{Deadline: dl})
	if len(lists) == 0 {
		return ParseResult{}
	}
	messages := parseSlackContentList(ctx, lists[0])
	if len(messages) == 0 {
		return ParseResult{}
	}
	return ParseResult{ActiveConversations: []ingest.ConversationRecord{{
		App:       "slack",
		Workspace: workspace,
		Channel:   workspace,
		Messages:  messages,
	}}}
}

func hasHuddlePanel(ctx context.Context, webArea a11y.Element) bool {
	_, ok := traverse.FindElement(ctx, webArea, func(ctx context.Context, e a11y.Element) bool {
		return strings.Contains(description(ctx, e), "Huddle")
	}, traverse.Options{})
	return ok
}

// parseSlackThreads runs the two-state threads state machine over the
// children of the content list under the threads view, emitting one
// ConversationRecord per thread closed by a footer.
func parseSlackThreads(ctx context.Context, primary a11y.Element, workspace, workspaceDisplayName string) []ingest.ConversationRecord {
	lists := traverse.FindElements(ctx, primary, func(ctx context.Context, e a11y.Element) bool {
		return subrole(ctx, e) == slackContentListSubrole
	}, traverse.Options{})
	if len(lists) == 0 {
		return nil
	}
	contentList := lists[0]

	const (
		stateSearchingForHeader = iota
		stateProcessingMessages
	)
	state := stateSearchingForHeader

	var convos []ingest.ConversationRecord
	var channelName, participants string
	var current []ingest.MessageRecord
	var lastSender, lastTimestamp string

	flush := func() {
		if len(current) == 0 {
			return
		}
		convos = append(convos, ingest.ConversationRecord{
			App:       "slack",
			Workspace: workspace,
			Channel:   workspace + ", " + workspaceDisplayName + ", " + "#" + channelName + " with " + participants,
			Messages:  current,
		})
		current = nil
	}

	for _, child := range children(ctx, contentList) {
		id := domID(ctx, child)
		switch {
		case strings.HasPrefix(id, slackThreadsViewHeading):
			kids := children(ctx, child)
			if len(kids) >= 2 {
				channelName = cleanText(value(ctx, kids[0]))
				participants = cleanText(value(ctx, kids[1]))
			}
			state = stateProcessingMessages
			lastSender, lastTimestamp = "", ""
		case strings.HasPrefix(id, slackThreadsViewFooter):
			flush()
			state = stateSearchingForHeader
		case state == stateProcessingMessages:
			if msg, ok := parseSlackMessageUnit(ctx, child, &lastSender, &lastTimestamp); ok {
				current = append(current, msg)
			}
		}
	}
	if state == stateProcessingMessages {
		flush()
	}
	return convos
}

// parseSlackContentList parses every message unit under a (non-threads)
// content list. Sender/timestamp carry-over is scoped to this call: it
// never leaks across separate content-list instances.
func parseSlackContentList(ctx context.Context, contentList a11y.Element) []ingest.MessageRecord {
	var messages []ingest.MessageRecord
	var lastSender, lastTimestamp string
	safeEach(children(ctx, contentList), func(child a11y.Element) {
		if msg, ok := parseSlackMessageUnit(ctx, child, &lastSender, &lastTimestamp); ok {
			messages = append(messages, msg)
		}
	})
	return messages
}

var slackMessageGroupMatcher = func(ctx context.Context, e a11y.Element) bool {
	return description(ctx, e) == "message"
}

// parseSlackMessageUnit locates the nested message group, then pulls
// sender/timestamp/content out of its children with a small rule bundle.
// lastSender/lastTimestamp are carried in and mutated so consecutive
// same-author messages can omit them.
func parseSlackMessageUnit(ctx context.Context, child a11y.Element, lastSender, lastTimestamp *string) (ingest.MessageRecord, bool) {
	group, ok := traverse.FindElement(ctx, child, slackMessageGroupMatcher, traverse.Options{})
	if !ok {
		return ingest.MessageRecord{}, false
	}

	var sender, timestampRaw string
	var isThread, isAttachment bool
	var threadInfo, content strings.Builder

	for _, part := range children(ctx, group) {
		r := role(ctx, part)
		switch r {
		case RoleButton:
			t := title(ctx, part)
			d := description(ctx, part)
			switch {
			case strings.Contains(strings.ToLower(t), "reply") || strings.Contains(strings.ToLower(t), "replies"):
				isThread = true
			case d == "Toggle file":
				isAttachment = true
			case !strings.Contains(d, "reaction") && !strings.Contains(d, "edited") && sender == "":
				sender = t
			}
		case RoleLink:
			d := description(ctx, part)
			if strings.Contains(d, "at ") && timestampRaw == "" {
				timestampRaw = d
				continue // timestamp links are excluded from content
			}
			if sender == "" {
				sender = cleanText(value(ctx, part))
			}
		case RoleGroup:
			if hasLastReplyChild(ctx, part) {
				threadInfo.WriteString(cleanText(value(ctx, part)))
			}
		case RoleStaticText:
			text := cleanText(value(ctx, part))
			if text == "" {
				continue
			}
			if isThread {
				threadInfo.WriteString(text)
			} else {
				if content.Len() > 0 {
					content.WriteString(" ")
				}
				content.WriteString(text)
			}
		}
	}

	if sender == "" {
		sender = *lastSender
	} else {
		*lastSender = sender
	}
	if timestampRaw == "" {
		timestampRaw = *lastTimestamp
	} else {
		*lastTimestamp = timestampRaw
	}
	if sender == "" {
		return ingest.MessageRecord{}, false
	}

	ts, _ := datetime.Parse(strings.TrimPrefix(timestampRaw, "at "), now())

	msgType := ingest.MessageRegular
	switch {
	case isAttachment:
		msgType = ingest.MessageAttachment
	case isThread:
		msgType = ingest.MessageThread
	}

	metadata := ingest.MessageMetadata{Version: 1}
	if threadInfo.Len() > 0 {
		metadata.ThreadSummary = cleanText(threadInfo.String())
	}

	return ingest.MessageRecord{
		ID:                 stableMessageID("slack", sender, timestampRaw),
		Sender:             sender,
		Content:            cleanText(content.String()),
		TimestampMonotonic: ts,
		MessageType:        msgType,
		Metadata:           metadata,
	}, true
}

func hasLastReplyChild(ctx context.Context, e a11y.Element) bool {
	for _, c := range children(ctx, e) {
		if strings.Contains(value(ctx, c), "Last reply") {
			return true
		}
	}
	return false
}

func findFirst(elems []a11y.Element, pred func(a11y.Element) bool) (a11y.Element, bool) {
	for _, e := range elems {
		if pred(e) {
			return e, true
		}
	}
	return nil, false
}
