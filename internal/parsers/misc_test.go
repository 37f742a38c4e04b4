package parsers

import (
	"context"
	"testing"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
)

func mustTree(t *testing.T, html string) *a11y.MockElement {
	t.Helper()
	tree, err := a11y.NewMockTree(html)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return tree
}

func TestMessagesParserDateHeadingCarryOver(t *testing.T) {
	html := `<div data-role="window">
  <div data-description="Conversations">
    <div data-title="Dana" data-selected="true"></div>
  </div>
  <div data-description="Messages">
    <div data-kind="date-heading" data-value="Yesterday at 2:30 PM"></div>
    <div>
      <div data-role="button" data-title="Dana"></div>
      <div data-role="statictext" data-value="hey"></div>
    </div>
    <div>
      <div data-role="statictext" data-value="still there?"></div>
    </div>
  </div>
</div>`
	tree := mustTree(t, html)
	result, err := MessagesParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ActiveConversations) != 1 || result.ActiveConversations[0].Channel != "Dana" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMailParserSummariesAndBody(t *testing.T) {
	html := `<div data-role="window">
  <div data-description="messages">
    <div data-description="Alice: hi"></div>
    <div data-description="Bob: yo"></div>
  </div>
  <div data-description="message content">
    <div data-role="link" data-title="Alice"></div>
    <div data-role="statictext" data-value="Hello there"></div>
  </div>
</div>`
	tree := mustTree(t, html)
	result, err := MailParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ConversationSummaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(result.ConversationSummaries))
	}
	if len(result.ActiveConversations) != 1 || result.ActiveConversations[0].Messages[0].Sender != "Alice" {
		t.Fatalf("unexpected active conversation: %+v", result.ActiveConversations)
	}
}

func TestDiscordParserChannelSuffix(t *testing.T) {
	html := `<div data-role="window">
  <div data-role="list" data-description="Messages in general">
    <div>
      <div data-role="button" data-title="alice"></div>
      <div data-role="statictext" data-value="hi"></div>
    </div>
  </div>
</div>`
	tree := mustTree(t, html)
	result, err := DiscordParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ActiveConversations) != 1 || result.ActiveConversations[0].Channel != "general" {
		t.Fatalf("unexpected channel: %+v", result.ActiveConversations)
	}
}

func TestTeamsMessageAndCalendar(t *testing.T) {
	html := `<div data-role="window">
  <div data-description="alice hello there Jan 2, 2024 3:04 PM."></div>
  <div data-description="Standup, Jan 2, 2024 9:00 AM to 9:30 AM, location: Room 1, organized by Bob, extra"></div>
</div>`
	tree := mustTree(t, html)
	result, err := TeamsParser{}.Parse(context.Background(), Window{Root: tree, PID: 123}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ActiveConversations) != 1 {
		t.Fatalf("expected 1 conversation, got %+v", result.ActiveConversations)
	}
	if len(result.CalendarEvents) != 1 || result.CalendarEvents[0].Title != "Standup" {
		t.Fatalf("unexpected calendar events: %+v", result.CalendarEvents)
	}

	// Second call with the same PID should reuse the unlocked subtree
	// rather than hit-testing again.
	result2, err := TeamsParser{}.Parse(context.Background(), Window{Root: tree, PID: 123}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result2.ActiveConversations) != 1 {
		t.Fatalf("expected cached unlock to still parse: %+v", result2)
	}
}

func TestOutlookEmailAndCalendar(t *testing.T) {
	html := `<div data-role="window">
  <div data-description="Sender: alice@example.com, Subject: Hi, 3/4/2024, Message preview: see you soon"></div>
  <div data-description="Standup, Jan 2, 2024 9:00 AM to 9:30 AM, location: Room 1, organized by Bob, extra"></div>
</div>`
	tree := mustTree(t, html)
	result, err := OutlookParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ActiveConversations) != 1 || result.ActiveConversations[0].Messages[0].Sender != "alice@example.com" {
		t.Fatalf("unexpected email result: %+v", result.ActiveConversations)
	}
	if len(result.CalendarEvents) != 1 {
		t.Fatalf("expected 1 calendar event, got %+v", result.CalendarEvents)
	}
}

func TestNotionSingleDocument(t *testing.T) {
	html := `<div data-role="window">
  <div data-role="textarea" data-value="My Page"></div>
  <div data-role="statictext" data-value="First paragraph"></div>
  <div data-role="statictext" data-value="Second paragraph"></div>
</div>`
	tree := mustTree(t, html)
	result, err := NotionParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Document == nil || result.Document.Title != "My Page" {
		t.Fatalf("unexpected document: %+v", result.Document)
	}
}

func TestCalendarEventParsing(t *testing.T) {
	html := `<div data-role="window">
  <div data-description="Event" data-value="Standup, Jan 2, 2024 9:00 AM to 9:30 AM, location: Room 1, organized by Bob, extra"></div>
</div>`
	tree := mustTree(t, html)
	result, err := CalendarParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.CalendarEvents) != 1 || result.CalendarEvents[0].Organizer != "Bob" {
		t.Fatalf("unexpected events: %+v", result.CalendarEvents)
	}
}

func TestChromeFlattensStaticText(t *testing.T) {
	html := `<div data-role="window">
  <div data-role="web-area" data-chrome-ui="true" data-title="chrome"></div>
  <div data-role="web-area" data-url="https://example.com" data-title="Example">
    <div data-role="statictext" data-value="Hello"></div>
    <div data-role="statictext" data-value="World"></div>
  </div>
</div>`
	tree := mustTree(t, html)
	result, err := ChromeParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.BrowserFrame == nil || result.BrowserFrame.URL != "https://example.com" {
		t.Fatalf("unexpected frame: %+v", result.BrowserFrame)
	}
	if result.BrowserFrame.Text != "Hello World" {
		t.Fatalf("unexpected text: %q", result.BrowserFrame.Text)
	}
}

func TestZoomMeetingInProgress(t *testing.T) {
	html := `<div data-role="window">
  <div data-description="Video render, unmuted" data-title="Alice"></div>
  <div data-description="Video render, muted" data-title="Bob"></div>
</div>`
	tree := mustTree(t, html)
	result, err := ZoomParser{}.Parse(context.Background(), Window{Root: tree, Title: "Zoom Meeting"}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Meeting == nil || !result.Meeting.InProgress {
		t.Fatalf("expected meeting in progress: %+v", result.Meeting)
	}
	if len(result.Meeting.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %+v", result.Meeting.Participants)
	}
	if !result.Meeting.Participants[0].IsSpeaking || result.Meeting.Participants[1].IsSpeaking {
		t.Fatalf("unexpected speaking flags: %+v", result.Meeting.Participants)
	}
}
