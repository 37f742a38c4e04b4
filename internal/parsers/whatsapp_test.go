package parsers

import (
	"context"
	"testing"
	"time"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
)

func TestWhatsAppDescriptionGrammar(t *testing.T) {
	desc := "Message from Alice, hello there, 3:02 PM, Received from Alice, Read"
	fixedNow := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	msg, conversation, ok := parseWhatsAppDescription(desc, fixedNow)
	if !ok {
		t.Fatalf("expected description to parse")
	}
	if msg.Sender != "Alice" {
		t.Fatalf("unexpected sender: %q", msg.Sender)
	}
	if msg.Content != "hello there" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	want := time.Date(2024, 3, 2, 15, 2, 0, 0, time.UTC)
	if !msg.TimestampMonotonic.Equal(want) {
		t.Fatalf("unexpected timestamp: got %v want %v", msg.TimestampMonotonic, want)
	}
	if msg.MessageType != ingest.MessageRegular {
		t.Fatalf("unexpected message type: %v", msg.MessageType)
	}
	if conversation != "Alice" {
		t.Fatalf("unexpected conversation name: %q", conversation)
	}
}

func TestWhatsAppPreservesRedTypo(t *testing.T) {
	desc := "message, see you then, 9:00 AM, Received from Bob, Red"
	fixedNow := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	msg, conversation, ok := parseWhatsAppDescription(desc, fixedNow)
	if !ok {
		t.Fatalf("expected description with 'Red' marker to still parse")
	}
	if msg.Content != "see you then" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	if conversation != "Bob" {
		t.Fatalf("unexpected conversation: %q", conversation)
	}
}

func TestWhatsAppSelfMessage(t *testing.T) {
	desc := "Your message, on my way, 9:05 AM, Sent to Bob"
	fixedNow := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	msg, conversation, ok := parseWhatsAppDescription(desc, fixedNow)
	if !ok {
		t.Fatalf("expected self message to parse")
	}
	if msg.Sender != "You" {
		t.Fatalf("expected sender You, got %q", msg.Sender)
	}
	if conversation != "Bob" {
		t.Fatalf("unexpected conversation: %q", conversation)
	}
}

func TestWhatsAppParserTwoTableDetection(t *testing.T) {
	html := `<div data-role="window">
  <div data-role="table">
    <div data-description="Alice chat preview"></div>
  </div>
  <div data-role="table">
    <div data-description="Message from Alice, hello there, 3:02 PM, Received from Alice, Read"></div>
  </div>
</div>`
	tree, err := a11y.NewMockTree(html)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	result, err := WhatsAppParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ActiveConversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(result.ActiveConversations))
	}
	if len(result.ActiveConversations[0].Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.ActiveConversations[0].Messages))
	}
}
