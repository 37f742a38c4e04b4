package parsers

import (
	"context"
	"testing"

	"github.com/beeper/slunk-harvester/internal/a11y"
	"github.com/beeper/slunk-harvester/internal/deadline"
	"github.com/beeper/slunk-harvester/internal/ingest"
)

func TestMessengerRowClassification(t *testing.T) {
	html := `<div data-role="window">
  <div data-role="list" data-description="Messages in General" data-x="0" data-y="0" data-w="400" data-h="300">
    <div data-role="statictext" data-description="2:00 PM" data-x="10" data-y="10"></div>
    <div data-role="text-message" data-value="hello" data-x="10" data-y="40"></div>
    <div data-role="text-message" data-value="hi there" data-x="300" data-y="70"></div>
    <div data-role="image" data-x="10" data-y="100"></div>
    <div data-role="image" data-x="20" data-y="100"></div>
    <div data-id="hotlike_message_1" data-role="button" data-x="10" data-y="130"></div>
    <div data-id="reply_context_message_1" data-role="statictext" data-value="Original" data-x="10" data-y="160"></div>
    <div data-role="text-message" data-value="Sounds good" data-x="30" data-y="160"></div>
  </div>
</div>`
	tree, err := a11y.NewMockTree(html)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	result, err := MessengerParser{}.Parse(context.Background(), Window{Root: tree}, deadline.Never)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.ActiveConversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(result.ActiveConversations))
	}
	msgs := result.ActiveConversations[0].Messages
	if len(msgs) != 6 {
		t.Fatalf("expected 6 rows, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].MessageType != ingest.MessageSystem || msgs[0].Content != "2:00 PM" {
		t.Fatalf("expected admin date row, got %+v", msgs[0])
	}
	if msgs[1].Sender != "remote" || msgs[1].Content != "hello" {
		t.Fatalf("expected remote hello row, got %+v", msgs[1])
	}
	if msgs[2].Sender != "You" || msgs[2].Content != "hi there" {
		t.Fatalf("expected self row, got %+v", msgs[2])
	}
	if msgs[3].Content != "Images (2)" || msgs[3].MessageType != ingest.MessageImage {
		t.Fatalf("expected image group row, got %+v", msgs[3])
	}
	if msgs[4].Content != "👍" {
		t.Fatalf("expected like-only row, got %+v", msgs[4])
	}
	if msgs[5].MessageType != ingest.MessageReply || msgs[5].Content != "Sounds good" {
		t.Fatalf("expected reply row, got %+v", msgs[5])
	}
}
