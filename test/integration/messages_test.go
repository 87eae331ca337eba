package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/messagely/messagely/pkg/api"
)

// TestMessageLifecycle walks a message from creation through party
// reads to the read receipt.
func TestMessageLifecycle(t *testing.T) {
	aliceTok := registerUser(t, "msg_alice")
	bobTok := registerUser(t, "msg_bob")
	carolTok := registerUser(t, "msg_carol")

	// Alice sends to Bob.
	created := doJSON(t, "POST", testEnv.BaseURL()+"/messages", aliceTok, api.CreateMessageRequest{
		ToUsername: "msg_bob",
		Body:       "hello from integration",
	})
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", created.StatusCode, readBody(t, created))
	}
	var createdResp api.MessageResponse
	decodeJSON(t, created, &createdResp)
	msgURL := fmt.Sprintf("%s/messages/%d", testEnv.BaseURL(), createdResp.Message.ID)

	// Both parties can read it; Carol cannot.
	for name, tok := range map[string]string{"sender": aliceTok, "recipient": bobTok} {
		resp := doJSON(t, "GET", msgURL, tok, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s read: status = %d", name, resp.StatusCode)
		}
		resp.Body.Close()
	}
	third := doJSON(t, "GET", msgURL, carolTok, nil)
	if third.StatusCode != http.StatusUnauthorized {
		t.Errorf("third party read: status = %d, want %d", third.StatusCode, http.StatusUnauthorized)
	}
	third.Body.Close()

	// Only the recipient may mark it read.
	senderMark := doJSON(t, "POST", msgURL+"/read", aliceTok, nil)
	if senderMark.StatusCode != http.StatusUnauthorized {
		t.Errorf("sender mark-read: status = %d, want %d", senderMark.StatusCode, http.StatusUnauthorized)
	}
	senderMark.Body.Close()

	marked := doJSON(t, "POST", msgURL+"/read", bobTok, nil)
	if marked.StatusCode != http.StatusOK {
		t.Fatalf("recipient mark-read: status = %d, body = %s", marked.StatusCode, readBody(t, marked))
	}
	var receipt api.ReadReceiptResponse
	decodeJSON(t, marked, &receipt)
	if receipt.Message.ReadAt.IsZero() {
		t.Error("receipt has no read timestamp")
	}

	// The receipt shows up in the detail for the sender.
	detail := doJSON(t, "GET", msgURL, aliceTok, nil)
	var detailResp api.MessageDetailResponse
	decodeJSON(t, detail, &detailResp)
	if detailResp.Message.ReadAt == nil {
		t.Error("detail read_at = nil after mark-read")
	}
}

func TestInboxOutboxVisibility(t *testing.T) {
	daveTok := registerUser(t, "box_dave")
	eveTok := registerUser(t, "box_eve")

	resp := doJSON(t, "POST", testEnv.BaseURL()+"/messages", daveTok, api.CreateMessageRequest{
		ToUsername: "box_eve",
		Body:       "for eve",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Eve sees it in her inbox with Dave's profile attached.
	inbox := doJSON(t, "GET", testEnv.BaseURL()+"/users/box_eve/to", eveTok, nil)
	if inbox.StatusCode != http.StatusOK {
		t.Fatalf("inbox: status = %d, body = %s", inbox.StatusCode, readBody(t, inbox))
	}
	var inboxResp api.InboxResponse
	decodeJSON(t, inbox, &inboxResp)
	if len(inboxResp.Messages) != 1 {
		t.Fatalf("len(inbox) = %d, want 1", len(inboxResp.Messages))
	}
	if inboxResp.Messages[0].FromUser.Username != "box_dave" {
		t.Errorf("sender = %q, want box_dave", inboxResp.Messages[0].FromUser.Username)
	}

	// Dave cannot read Eve's inbox.
	foreign := doJSON(t, "GET", testEnv.BaseURL()+"/users/box_eve/to", daveTok, nil)
	if foreign.StatusCode != http.StatusUnauthorized {
		t.Errorf("foreign inbox: status = %d, want %d", foreign.StatusCode, http.StatusUnauthorized)
	}
	foreign.Body.Close()

	// Dave sees it in his outbox.
	outbox := doJSON(t, "GET", testEnv.BaseURL()+"/users/box_dave/from", daveTok, nil)
	var outboxResp api.OutboxResponse
	decodeJSON(t, outbox, &outboxResp)
	if len(outboxResp.Messages) != 1 || outboxResp.Messages[0].ToUser.Username != "box_eve" {
		t.Errorf("outbox = %+v, want one message to box_eve", outboxResp.Messages)
	}
}

func TestCreateToUnknownRecipient(t *testing.T) {
	tok := registerUser(t, "lonely_frank")

	resp := doJSON(t, "POST", testEnv.BaseURL()+"/messages", tok, api.CreateMessageRequest{
		ToUsername: "nobody_here",
		Body:       "echo",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
