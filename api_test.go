package hirewise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListConversationsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/conversations" {
			t.Errorf("path: %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization: %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id")
		}
		q := r.URL.Query()
		if q.Get("ordering") != "-last_message_at,-created_at" {
			t.Errorf("ordering: %q", q.Get("ordering"))
		}
		if q.Get("page") != "2" || q.Get("pageSize") != "25" {
			t.Errorf("pagination: page=%q pageSize=%q", q.Get("page"), q.Get("pageSize"))
		}
		json.NewEncoder(w).Encode(ConversationsPage{
			Conversations: []Conversation{{ID: 5, Title: "Kitchen remodel"}},
			TotalCount:    1, Page: 2, PageSize: 25,
		})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("tok"))
	page, err := c.ListConversations(context.Background(), 2, 25)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Conversations) != 1 || page.Conversations[0].ID != 5 {
		t.Errorf("got %+v", page)
	}
}

func TestFetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/conversations/5" {
			t.Errorf("path: %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ConversationDetail{
			Conversation: Conversation{ID: 5},
			Messages: []Message{
				{ID: 1, Body: "hello", MessageKind: KindText},
				{ID: 2, MessageKind: KindFile, Attachment: &Attachment{URL: "https://cdn/x.pdf", Name: "x.pdf"}},
			},
		})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("tok"))
	msgs, err := c.FetchHistory(context.Background(), 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[1].Attachment == nil || msgs[1].Attachment.Name != "x.pdf" {
		t.Errorf("attachment not decoded: %+v", msgs[1])
	}
}

func TestSendMessagePostsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/conversations/5/messages" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["body"] != "hello" || body["kind"] != "text" {
			t.Errorf("body: %v", body)
		}
		json.NewEncoder(w).Encode(Message{ID: 9, ConversationID: 5, Body: "hello", MessageKind: KindText})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("tok"))
	msg, err := c.SendMessage(context.Background(), 5, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID != 9 {
		t.Errorf("got %+v", msg)
	}
}

func TestSendAttachmentPostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("kind"); got != string(KindImage) {
			t.Errorf("kind: %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "photo.png" {
			t.Errorf("filename: %q", header.Filename)
		}
		json.NewEncoder(w).Encode(Message{ID: 10, MessageKind: KindImage})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("tok"))
	msg, err := c.SendAttachment(context.Background(), 5, AttachmentUpload{
		Name:     "photo.png",
		MIMEType: "image/png",
		Data:     []byte{0x89, 0x50, 0x4e, 0x47},
	})
	if err != nil {
		t.Fatalf("send attachment: %v", err)
	}
	if msg.ID != 10 {
		t.Errorf("got %+v", msg)
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"conversation not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("tok"))
	_, err := c.GetConversation(context.Background(), 404)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestRequestsRequireCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("request must not be sent without a credential")
	}))
	defer srv.Close()

	auth := NewAuthStore() // signed out
	c := NewAPIClient(srv.URL, auth)
	if _, err := c.ListConversations(context.Background(), 0, 0); err == nil {
		t.Fatal("expected credential error")
	}
}

func TestListJobsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "plumbing" || q.Get("category") != "home" {
			t.Errorf("query: %v", q)
		}
		json.NewEncoder(w).Encode(JobsPage{Jobs: []Job{{ID: 1, Title: "Fix sink"}}, TotalCount: 1})
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("tok"))
	page, err := c.ListJobs(context.Background(), "plumbing", "home", 0, 0)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(page.Jobs) != 1 {
		t.Errorf("got %+v", page)
	}
}
