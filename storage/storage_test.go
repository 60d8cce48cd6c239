package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rpoptimizer/config"
	"rpoptimizer/model"
)

func openStores(t *testing.T) map[string]Chat {
	t.Helper()

	sessions, err := NewSessionStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStorage: %v", err)
	}
	jsonChat, err := OpenJSONChat(sessions, "")
	if err != nil {
		t.Fatalf("OpenJSONChat: %v", err)
	}

	sqliteChat, err := OpenSQLite(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqliteChat.Close() })

	return map[string]Chat{"json": jsonChat, "sqlite": sqliteChat}
}

func TestChatStores(t *testing.T) {
	ctx := context.Background()

	for name, chat := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			latest, err := chat.LatestMessageID(ctx)
			if err != nil || latest != -1 {
				t.Fatalf("empty LatestMessageID = %d, %v; want -1", latest, err)
			}

			msgs, err := chat.Messages(ctx, 0)
			if err != nil || len(msgs) != 0 {
				t.Fatalf("Messages on empty chat = %v, %v", msgs, err)
			}

			for i, text := range []string{"hi", "A. B. C.", "ok"} {
				role := "user"
				if i%2 == 1 {
					role = "assistant"
				}
				id, err := chat.Append(ctx, role, text)
				if err != nil {
					t.Fatalf("Append: %v", err)
				}
				if id != i {
					t.Errorf("Append id = %d, want %d", id, i)
				}
			}

			latest, _ = chat.LatestMessageID(ctx)
			if latest != 2 {
				t.Errorf("LatestMessageID = %d, want 2", latest)
			}

			msgs, err = chat.Messages(ctx, 1)
			if err != nil {
				t.Fatalf("Messages: %v", err)
			}
			want := model.ChatMessage{ID: 1, Role: "assistant", Text: "A. B. C."}
			if len(msgs) != 1 || msgs[0] != want {
				t.Fatalf("Messages(1) = %+v, want %+v", msgs, want)
			}

			if msgs, _ := chat.Messages(ctx, 7); len(msgs) != 0 {
				t.Errorf("Messages(7) = %+v, want empty", msgs)
			}

			if err := chat.SetMessages(ctx, []model.ChatMessage{{ID: 1, Text: "X. Y."}}); err != nil {
				t.Fatalf("SetMessages: %v", err)
			}
			msgs, _ = chat.Messages(ctx, 1)
			if msgs[0].Text != "X. Y." || msgs[0].Role != "assistant" {
				t.Errorf("after SetMessages = %+v", msgs[0])
			}

			err = chat.SetMessages(ctx, []model.ChatMessage{{ID: 0, Text: "changed"}, {ID: 9, Text: "nope"}})
			if !errors.Is(err, ErrUnknownMessage) {
				t.Fatalf("SetMessages unknown id err = %v, want ErrUnknownMessage", err)
			}
			msgs, _ = chat.Messages(ctx, 0)
			if msgs[0].Text != "hi" {
				t.Errorf("partial write: message 0 = %q, want %q", msgs[0].Text, "hi")
			}

			all, err := chat.All(ctx)
			if err != nil {
				t.Fatalf("All: %v", err)
			}
			if len(all) != 3 || all[2].Text != "ok" {
				t.Errorf("All = %+v", all)
			}
		})
	}
}

func TestSQLiteMemory(t *testing.T) {
	ctx := context.Background()
	chat, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer chat.Close()

	if _, err := chat.Append(ctx, "assistant", "hello"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id, _ := chat.LatestMessageID(ctx); id != 0 {
		t.Errorf("LatestMessageID = %d, want 0", id)
	}
}

func TestJSONChatReopensCurrentSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sessions, err := NewSessionStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	first, err := OpenJSONChat(sessions, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Append(ctx, "assistant", "Once upon a time"); err != nil {
		t.Fatal(err)
	}

	second, err := OpenJSONChat(sessions, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.SessionID() != first.SessionID() {
		t.Errorf("reopened session %q, want %q", second.SessionID(), first.SessionID())
	}
	msgs, _ := second.Messages(ctx, 0)
	if len(msgs) != 1 || msgs[0].Text != "Once upon a time" {
		t.Errorf("Messages = %+v", msgs)
	}

	// writes from another handle are visible
	if err := second.SetMessages(ctx, []model.ChatMessage{{ID: 0, Text: "Later"}}); err != nil {
		t.Fatal(err)
	}
	msgs, _ = first.Messages(ctx, 0)
	if msgs[0].Text != "Later" {
		t.Errorf("first handle sees %q, want %q", msgs[0].Text, "Later")
	}
}

func TestSessionStorage(t *testing.T) {
	sessions, err := NewSessionStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	s := &Session{Name: "story", Messages: []Message{{Role: "user", Content: "hi"}}}
	if err := sessions.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.ID == "" || s.CreatedAt.IsZero() {
		t.Fatalf("Save did not assign id/timestamps: %+v", s)
	}

	info, err := os.Stat(sessions.path(s.ID))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	list, err := sessions.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].MessageCount != 1 || list[0].Name != "story" {
		t.Errorf("List = %+v", list)
	}

	if err := sessions.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if sessions.Exists(s.ID) {
		t.Error("session still exists after Delete")
	}
}

func TestGenerateSessionName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "New Chat"},
		{"  hello\n world  ", "hello world"},
		{"一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二", "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十..."},
	}
	for _, tt := range tests {
		if got := GenerateSessionName(tt.in); got != tt.want {
			t.Errorf("GenerateSessionName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"json", false},
		{"", false},
		{"sqlite", false},
		{"redis", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{DataDirectory: t.TempDir(), Chat: config.ChatConfig{Backend: tt.backend}}
			chat, err := Open(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open err = %v, wantErr %v", err, tt.wantErr)
			}
			if chat != nil {
				chat.Close()
			}
		})
	}
}
