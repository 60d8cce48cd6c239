package config

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.AutoOptimize || s.DisableNotifications || s.DisabledWords != "" {
		t.Errorf("unexpected boolean/word defaults: %+v", s)
	}
	if s.Temperature != 0.7 || s.MaxTokens != 2000 || s.TopP != 1 || s.TopK != 0 {
		t.Errorf("unexpected generation defaults: %+v", s)
	}
	if got := len(strings.Split(s.RegexFilters, "\n")); got != 4 {
		t.Errorf("default rules = %d, want 4", got)
	}
	if fixed := s.Normalize(); len(fixed) != 0 {
		t.Errorf("defaults needed normalizing: %v", fixed)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Settings)
		field string
	}{
		{"temperature high", func(s *Settings) { s.Temperature = 3 }, "temperature"},
		{"temperature negative", func(s *Settings) { s.Temperature = -1 }, "temperature"},
		{"max tokens zero", func(s *Settings) { s.MaxTokens = 0 }, "max_tokens"},
		{"top p", func(s *Settings) { s.TopP = 1.5 }, "top_p"},
		{"top k", func(s *Settings) { s.TopK = -2 }, "top_k"},
		{"regex timeout", func(s *Settings) { s.RegexTimeoutMS = 0 }, "regex_timeout_ms"},
	}

	def := DefaultSettings()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.edit(&s)
			fixed := s.Normalize()
			if len(fixed) != 1 || fixed[0] != tt.field {
				t.Fatalf("fixed = %v, want [%s]", fixed, tt.field)
			}
			if s != def {
				t.Errorf("normalized = %+v, want defaults", s)
			}
		})
	}
}

func TestSettingsPatchApply(t *testing.T) {
	words := "a,b"
	temp := 0.2
	p := SettingsPatch{DisabledWords: &words, Temperature: &temp}

	got := p.Apply(DefaultSettings())
	if got.DisabledWords != "a,b" || got.Temperature != 0.2 {
		t.Errorf("Apply = %+v", got)
	}
	if got.MaxTokens != 2000 || got.Prompts != DefaultSettings().Prompts {
		t.Errorf("Apply touched untouched fields: %+v", got)
	}

	full := DefaultSettings()
	full.AutoOptimize = true
	full.TopK = 40
	full.Prompts.Main = "main"
	if got := PatchFrom(full).Apply(DefaultSettings()); got != full {
		t.Errorf("PatchFrom round trip = %+v, want %+v", got, full)
	}
}

func TestFileSettingsStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileSettingsStore(dir)

	s, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings on missing file: %v", err)
	}
	if s != DefaultSettings() {
		t.Errorf("missing file settings = %+v, want defaults", s)
	}

	auto := true
	words := "讨厌,然而"
	if err := store.SaveSettings(ctx, SettingsPatch{AutoOptimize: &auto, DisabledWords: &words}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("settings file mode = %o, want 600", perm)
	}

	s, err = store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if !s.AutoOptimize || s.DisabledWords != words || s.Temperature != 0.7 {
		t.Errorf("reloaded settings = %+v", s)
	}

	// out-of-range values on disk come back as defaults
	if err := os.WriteFile(store.Path(), []byte("temperature = 9.0\nmax_tokens = 50\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s, err = store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.Temperature != 0.7 || s.MaxTokens != 50 || s.RegexFilters != DefaultRegexFilters {
		t.Errorf("normalized settings = %+v", s)
	}

	if err := os.WriteFile(store.Path(), []byte("temperature = ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Settings(ctx); err == nil {
		t.Error("expected parse error for corrupt file")
	}
	if err := store.SaveSettings(ctx, SettingsPatch{AutoOptimize: &auto}); err != nil {
		t.Fatalf("SaveSettings over corrupt file: %v", err)
	}
	if s, err := store.Settings(ctx); err != nil || !s.AutoOptimize {
		t.Errorf("after rewrite = %+v, %v", s, err)
	}
}

func TestFileSettingsStoreLogsWarnings(t *testing.T) {
	prevLog, prevDebug := Log, Debug
	t.Cleanup(func() { Log, Debug = prevLog, prevDebug })

	var buf bytes.Buffer
	SetLogOutput(&buf, zerolog.DebugLevel)

	ctx := context.Background()
	store := NewFileSettingsStore(t.TempDir())

	if err := os.WriteFile(store.Path(), []byte("temperature = 9.0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Settings(ctx); err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "invalid settings replaced with defaults") ||
		!strings.Contains(out, `"component":"settings"`) || !strings.Contains(out, "temperature") {
		t.Errorf("normalize warning not logged: %q", out)
	}

	buf.Reset()
	if err := os.WriteFile(store.Path(), []byte("temperature = ["), 0600); err != nil {
		t.Fatal(err)
	}
	auto := true
	if err := store.SaveSettings(ctx, SettingsPatch{AutoOptimize: &auto}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if !strings.Contains(buf.String(), "rewriting unreadable settings file") {
		t.Errorf("rewrite warning not logged: %q", buf.String())
	}
}

func TestExportImportSettings(t *testing.T) {
	s := DefaultSettings()
	s.DisabledWords = "然而"
	s.TopK = 20

	for _, format := range []string{"toml", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := ExportSettings(&buf, s, format); err != nil {
				t.Fatalf("ExportSettings: %v", err)
			}
			got, err := ImportSettings(&buf, format)
			if err != nil {
				t.Fatalf("ImportSettings: %v", err)
			}
			if got != s {
				t.Errorf("imported = %+v, want %+v", got, s)
			}
		})
	}

	if err := ExportSettings(&bytes.Buffer{}, s, "xml"); err == nil {
		t.Error("expected error for unknown export format")
	}

	partial, err := ImportSettings(strings.NewReader(`{"auto_optimize": true}`), "json")
	if err != nil {
		t.Fatal(err)
	}
	if !partial.AutoOptimize || partial.MaxTokens != 2000 {
		t.Errorf("partial import = %+v", partial)
	}
}

func TestPlainTextCredentials(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.Load(dir); err != nil {
		t.Fatalf("Load on empty dir: %v", err)
	}
	store.Set("openai", "sk-1")
	store.Set("anthropic", "sk-2")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "credentials.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials mode = %o, want 600", perm)
	}

	reloaded := NewCredentialStore(SecurityPlainText, "")
	if err := reloaded.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Get("openai"); got != "sk-1" {
		t.Errorf("Get(openai) = %q", got)
	}
	if got := reloaded.Providers(); len(got) != 2 || got[0] != "anthropic" {
		t.Errorf("Providers = %v", got)
	}

	reloaded.Delete("openai")
	if reloaded.Get("openai") != "" {
		t.Error("Delete did not remove key")
	}
}

func TestAESGCMRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}

	sealed, err := encryptAESGCM([]byte("secret"), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	plain, err := decryptAESGCM(sealed, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(plain) != "secret" {
		t.Errorf("decrypted %q", plain)
	}

	sealed[len(sealed)-1] ^= 0xff
	if _, err := decryptAESGCM(sealed, key); err == nil {
		t.Error("tampered ciphertext decrypted")
	}
	if _, err := decryptAESGCM([]byte{1, 2}, key); err == nil {
		t.Error("short ciphertext decrypted")
	}
}

func TestDeriveAESKeyFromSSH(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	k1, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k2, _ := DeriveAESKeyFromSSH(signer)
	if len(k1) != 32 || !bytes.Equal(k1, k2) {
		t.Errorf("ed25519 key derivation not stable")
	}

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	ecSigner, err := ssh.NewSignerFromKey(ecKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DeriveAESKeyFromSSH(ecSigner); err == nil {
		t.Error("expected ECDSA key to be rejected")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("RPO_TEST_DIR", "/tmp/rpo")
	if got := ExpandPath("$RPO_TEST_DIR/data"); got != "/tmp/rpo/data" {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q", got)
	}
	if got := ExpandPath("~/x"); !strings.HasSuffix(got, "/x") || strings.HasPrefix(got, "~") {
		t.Errorf("ExpandPath(~/x) = %q", got)
	}
}
