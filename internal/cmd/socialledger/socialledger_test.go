package socialledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/services/social/auth"
	"github.com/louisbranch/socialledger/internal/services/social/ledger"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("socialledger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestParseConfigDefaults(t *testing.T) {
	unsetEnv(t, "SOCIAL_LEDGER_BACKEND", "SOCIAL_LEDGER_DB_PATH", "SOCIAL_LEDGER_TIMEOUT", "SOCIAL_LEDGER_BUMP_HORIZON")

	cfg, err := ParseConfig(newFlagSet(), []string{"status"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Fatalf("backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.DBPath != "data/socialledger.db" {
		t.Fatalf("db path = %q, want data/socialledger.db", cfg.DBPath)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.BumpHorizon != 720*time.Hour {
		t.Fatalf("bump horizon = %v, want 720h", cfg.BumpHorizon)
	}
	if cfg.Command != "status" || len(cfg.Args) != 0 {
		t.Fatalf("command = %q args = %v", cfg.Command, cfg.Args)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SOCIAL_LEDGER_CALLER", "GENV")
	t.Setenv("SOCIAL_LEDGER_FOLLOW_POLICY", "multiset")

	cfg, err := ParseConfig(newFlagSet(), []string{
		"-as", "GFLAG",
		"-follow-policy", "idempotent",
		"-db-path", "/tmp/ledger.db",
		"post", "hello world", "ipfs://x",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Caller != "GFLAG" {
		t.Fatalf("caller = %q, want GFLAG", cfg.Caller)
	}
	if cfg.FollowPolicy != "idempotent" {
		t.Fatalf("follow policy = %q, want idempotent", cfg.FollowPolicy)
	}
	if cfg.Command != "post" || len(cfg.Args) != 2 || cfg.Args[0] != "hello world" {
		t.Fatalf("command = %q args = %v", cfg.Command, cfg.Args)
	}
}

func TestParseConfigRequiresCommand(t *testing.T) {
	if _, err := ParseConfig(newFlagSet(), nil); err == nil {
		t.Fatal("expected missing command error")
	}
}

type runner struct {
	t      *testing.T
	dbPath string
}

func newRunner(t *testing.T) runner {
	t.Helper()
	t.Setenv("SOCIAL_LEDGER_OTEL_ENDPOINT", "")
	return runner{t: t, dbPath: filepath.Join(t.TempDir(), "nested", "ledger.db")}
}

func (r runner) run(caller string, args ...string) ([]byte, error) {
	r.t.Helper()
	cfg := Config{
		Backend:      "sqlite",
		DBPath:       r.dbPath,
		Caller:       caller,
		FollowPolicy: "multiset",
		BumpHorizon:  time.Hour,
		Command:      args[0],
		Args:         args[1:],
	}
	var out bytes.Buffer
	err := Run(context.Background(), cfg, &out, io.Discard)
	return out.Bytes(), err
}

func (r runner) mustRun(caller string, args ...string) []byte {
	r.t.Helper()
	out, err := r.run(caller, args...)
	if err != nil {
		r.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return out
}

func TestRunScenario(t *testing.T) {
	r := newRunner(t)

	status := decode[map[string]any](t, r.mustRun("", "init"))
	if status["initialized"] != true {
		t.Fatalf("init status = %v", status)
	}

	post := decode[storage.Post](t, r.mustRun("GALICE", "post", "hi"))
	if post.ID != 1 || post.Author != "GALICE" || post.Text != "hi" {
		t.Fatalf("post = %+v", post)
	}

	comment := decode[storage.Comment](t, r.mustRun("GBOB", "comment", "1", "nice"))
	if comment.ID != 1 || comment.Author != "GBOB" || comment.Text != "nice" {
		t.Fatalf("comment = %+v", comment)
	}

	for _, want := range []uint32{1, 0} {
		likes := decode[map[string]uint32](t, r.mustRun("GBOB", "like", "1"))
		if likes["likes"] != want {
			t.Fatalf("likes = %v, want %d", likes, want)
		}
	}

	follow := decode[map[string]uint32](t, r.mustRun("GBOB", "follow", "GALICE"))
	if follow["followers"] != 1 {
		t.Fatalf("follow = %v, want 1 follower", follow)
	}
	followStatus := decode[map[string]bool](t, r.mustRun("", "follow-status", "GALICE", "GBOB"))
	if !followStatus["following"] {
		t.Fatal("expected GBOB to follow GALICE")
	}

	followers := decode[listResult[storage.Address]](t, r.mustRun("", "followers", "GALICE"))
	if followers.Count != 1 || len(followers.Items) != 1 || followers.Items[0] != "GBOB" {
		t.Fatalf("followers = %+v", followers)
	}
	comments := decode[listResult[storage.Comment]](t, r.mustRun("", "comments", "1", "1", "5"))
	if comments.Count != 1 || len(comments.Items) != 1 {
		t.Fatalf("comments = %+v", comments)
	}
	posts := decode[listResult[storage.Post]](t, r.mustRun("", "user-posts", "GALICE"))
	if posts.Count != 1 || posts.Items[0] != post {
		t.Fatalf("user posts = %+v", posts)
	}

	info := decode[storage.UserInfo](t, r.mustRun("GALICE", "set-profile", "Alice", "bio", "ipfs://a"))
	if info.Name != "Alice" {
		t.Fatalf("profile = %+v", info)
	}
	stored := decode[storage.UserInfo](t, r.mustRun("", "profile", "GALICE"))
	if stored != info {
		t.Fatalf("stored profile = %+v, want %+v", stored, info)
	}
}

func TestRunErrors(t *testing.T) {
	r := newRunner(t)
	r.mustRun("", "init")

	tests := []struct {
		name     string
		caller   string
		args     []string
		wantCode apperrors.Code
		wantExit int
	}{
		{name: "reinitialize", args: []string{"init"}, wantCode: apperrors.CodeAlreadyInitialized, wantExit: 3},
		{name: "missing post", args: []string{"post-get", "1"}, wantCode: apperrors.CodeOutOfRange, wantExit: 4},
		{name: "self follow", caller: "GALICE", args: []string{"follow", "GALICE"}, wantCode: apperrors.CodeSelfFollowNotAllowed, wantExit: 2},
		{name: "acting without caller", args: []string{"post", "hi"}, wantCode: apperrors.CodeInvalidArgument, wantExit: 2},
		{name: "unknown command", args: []string{"delete-post", "1"}, wantCode: apperrors.CodeInvalidArgument, wantExit: 2},
		{name: "bad number", args: []string{"post-get", "one"}, wantCode: apperrors.CodeInvalidArgument, wantExit: 2},
		{name: "too many args", args: []string{"likes", "1", "2"}, wantCode: apperrors.CodeInvalidArgument, wantExit: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.run(tc.caller, tc.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.CodeOf(err); got != tc.wantCode {
				t.Fatalf("code = %s, want %s (%v)", got, tc.wantCode, err)
			}
			if got := ExitCode(err); got != tc.wantExit {
				t.Fatalf("exit code = %d, want %d", got, tc.wantExit)
			}
		})
	}
}

func TestRunRejectsUnknownBackendAndPolicy(t *testing.T) {
	t.Setenv("SOCIAL_LEDGER_OTEL_ENDPOINT", "")
	cfg := Config{Backend: "bolt", DBPath: filepath.Join(t.TempDir(), "x.db"), Command: "status"}
	if err := Run(context.Background(), cfg, io.Discard, io.Discard); apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("expected invalid backend error, got %v", err)
	}
	cfg = Config{Backend: "sqlite", DBPath: filepath.Join(t.TempDir(), "x.db"), FollowPolicy: "set", Command: "status"}
	if err := Run(context.Background(), cfg, io.Discard, io.Discard); apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("expected invalid policy error, got %v", err)
	}
}

func TestRunAuditWritesToErrOut(t *testing.T) {
	t.Setenv("SOCIAL_LEDGER_OTEL_ENDPOINT", "")
	cfg := Config{
		Backend: "sqlite",
		DBPath:  filepath.Join(t.TempDir(), "ledger.db"),
		Audit:   true,
		Command: "init",
	}
	var errOut bytes.Buffer
	if err := Run(context.Background(), cfg, io.Discard, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	line := errOut.String()
	if !strings.Contains(line, "[AUDIT] INFO initialize") || !strings.Contains(line, "outcome=ok") {
		t.Fatalf("audit output = %q", line)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: 0},
		{err: errors.New("plain"), want: 1},
		{err: ledger.ErrNotInitialized, want: 3},
		{err: auth.ErrUnauthorized, want: 5},
		{err: apperrors.New(apperrors.CodeStoreInconsistent, "broken"), want: 1},
	}
	for _, tc := range tests {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestCommandNamesSorted(t *testing.T) {
	names := commandNames()
	if len(names) != len(commands) {
		t.Fatalf("names = %d, commands = %d", len(names), len(commands))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
