// Package socialledger parses socialledger flags and runs one ledger command.
package socialledger

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/socialledger/internal/platform/cmd"
	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/platform/kv/postgres"
	"github.com/louisbranch/socialledger/internal/platform/kv/sqlite"
	"github.com/louisbranch/socialledger/internal/platform/requestctx"
	"github.com/louisbranch/socialledger/internal/platform/telemetry"
	"github.com/louisbranch/socialledger/internal/services/social/app"
	"github.com/louisbranch/socialledger/internal/services/social/auth"
	"github.com/louisbranch/socialledger/internal/services/social/ledger"
)

const (
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
)

// Config holds socialledger command configuration.
type Config struct {
	Backend      string        `env:"SOCIAL_LEDGER_BACKEND" envDefault:"sqlite"`
	DBPath       string        `env:"SOCIAL_LEDGER_DB_PATH" envDefault:"data/socialledger.db"`
	PostgresDSN  string        `env:"SOCIAL_LEDGER_POSTGRES_DSN"`
	Caller       string        `env:"SOCIAL_LEDGER_CALLER"`
	FollowPolicy string        `env:"SOCIAL_LEDGER_FOLLOW_POLICY" envDefault:"multiset"`
	BumpHorizon  time.Duration `env:"SOCIAL_LEDGER_BUMP_HORIZON" envDefault:"720h"`
	Timeout      time.Duration `env:"SOCIAL_LEDGER_TIMEOUT" envDefault:"30s"`
	Audit        bool          `env:"SOCIAL_LEDGER_AUDIT"`

	Command string
	Args    []string
}

// ParseConfig parses environment and flags into Config. The first positional
// argument names the command; the rest are its arguments.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend (sqlite|postgres)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite ledger (default: SOCIAL_LEDGER_DB_PATH or data/socialledger.db)")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "postgres connection string for -backend postgres")
	fs.StringVar(&cfg.Caller, "as", cfg.Caller, "address the host authenticated for this call")
	fs.StringVar(&cfg.FollowPolicy, "follow-policy", cfg.FollowPolicy, "repeat follow handling (multiset|idempotent)")
	fs.DurationVar(&cfg.BumpHorizon, "bump-horizon", cfg.BumpHorizon, "retention extension applied by init")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.BoolVar(&cfg.Audit, "audit", cfg.Audit, "write one audit line per mutating call to stderr")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, fmt.Errorf("command is required (one of: %s)", strings.Join(commandNames(), ", "))
	}
	cfg.Command = rest[0]
	cfg.Args = rest[1:]
	return cfg, nil
}

// Run executes cfg.Command and writes its JSON result to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	cmd, ok := commands[cfg.Command]
	if !ok {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown command %q", cfg.Command))
	}
	if err := cmd.checkArgs(cfg.Args); err != nil {
		return err
	}
	if cmd.acting && strings.TrimSpace(cfg.Caller) == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("%s requires -as <address>", cfg.Command))
	}
	policy, err := ledger.ParseFollowPolicy(cfg.FollowPolicy)
	if err != nil {
		return err
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSocialLedger, func(ctx context.Context) error {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				fmt.Fprintf(errOut, "close store: %v\n", closeErr)
			}
		}()

		opts := []app.Option{
			app.WithAuthorizer(auth.CallerAuthorizer{}),
			app.WithFollowPolicy(policy),
			app.WithBumpHorizon(cfg.BumpHorizon),
		}
		if cfg.Audit {
			sink := telemetry.NewLogSink(log.New(errOut, "[AUDIT] ", 0))
			opts = append(opts, app.WithEmitter(telemetry.NewEmitter(sink)))
		}
		contract, err := app.New(store, opts...)
		if err != nil {
			return err
		}

		ctx = requestctx.WithCaller(ctx, strings.TrimSpace(cfg.Caller))
		result, err := cmd.run(ctx, contract, invocation{caller: strings.TrimSpace(cfg.Caller), args: cfg.Args})
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	})
}

func openStore(ctx context.Context, cfg Config) (kv.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", backendSQLite:
		path := strings.TrimSpace(cfg.DBPath)
		if path == "" {
			path = filepath.Join("data", "socialledger.db")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		return sqlite.Open(path)
	case backendPostgres:
		return postgres.Open(ctx, cfg.PostgresDSN)
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown backend %q", cfg.Backend))
	}
}

// ExitCode maps a Run error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		return 1
	}
	switch code.Category() {
	case apperrors.CategoryInvalidArgument:
		return 2
	case apperrors.CategoryFailedPrecondition:
		return 3
	case apperrors.CategoryOutOfRange:
		return 4
	case apperrors.CategoryPermissionDenied:
		return 5
	default:
		return 1
	}
}
