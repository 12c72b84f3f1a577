// Package migrate drives the Alembic migration tool as an external process:
// it points Alembic's config at the database and at the generated models
// file, then asks it to auto-generate and apply revisions. All schema
// diffing happens inside Alembic; nothing here re-enters the generator.
package migrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Substitution points inside Alembic's own files. Only these two are
// touched: the connection-string line in alembic.ini and the metadata-hook
// sentinel in env.py.
var (
	urlLineRe        = regexp.MustCompile(`(?m)^sqlalchemy\.url = .*$`)
	metadataSentinel = "target_metadata = None"
)

// Alembic orchestrates one Alembic environment.
type Alembic struct {
	Dir         string // Script directory (default "alembic")
	Ini         string // Config file path (default "alembic.ini")
	DatabaseURL string // Connection string written into the config
	ModelsPath  string // Generated models file env.py will load
}

// New returns an Alembic orchestrator with the default directory layout.
func New(databaseURL, modelsPath string) *Alembic {
	return &Alembic{
		Dir:         "alembic",
		Ini:         "alembic.ini",
		DatabaseURL: databaseURL,
		ModelsPath:  modelsPath,
	}
}

// Init creates the Alembic environment if the script directory is absent.
func (a *Alembic) Init(ctx context.Context) error {
	if _, err := os.Stat(a.Dir); err == nil {
		return nil
	}
	return a.run(ctx, false, "init", a.Dir)
}

// Configure rewrites the two substitution points: the sqlalchemy.url line in
// the config file and the target_metadata sentinel in env.py. It is
// idempotent; reconfiguring an already-hooked environment only refreshes the
// connection string.
func (a *Alembic) Configure() error {
	ini, err := os.ReadFile(a.Ini)
	if err != nil {
		return fmt.Errorf("migrate: reading %s: %w", a.Ini, err)
	}
	if !urlLineRe.Match(ini) {
		return fmt.Errorf("migrate: no sqlalchemy.url line in %s", a.Ini)
	}
	ini = urlLineRe.ReplaceAllLiteral(ini, []byte("sqlalchemy.url = "+a.DatabaseURL))
	if err := os.WriteFile(a.Ini, ini, 0o644); err != nil {
		return fmt.Errorf("migrate: writing %s: %w", a.Ini, err)
	}

	envPath := filepath.Join(a.Dir, "env.py")
	env, err := os.ReadFile(envPath)
	if err != nil {
		return fmt.Errorf("migrate: reading %s: %w", envPath, err)
	}
	switch {
	case bytes.Contains(env, []byte(metadataSentinel)):
		env = bytes.Replace(env, []byte(metadataSentinel), []byte(a.metadataHook()), 1)
		if err := os.WriteFile(envPath, env, 0o644); err != nil {
			return fmt.Errorf("migrate: writing %s: %w", envPath, err)
		}
	case bytes.Contains(env, []byte("target_metadata = models.Base.metadata")):
		// Hook already injected by an earlier Configure.
	default:
		return fmt.Errorf("migrate: metadata sentinel %q not found in %s", metadataSentinel, envPath)
	}
	return nil
}

// metadataHook is the Python block swapped in for the sentinel: it loads the
// generated models file and hands its metadata to Alembic's autogenerate.
func (a *Alembic) metadataHook() string {
	return strings.Join([]string{
		"import importlib.util",
		fmt.Sprintf("_spec = importlib.util.spec_from_file_location(\"models\", %q)", a.ModelsPath),
		"models = importlib.util.module_from_spec(_spec)",
		"_spec.loader.exec_module(models)",
		"target_metadata = models.Base.metadata",
	}, "\n")
}

// Revision asks Alembic to auto-generate a revision by diffing the loaded
// metadata against the live database.
func (a *Alembic) Revision(ctx context.Context, message string) error {
	if message == "" {
		message = "auto-generated migration"
	}
	return a.run(ctx, true, "revision", "--autogenerate", "-m", message)
}

// Upgrade applies all pending revisions.
func (a *Alembic) Upgrade(ctx context.Context) error {
	return a.run(ctx, true, "upgrade", "head")
}

// Sync runs the whole flow: environment init, configuration, revision
// generation and apply.
func (a *Alembic) Sync(ctx context.Context, message string) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	if err := a.Configure(); err != nil {
		return err
	}
	if err := a.Revision(ctx, message); err != nil {
		return err
	}
	return a.Upgrade(ctx)
}

// run invokes the alembic binary. Failures carry the subprocess's stderr so
// the caller sees Alembic's own diagnostic.
func (a *Alembic) run(ctx context.Context, withConfig bool, args ...string) error {
	argv := args
	if withConfig {
		argv = append([]string{"-c", a.Ini}, args...)
	}
	cmd := exec.CommandContext(ctx, "alembic", argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("migrate: alembic not found on PATH: %w", err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("migrate: alembic %s: %v: %s", strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("migrate: alembic %s: %w", strings.Join(args, " "), err)
	}
	return nil
}
