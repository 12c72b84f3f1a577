// modelgen generates SQLAlchemy model source from a YAML schema and,
// optionally, drives Alembic to apply the schema to a live database.
// Simplest invocation: modelgen -schema schema.yml -out models.py
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/migrate"
	"github.com/syssam/modelgen/schema"
)

var (
	schemaPath = flag.String("schema", "schema.yml", "path to the YAML schema")
	outPath    = flag.String("out", "models.py", "path for the generated SQLAlchemy models")
	goOut      = flag.String("go-out", "", "optional path for generated Go bindings")
	goPackage  = flag.String("go-package", "models", "package name for generated Go bindings")
	baseName   = flag.String("base", "Base", "name of the declarative base binding")
	dbURL      = flag.String("db-url", "", "database url written into the alembic config")
	doMigrate  = flag.Bool("migrate", false, "run alembic autogenerate and upgrade after generating")
	message    = flag.String("message", "", "alembic revision message")
	watchFlag  = flag.Bool("watch", false, "regenerate whenever the schema file changes")
	initFlag   = flag.Bool("init", false, "write a sample schema if the schema file is missing")
)

const sampleSchema = `# Sample schema for modelgen.
tables:
  User:
    table_name: users
    description: "Registered application users."
    columns:
      id: {type: Integer, primary_key: true, autoincrement: true, comment: "User ID"}
      name: {type: String, length: 100, nullable: false, comment: "User name"}
      email: {type: String, length: 255, unique: true, nullable: false, comment: "Email address"}
      created_at: {type: DateTime, default: 'func.now()', comment: "Creation time"}
  Product:
    table_name: products
    description: "Products offered for sale."
    columns:
      id: {type: Integer, primary_key: true, autoincrement: true, comment: "Product ID"}
      name: {type: String, length: 255, nullable: false, comment: "Product name"}
      price: {type: Integer, nullable: false, default: 0, comment: "Unit price"}
      category: {type: String, length: 50, nullable: true, index: true, comment: "Product category"}
      stock_quantity: {type: Integer, nullable: false, default: 0, comment: "Units in stock"}
`

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if *initFlag {
		if _, err := os.Stat(*schemaPath); os.IsNotExist(err) {
			if err := os.WriteFile(*schemaPath, []byte(sampleSchema), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote sample schema to %s\n", *schemaPath)
		}
	}
	if err := generate(); err != nil {
		return err
	}
	if *doMigrate {
		if *dbURL == "" {
			return fmt.Errorf("modelgen: -migrate requires -db-url")
		}
		models, err := filepath.Abs(*outPath)
		if err != nil {
			return err
		}
		if err := migrate.New(*dbURL, models).Sync(context.Background(), *message); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "database schema is up to date")
	}
	if *watchFlag {
		return watch()
	}
	return nil
}

// generate runs one full generation pass and writes the outputs atomically.
func generate() error {
	s, err := schema.LoadFile(*schemaPath)
	if err != nil {
		return err
	}
	out, err := gen.FromSchema(s, gen.WithBaseName(*baseName))
	if err != nil {
		return err
	}
	if err := gen.WriteFile(*outPath, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", *outPath)
	if *goOut != "" {
		src, err := gen.GenerateGo(s, *goPackage)
		if err != nil {
			return err
		}
		if err := gen.WriteFile(*goOut, src); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *goOut)
	}
	return nil
}

// watch regenerates on every change to the schema file until interrupted.
// A failed pass reports the error and keeps watching; the previous output
// stays in place.
func watch() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Watch the directory, not the file: editors replace files on save and
	// a watch on the old inode would go stale.
	if err := watcher.Add(filepath.Dir(*schemaPath)); err != nil {
		return err
	}
	target := filepath.Clean(*schemaPath)
	fmt.Fprintf(os.Stderr, "watching %s\n", target)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				// Saves arrive as bursts of events; settle, then drain
				// before regenerating once.
				time.Sleep(50 * time.Millisecond)
				drain(watcher)
				if err := generate(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "modelgen: watch: %v\n", err)
			}
		}
	})
	return g.Wait()
}

func drain(w *fsnotify.Watcher) {
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
