// Package main provides the brainstem command-line interface to a local
// Joplin instance: capture notes, manage tags, and run the one-time
// authorisation flow.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brainstemapp/brainstem/brain"
	"github.com/brainstemapp/brainstem/internal/config"
	"github.com/brainstemapp/brainstem/internal/logger"
	"github.com/brainstemapp/brainstem/joplin"
)

const usage = `brainstem - capture and organise notes in a local Joplin instance

Usage:
  brainstem [flags] <command> [args]

Commands:
  ping                          Check that the Joplin Data API is reachable
  auth                          Run the interactive authorisation flow
  capture <folder/path> <title> [body]
                                Create a note, creating the folder path as needed
  notes [folder-id]             List notes, optionally within one folder
  search <query>                Search notes
  tags [note-id]                List all tags, or the tags on one note
  tag add <note-id> <title>     Attach a tag to a note, creating it if missing
  tag rm <note-id> <title>      Detach a tag from a note
  tag set <note-id> <titles...> Replace a note's tags with exactly these

Flags:
  -url        Data API base URL (default http://localhost:41184)
  -token      API token (or BRAINSTEM_TOKEN)
  -page-size  Items per page for list requests
  -timeout    Per-request timeout, e.g. 30s
  -log-level  debug, info, warn, error
  -env-file   Path to .env file (default .env)
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "brainstem: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags config.Flags
	fs := flag.NewFlagSet("brainstem", flag.ExitOnError)
	fs.StringVar(&flags.BaseURL, "url", "", "Data API base URL")
	fs.StringVar(&flags.Token, "token", "", "API token")
	fs.StringVar(&flags.PageSize, "page-size", "", "Items per page for list requests")
	fs.StringVar(&flags.Timeout, "timeout", "", "Per-request timeout (e.g. 30s)")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&flags.EnvFile, "env-file", "", "Path to .env file")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.Logger.Level),
		Format: cfg.Logger.Format,
	})

	client, err := joplin.New(joplin.Options{
		BaseURL:  cfg.Joplin.BaseURL,
		Token:    cfg.Joplin.Token,
		PageSize: cfg.Joplin.PageSize,
		Timeout:  cfg.Joplin.Timeout,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &app{client: client, brain: brain.New(client, log), log: log}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "ping":
		return app.ping(ctx)
	case "auth":
		return app.auth(ctx)
	case "capture":
		return app.capture(ctx, args)
	case "notes":
		return app.notes(ctx, args)
	case "search":
		return app.search(ctx, args)
	case "tags":
		return app.tags(ctx, args)
	case "tag":
		return app.tag(ctx, args)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type app struct {
	client *joplin.Client
	brain  *brain.Brain
	log    *slog.Logger
}

func (a *app) ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Printf("Joplin is up at %s\n", a.client.BaseURL())
	return nil
}

// auth runs the interactive grant flow and prints the issued API token so the
// user can store it in BRAINSTEM_TOKEN or a .env file.
func (a *app) auth(ctx context.Context) error {
	authToken, err := a.client.RequestAuthToken(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Authorisation requested. Accept the prompt in the Joplin application...")

	token, err := a.client.AwaitAuthToken(ctx, authToken, time.Second)
	if err != nil {
		if errors.Is(err, joplin.ErrAuthRejected) {
			return errors.New("authorisation was rejected in the Joplin application")
		}
		return err
	}

	fmt.Println("Authorisation granted. Add this to your environment:")
	fmt.Printf("\n  BRAINSTEM_TOKEN=%s\n", token)
	return nil
}

func (a *app) capture(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: capture <folder/path> <title> [body]")
	}
	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}
	note, err := a.brain.Capture(ctx, args[0], args[1], body)
	if err != nil {
		return err
	}
	fmt.Printf("Created note %s: %s\n", note.ID, note.Title)
	return nil
}

func (a *app) notes(ctx context.Context, args []string) error {
	seq := a.client.Notes(ctx, nil)
	if len(args) > 0 {
		seq = a.client.FolderNotes(ctx, args[0], nil)
	}
	count := 0
	for note, err := range seq {
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", note.ID, note.Title)
		count++
	}
	a.log.Debug("listed notes", "count", count)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <query>")
	}
	query := strings.Join(args, " ")
	for note, err := range a.client.SearchNotes(ctx, query, nil) {
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", note.ID, note.Title)
	}
	return nil
}

func (a *app) tags(ctx context.Context, args []string) error {
	if len(args) > 0 {
		titles, err := a.brain.NoteTagTitles(ctx, args[0])
		if err != nil {
			return err
		}
		for _, title := range titles {
			fmt.Println(title)
		}
		return nil
	}
	for tag, err := range a.client.Tags(ctx, nil) {
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", tag.ID, tag.Title)
	}
	return nil
}

func (a *app) tag(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: tag add|rm|set <note-id> <title...>")
	}
	sub, noteID := args[0], args[1]
	switch sub {
	case "add":
		tag, err := a.brain.TagNote(ctx, noteID, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Tagged with %s (%s)\n", tag.Title, tag.ID)
		return nil
	case "rm":
		if err := a.brain.UntagNote(ctx, noteID, args[2]); err != nil {
			return err
		}
		fmt.Printf("Removed tag %s\n", args[2])
		return nil
	case "set":
		if err := a.brain.ReplaceNoteTags(ctx, noteID, args[2:]); err != nil {
			return err
		}
		fmt.Printf("Note now has tags: %s\n", strings.Join(args[2:], ", "))
		return nil
	default:
		return fmt.Errorf("unknown tag subcommand %q", sub)
	}
}
