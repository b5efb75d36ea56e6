// Command notes manages local notes and sends them to the note proxy for
// revision or synthesis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/internal/client"
	"github.com/Mikele-Kochas/SmartNotebook/internal/notestore"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
)

const usage = `usage: notes [global flags] <command> [flags]

commands:
  list                                   list notes
  add -title T -content C                add a note
  edit -id N [-title T] [-content C]     edit a note
  delete -id N                           delete a note
  revise -id N -mode M [-prompt P] [-apply]
                                         revise a note (light, deep, custom)
  synthesize -ids N,M -mode M [-prompt P] [-save -title T]
                                         combine notes (coherent_text, summary, custom)
  backup                                 snapshot the note store

global flags:
`

type app struct {
	store      notestore.Store
	proxy      *client.Client
	collection string
	timeout    time.Duration
	out        io.Writer
}

func main() {
	global := flag.NewFlagSet("notes", flag.ExitOnError)
	serverURL := global.String("server", envOr("NOTES_PROXY_URL", "http://localhost:3000"), "note proxy base URL")
	dataDir := global.String("data", envOr("NOTES_DATA_DIR", defaultDataDir()), "note store directory")
	collection := global.String("collection", notestore.DefaultCollection, "note collection")
	timeout := global.Duration("timeout", 90*time.Second, "proxy request timeout")
	logLevel := global.String("log-level", "warn", "log level")
	global.Usage = func() {
		fmt.Fprint(global.Output(), usage)
		global.PrintDefaults()
	}
	_ = global.Parse(os.Args[1:])

	if err := logger.Init(*logLevel, "text"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	store := notestore.NewDiskStore(*dataDir)
	if err := store.Init(); err != nil {
		logger.Fatalf("Failed to open note store: %v", err)
	}
	defer store.Close()

	a := &app{
		store:      store,
		proxy:      client.New(*serverURL),
		collection: *collection,
		timeout:    *timeout,
		out:        os.Stdout,
	}

	if err := a.run(global.Arg(0), global.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "notes: %v\n", err)
		store.Close()
		os.Exit(1)
	}
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "list":
		return a.list()
	case "add":
		return a.add(args)
	case "edit":
		return a.edit(args)
	case "delete":
		return a.remove(args)
	case "revise":
		return a.revise(args)
	case "synthesize":
		return a.synthesize(args)
	case "backup":
		dir, err := a.store.Backup()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "backup written to %s\n", dir)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) list() error {
	notes, err := a.store.List(a.collection)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "no notes")
		return nil
	}
	for _, n := range notes {
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(a.out, "%d\t%s\t%s\n", n.ID, title, preview(n.Content, 60))
	}
	return nil
}

func (a *app) add(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "note title")
	content := fs.String("content", "", "note content")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *content == "" {
		return errors.New("add: -content is required")
	}

	note, err := a.store.Add(a.collection, *title, *content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added note %d\n", note.ID)
	return nil
}

func (a *app) edit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	id := fs.Int64("id", 0, "note id")
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new content")
	if err := fs.Parse(args); err != nil {
		return err
	}

	note, err := a.store.Get(a.collection, *id)
	if err != nil {
		return fmt.Errorf("edit %d: %w", *id, err)
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["title"] {
		note.Title = *title
	}
	if set["content"] {
		note.Content = *content
	}
	if err := a.store.Update(a.collection, note); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated note %d\n", note.ID)
	return nil
}

func (a *app) remove(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "note id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.store.Delete(a.collection, *id); err != nil {
		return fmt.Errorf("delete %d: %w", *id, err)
	}
	fmt.Fprintf(a.out, "deleted note %d\n", *id)
	return nil
}

func (a *app) revise(args []string) error {
	fs := flag.NewFlagSet("revise", flag.ContinueOnError)
	id := fs.Int64("id", 0, "note id")
	mode := fs.String("mode", "light", "light, deep or custom")
	instruction := fs.String("prompt", "", "instruction for custom mode")
	apply := fs.Bool("apply", false, "replace the note content with the result")
	if err := fs.Parse(args); err != nil {
		return err
	}

	note, err := a.store.Get(a.collection, *id)
	if err != nil {
		return fmt.Errorf("revise %d: %w", *id, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	revised, err := a.proxy.ReviseNote(ctx, note.Content, *mode, *instruction)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, revised)
	if *apply {
		note.Content = revised
		if err := a.store.Update(a.collection, note); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "note %d updated\n", note.ID)
	}
	return nil
}

func (a *app) synthesize(args []string) error {
	fs := flag.NewFlagSet("synthesize", flag.ContinueOnError)
	idList := fs.String("ids", "", "comma separated note ids, in order")
	mode := fs.String("mode", "coherent_text", "coherent_text, summary or custom")
	instruction := fs.String("prompt", "", "instruction for custom mode")
	save := fs.Bool("save", false, "store the result as a new note")
	title := fs.String("title", "", "title of the saved note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids, err := parseIDs(*idList)
	if err != nil {
		return err
	}
	notes := make([]notestore.Note, 0, len(ids))
	for _, id := range ids {
		n, err := a.store.Get(a.collection, id)
		if err != nil {
			return fmt.Errorf("synthesize %d: %w", id, err)
		}
		notes = append(notes, n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	synthesized, err := a.proxy.SynthesizeNotes(ctx, notes, *mode, *instruction)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, synthesized)
	if *save {
		note, err := a.store.Add(a.collection, *title, synthesized)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved as note %d\n", note.ID)
	}
	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid note id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smartnotebook"
	}
	return filepath.Join(home, ".smartnotebook")
}
