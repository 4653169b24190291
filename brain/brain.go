// Package brain composes Joplin Data API calls into the higher-level
// operations a second-brain workflow actually performs: tagging a note,
// reconciling a note's tag set, filing notes into folder paths.
//
// Brain holds no state of its own; every operation is defined purely by the
// sequence of client calls it issues, and operations that name a no-op
// outcome (tagging an already-tagged note) issue no redundant calls at all.
package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brainstemapp/brainstem/joplin"
)

// Facade errors.
var (
	ErrEmptyTagTitle   = errors.New("brain: tag title is empty")
	ErrEmptyFolderPath = errors.New("brain: folder path is empty")
)

// Brain is an opinionated facade over one Joplin client.
type Brain struct {
	client *joplin.Client
	logger *slog.Logger
}

// New creates a Brain. A nil logger discards.
func New(client *joplin.Client, logger *slog.Logger) *Brain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Brain{client: client, logger: logger}
}

// EnsureTag returns the tag with the given title, creating it if missing.
// Matching is case-insensitive because the application stores tag titles
// lowercased. The second return reports whether the tag was created.
func (b *Brain) EnsureTag(ctx context.Context, title string) (*joplin.Tag, bool, error) {
	want := normalizeTag(title)
	if want == "" {
		return nil, false, ErrEmptyTagTitle
	}

	for tag, err := range b.client.Tags(ctx, nil) {
		if err != nil {
			return nil, false, err
		}
		if normalizeTag(tag.Title) == want {
			return &tag, false, nil
		}
	}

	tag, err := b.client.CreateTag(ctx, joplin.NewTag{Title: want})
	if err != nil {
		return nil, false, err
	}
	b.logger.Debug("created tag", "title", want, "id", tag.ID)
	return tag, true, nil
}

// TagNote ensures the tag exists and is attached to the note. When the note
// already carries the tag, nothing is created or attached.
func (b *Brain) TagNote(ctx context.Context, noteID, title string) (*joplin.Tag, error) {
	want := normalizeTag(title)
	if want == "" {
		return nil, ErrEmptyTagTitle
	}

	current, err := joplin.Collect(b.client.NoteTags(ctx, noteID, nil))
	if err != nil {
		return nil, err
	}
	for i := range current {
		if normalizeTag(current[i].Title) == want {
			return &current[i], nil
		}
	}

	tag, _, err := b.EnsureTag(ctx, want)
	if err != nil {
		return nil, err
	}
	if err := b.client.AddTagToNote(ctx, tag.ID, noteID); err != nil {
		return nil, err
	}
	return tag, nil
}

// UntagNote detaches the named tag from the note. A tag that does not exist
// or is not attached is a no-op, not an error.
func (b *Brain) UntagNote(ctx context.Context, noteID, title string) error {
	want := normalizeTag(title)
	if want == "" {
		return ErrEmptyTagTitle
	}

	current, err := joplin.Collect(b.client.NoteTags(ctx, noteID, nil))
	if err != nil {
		return err
	}
	for _, tag := range current {
		if normalizeTag(tag.Title) != want {
			continue
		}
		err := b.client.RemoveTagFromNote(ctx, tag.ID, noteID)
		// The association may have vanished between the list and the
		// detach; that still satisfies the caller's intent.
		if errors.Is(err, joplin.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// NoteTagTitles returns the titles of all tags on a note.
func (b *Brain) NoteTagTitles(ctx context.Context, noteID string) ([]string, error) {
	tags, err := joplin.Collect(b.client.NoteTags(ctx, noteID, nil))
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(tags))
	for i, tag := range tags {
		titles[i] = tag.Title
	}
	return titles, nil
}

// ReplaceNoteTags reconciles the note's tag set with titles, issuing only
// the attach and detach calls the difference requires.
func (b *Brain) ReplaceNoteTags(ctx context.Context, noteID string, titles []string) error {
	desired := make(map[string]bool, len(titles))
	for _, title := range titles {
		want := normalizeTag(title)
		if want == "" {
			return ErrEmptyTagTitle
		}
		desired[want] = true
	}

	current, err := joplin.Collect(b.client.NoteTags(ctx, noteID, nil))
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(current))
	for _, tag := range current {
		name := normalizeTag(tag.Title)
		have[name] = true
		if desired[name] {
			continue
		}
		if err := b.client.RemoveTagFromNote(ctx, tag.ID, noteID); err != nil {
			return fmt.Errorf("detach %q: %w", tag.Title, err)
		}
	}

	for name := range desired {
		if have[name] {
			continue
		}
		tag, _, err := b.EnsureTag(ctx, name)
		if err != nil {
			return err
		}
		if err := b.client.AddTagToNote(ctx, tag.ID, noteID); err != nil {
			return fmt.Errorf("attach %q: %w", name, err)
		}
	}
	return nil
}

// EnsureFolderPath walks a "/"-separated folder path from the root, creating
// any missing segments, and returns the final folder. Folder titles match
// exactly.
func (b *Brain) EnsureFolderPath(ctx context.Context, path string) (*joplin.Folder, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, ErrEmptyFolderPath
	}

	folders, err := joplin.Collect(b.client.Folders(ctx, nil))
	if err != nil {
		return nil, err
	}

	// (parent ID, title) -> folder
	byParent := make(map[string]*joplin.Folder, len(folders))
	for i := range folders {
		f := &folders[i]
		byParent[f.ParentID+"/"+f.Title] = f
	}

	var current *joplin.Folder
	parentID := ""
	for _, title := range segments {
		if existing, ok := byParent[parentID+"/"+title]; ok {
			current = existing
			parentID = existing.ID
			continue
		}
		created, err := b.client.CreateFolder(ctx, joplin.NewFolder{Title: title, ParentID: parentID})
		if err != nil {
			return nil, fmt.Errorf("create folder %q: %w", title, err)
		}
		b.logger.Debug("created folder", "title", title, "id", created.ID)
		byParent[parentID+"/"+title] = created
		current = created
		parentID = created.ID
	}
	return current, nil
}

// Capture creates a note inside the folder at path, ensuring the path exists
// first.
func (b *Brain) Capture(ctx context.Context, folderPath, title, body string) (*joplin.Note, error) {
	folder, err := b.EnsureFolderPath(ctx, folderPath)
	if err != nil {
		return nil, err
	}
	return b.client.CreateNote(ctx, joplin.NewNote{
		Title:    title,
		Body:     body,
		ParentID: folder.ID,
	})
}

func normalizeTag(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
