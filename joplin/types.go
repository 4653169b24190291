package joplin

import "time"

// The Data API assigns every identifier; the client never generates one.
// Timestamps are milliseconds since the Unix epoch, and boolean-ish fields
// (is_todo, is_conflict, ...) are 0/1 integers on the wire.

// Note is a Joplin note record.
type Note struct {
	ID             string  `json:"id,omitzero"`
	ParentID       string  `json:"parent_id,omitzero"`
	Title          string  `json:"title,omitzero"`
	Body           string  `json:"body,omitzero"`
	CreatedTime    int64   `json:"created_time,omitzero"`
	UpdatedTime    int64   `json:"updated_time,omitzero"`
	UserCreated    int64   `json:"user_created_time,omitzero"`
	UserUpdated    int64   `json:"user_updated_time,omitzero"`
	IsConflict     int     `json:"is_conflict,omitzero"`
	IsTodo         int     `json:"is_todo,omitzero"`
	TodoDue        int64   `json:"todo_due,omitzero"`
	TodoCompleted  int64   `json:"todo_completed,omitzero"`
	Source         string  `json:"source,omitzero"`
	SourceURL      string  `json:"source_url,omitzero"`
	SourceApp      string  `json:"source_application,omitzero"`
	Author         string  `json:"author,omitzero"`
	MarkupLanguage int     `json:"markup_language,omitzero"`
	Order          float64 `json:"order,omitzero"`
	DeletedTime    int64   `json:"deleted_time,omitzero"`
}

// CreatedAt returns the creation timestamp as a time.Time.
func (n *Note) CreatedAt() time.Time { return millisTime(n.CreatedTime) }

// UpdatedAt returns the last-update timestamp as a time.Time.
func (n *Note) UpdatedAt() time.Time { return millisTime(n.UpdatedTime) }

// NewNote holds the fields sent when creating a note. Only set fields are
// transmitted; the server fills in everything else, including the ID.
type NewNote struct {
	Title     string `json:"title" validate:"required"`
	ParentID  string `json:"parent_id,omitzero"`
	Body      string `json:"body,omitzero"`
	BodyHTML  string `json:"body_html,omitzero"`
	IsTodo    int    `json:"is_todo,omitzero"`
	TodoDue   int64  `json:"todo_due,omitzero"`
	Source    string `json:"source,omitzero"`
	SourceURL string `json:"source_url,omitzero"`
	Author    string `json:"author,omitzero"`
}

// NotePatch is a partial note update. Nil fields are not transmitted.
type NotePatch struct {
	Title         *string `json:"title,omitzero"`
	ParentID      *string `json:"parent_id,omitzero"`
	Body          *string `json:"body,omitzero"`
	IsTodo        *int    `json:"is_todo,omitzero"`
	TodoDue       *int64  `json:"todo_due,omitzero"`
	TodoCompleted *int64  `json:"todo_completed,omitzero"`
	SourceURL     *string `json:"source_url,omitzero"`
	Author        *string `json:"author,omitzero"`
}

// Folder is a Joplin notebook. Folders form a tree via ParentID; ordering
// and nesting are managed entirely by the application.
type Folder struct {
	ID          string `json:"id,omitzero"`
	ParentID    string `json:"parent_id,omitzero"`
	Title       string `json:"title,omitzero"`
	CreatedTime int64  `json:"created_time,omitzero"`
	UpdatedTime int64  `json:"updated_time,omitzero"`
	Icon        string `json:"icon,omitzero"`
	DeletedTime int64  `json:"deleted_time,omitzero"`
}

// NewFolder holds the fields sent when creating a folder.
type NewFolder struct {
	Title    string `json:"title" validate:"required"`
	ParentID string `json:"parent_id,omitzero"`
	Icon     string `json:"icon,omitzero"`
}

// FolderPatch is a partial folder update.
type FolderPatch struct {
	Title    *string `json:"title,omitzero"`
	ParentID *string `json:"parent_id,omitzero"`
	Icon     *string `json:"icon,omitzero"`
}

// Tag is a Joplin tag. Tags relate to notes many-to-many through join
// records manipulated with AddTagToNote and RemoveTagFromNote.
type Tag struct {
	ID          string `json:"id,omitzero"`
	ParentID    string `json:"parent_id,omitzero"`
	Title       string `json:"title,omitzero"`
	CreatedTime int64  `json:"created_time,omitzero"`
	UpdatedTime int64  `json:"updated_time,omitzero"`
}

// NewTag holds the fields sent when creating a tag. The application stores
// tag titles lowercased.
type NewTag struct {
	Title string `json:"title" validate:"required"`
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Title *string `json:"title,omitzero"`
}

// Resource is binary attachment metadata. The blob itself is accessed with
// ResourceData and uploaded through CreateResource.
type Resource struct {
	ID              string `json:"id,omitzero"`
	Title           string `json:"title,omitzero"`
	Mime            string `json:"mime,omitzero"`
	Filename        string `json:"filename,omitzero"`
	FileExtension   string `json:"file_extension,omitzero"`
	Size            int64  `json:"size,omitzero"`
	CreatedTime     int64  `json:"created_time,omitzero"`
	UpdatedTime     int64  `json:"updated_time,omitzero"`
	BlobUpdatedTime int64  `json:"blob_updated_time,omitzero"`
}

// NewResource holds the metadata sent alongside a resource blob.
type NewResource struct {
	Title    string `json:"title" validate:"required"`
	Filename string `json:"filename,omitzero"`
	Mime     string `json:"mime,omitzero"`
}

// ResourcePatch is a partial resource metadata update.
type ResourcePatch struct {
	Title    *string `json:"title,omitzero"`
	Filename *string `json:"filename,omitzero"`
}

// Revision is a read-only history record for a note, folder or resource.
type Revision struct {
	ID              string `json:"id,omitzero"`
	ParentID        string `json:"parent_id,omitzero"`
	ItemType        int    `json:"item_type,omitzero"`
	ItemID          string `json:"item_id,omitzero"`
	ItemUpdatedTime int64  `json:"item_updated_time,omitzero"`
	TitleDiff       string `json:"title_diff,omitzero"`
	BodyDiff        string `json:"body_diff,omitzero"`
	MetadataDiff    string `json:"metadata_diff,omitzero"`
	CreatedTime     int64  `json:"created_time,omitzero"`
	UpdatedTime     int64  `json:"updated_time,omitzero"`
}

// Event is a read-only change-log record, useful for automation layers that
// react to edits made in the application.
type Event struct {
	ID          int64  `json:"id,omitzero"`
	ItemType    int    `json:"item_type,omitzero"`
	ItemID      string `json:"item_id,omitzero"`
	Type        int    `json:"type,omitzero"`
	CreatedTime int64  `json:"created_time,omitzero"`
	Source      int    `json:"source,omitzero"`
}

// Ptr returns a pointer to v, for populating patch structs inline.
func Ptr[T any](v T) *T { return &v }

func millisTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
