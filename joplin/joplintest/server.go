// Package joplintest provides an in-memory fake of the Joplin Data API for
// tests: CRUD for every item kind, page-based pagination, tag-note joins,
// search, ping, and the interactive auth flow, behind a real HTTP listener.
//
// The fake also records every routed request, so tests can assert not just
// outcomes but the exact calls a higher-level operation issued.
package joplintest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/brainstemapp/brainstem/joplin"
)

// Joplin item IDs are 32 hex characters.
const idAlphabet = "0123456789abcdef"

// defaultLimit matches the Data API's default page size.
const defaultLimit = 10

type item map[string]any

// collection holds one item kind in insertion order. Insertion order is the
// fake's "server order" when no order_by is requested.
type collection struct {
	items map[string]item
	order []string
}

func newCollection() *collection {
	return &collection{items: make(map[string]item)}
}

func (c *collection) add(id string, it item) {
	c.items[id] = it
	c.order = append(c.order, id)
}

func (c *collection) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection) list() []item {
	out := make([]item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Server is a fake Joplin Data API instance.
type Server struct {
	mu  sync.Mutex
	srv *httptest.Server

	token string

	notes     *collection
	folders   *collection
	tags      *collection
	resources *collection
	revisions *collection

	events      []item
	nextEventID int64

	// tagID -> noteID -> attached
	tagNotes map[string]map[string]bool
	blobs    map[string][]byte

	pendingAuth map[string]string

	requests []string
}

// New starts a fake server that accepts the given API token.
// Callers must Close it.
func New(token string) *Server {
	s := &Server{
		token:       token,
		notes:       newCollection(),
		folders:     newCollection(),
		tags:        newCollection(),
		resources:   newCollection(),
		revisions:   newCollection(),
		nextEventID: 1,
		tagNotes:    make(map[string]map[string]bool),
		blobs:       make(map[string][]byte),
		pendingAuth: make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/ping", s.handlePing)
	r.Post("/auth", s.handleAuthStart)
	r.Get("/auth/check", s.handleAuthCheck)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", s.handleList(s.notes))
			r.Post("/", s.handleCreate(s.notes, false))
			r.Get("/{id}", s.handleGet(s.notes))
			r.Put("/{id}", s.handleUpdate(s.notes))
			r.Delete("/{id}", s.handleDeleteNote)
			r.Get("/{id}/tags", s.handleNoteTags)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", s.handleList(s.folders))
			r.Post("/", s.handleCreate(s.folders, false))
			r.Get("/{id}", s.handleGet(s.folders))
			r.Put("/{id}", s.handleUpdate(s.folders))
			r.Delete("/{id}", s.handleDelete(s.folders))
			r.Get("/{id}/notes", s.handleFolderNotes)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleList(s.tags))
			r.Post("/", s.handleCreate(s.tags, true))
			r.Get("/{id}", s.handleGet(s.tags))
			r.Put("/{id}", s.handleUpdate(s.tags))
			r.Delete("/{id}", s.handleDeleteTag)
			r.Get("/{id}/notes", s.handleTagNotes)
			r.Post("/{id}/notes", s.handleAttachTag)
			r.Delete("/{id}/notes/{noteID}", s.handleDetachTag)
		})

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", s.handleList(s.resources))
			r.Post("/", s.handleCreateResource)
			r.Get("/{id}", s.handleGet(s.resources))
			r.Put("/{id}", s.handleUpdateResource)
			r.Delete("/{id}", s.handleDelete(s.resources))
			r.Get("/{id}/file", s.handleResourceFile)
		})

		r.Route("/revisions", func(r chi.Router) {
			r.Get("/", s.handleList(s.revisions))
			r.Get("/{id}", s.handleGet(s.revisions))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleEvents)
			r.Get("/{id}", s.handleEvent)
		})

		r.Get("/search", s.handleSearch)
	})

	s.srv = httptest.NewServer(r)
	return s
}

// URL returns the base URL of the fake endpoint.
func (s *Server) URL() string { return s.srv.URL }

// Token returns the API token the fake accepts.
func (s *Server) Token() string { return s.token }

// Close shuts the listener down.
func (s *Server) Close() { s.srv.Close() }

// Requests returns every routed request so far as "METHOD pattern" strings,
// e.g. "POST /tags/{id}/notes".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests counts routed requests matching method and chi pattern.
func (s *Server) CountRequests(method, pattern string) int {
	want := method + " " + pattern
	n := 0
	for _, req := range s.Requests() {
		if req == want {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AcceptAuth marks a pending interactive auth request as granted.
func (s *Server) AcceptAuth(authToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAuth[authToken] = "accepted"
}

// RejectAuth marks a pending interactive auth request as denied.
func (s *Server) RejectAuth(authToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAuth[authToken] = "rejected"
}

// SeedRevision inserts a revision record, assigning an ID when absent.
func (s *Server) SeedRevision(rev joplin.Revision) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := toItem(rev)
	id, _ := it["id"].(string)
	if id == "" {
		id = newID()
		it["id"] = id
	}
	s.revisions.add(id, it)
	return id
}

// SeedEvent appends a change-log record, assigning the next event ID.
func (s *Server) SeedEvent(ev joplin.Event) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := toItem(ev)
	id := s.nextEventID
	s.nextEventID++
	it["id"] = id
	s.events = append(s.events, it)
	return id
}

// middleware

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+pattern)
		s.mu.Unlock()
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != s.token {
			writeError(w, http.StatusForbidden, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handlers

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, "JoplinClipperServer")
}

func (s *Server) handleAuthStart(w http.ResponseWriter, _ *http.Request) {
	authToken := uuid.NewString()
	s.mu.Lock()
	s.pendingAuth[authToken] = "waiting"
	s.mu.Unlock()
	writeJSON(w, map[string]any{"auth_token": authToken})
}

func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	authToken := r.URL.Query().Get("auth_token")
	s.mu.Lock()
	status, ok := s.pendingAuth[authToken]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown auth token")
		return
	}
	resp := map[string]any{"status": status}
	if status == "accepted" {
		resp["token"] = s.token
	}
	writeJSON(w, resp)
}

func (s *Server) handleList(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		items := col.list()
		s.mu.Unlock()
		writePage(w, r, items)
	}
}

// handleCreate decodes the posted fields, assigns an ID and timestamps, and
// returns the stored record. lowercaseTitle mirrors the application's tag
// title normalization.
func (s *Server) handleCreate(col *collection, lowercaseTitle bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var it item
		if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if lowercaseTitle {
			if title, ok := it["title"].(string); ok {
				it["title"] = strings.ToLower(title)
			}
		}

		now := time.Now().UnixMilli()
		id := newID()
		it["id"] = id
		it["created_time"] = now
		it["updated_time"] = now

		s.mu.Lock()
		col.add(id, it)
		s.mu.Unlock()
		writeJSON(w, it)
	}
}

func (s *Server) handleGet(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s.mu.Lock()
		it, ok := col.items[id]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		// Single get returns the full record unless fields are requested.
		if fields := r.URL.Query().Get("fields"); fields != "" {
			it = project(it, strings.Split(fields, ","))
		}
		writeJSON(w, it)
	}
}

func (s *Server) handleUpdate(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var patch item
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}

		s.mu.Lock()
		it, ok := col.items[id]
		if ok {
			for k, v := range patch {
				it[k] = v
			}
			it["updated_time"] = time.Now().UnixMilli()
		}
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, it)
	}
}

func (s *Server) handleDelete(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s.mu.Lock()
		ok := col.remove(id)
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	ok := s.notes.remove(id)
	if ok {
		for _, noteSet := range s.tagNotes {
			delete(noteSet, id)
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	ok := s.tags.remove(id)
	delete(s.tagNotes, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleNoteTags(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.notes.items[noteID]
	var items []item
	if ok {
		for _, tagID := range s.tags.order {
			if s.tagNotes[tagID][noteID] {
				items = append(items, s.tags.items[tagID])
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writePage(w, r, items)
}

func (s *Server) handleTagNotes(w http.ResponseWriter, r *http.Request) {
	tagID := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.tags.items[tagID]
	var items []item
	if ok {
		for _, noteID := range s.notes.order {
			if s.tagNotes[tagID][noteID] {
				items = append(items, s.notes.items[noteID])
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writePage(w, r, items)
}

func (s *Server) handleAttachTag(w http.ResponseWriter, r *http.Request) {
	tagID := chi.URLParam(r, "id")
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	tag, tagOK := s.tags.items[tagID]
	_, noteOK := s.notes.items[body.ID]
	if tagOK && noteOK {
		if s.tagNotes[tagID] == nil {
			s.tagNotes[tagID] = make(map[string]bool)
		}
		// Attaching an already-attached tag is idempotent.
		s.tagNotes[tagID][body.ID] = true
	}
	s.mu.Unlock()

	if !tagOK || !noteOK {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, tag)
}

func (s *Server) handleDetachTag(w http.ResponseWriter, r *http.Request) {
	tagID := chi.URLParam(r, "id")
	noteID := chi.URLParam(r, "noteID")

	s.mu.Lock()
	attached := s.tagNotes[tagID][noteID]
	if attached {
		delete(s.tagNotes[tagID], noteID)
	}
	s.mu.Unlock()

	if !attached {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleFolderNotes(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.folders.items[folderID]
	var items []item
	if ok {
		for _, noteID := range s.notes.order {
			note := s.notes.items[noteID]
			if parent, _ := note["parent_id"].(string); parent == folderID {
				items = append(items, note)
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writePage(w, r, items)
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart body")
		return
	}

	var it item
	if props := r.FormValue("props"); props != "" {
		if err := json.Unmarshal([]byte(props), &it); err != nil {
			writeError(w, http.StatusBadRequest, "invalid props")
			return
		}
	} else {
		it = item{}
	}

	file, header, err := r.FormFile("data")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing data part")
		return
	}
	defer file.Close()
	blob, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable data part")
		return
	}

	now := time.Now().UnixMilli()
	id := newID()
	it["id"] = id
	if _, ok := it["filename"].(string); !ok || it["filename"] == "" {
		it["filename"] = header.Filename
	}
	it["size"] = int64(len(blob))
	it["created_time"] = now
	it["updated_time"] = now
	it["blob_updated_time"] = now

	s.mu.Lock()
	s.resources.add(id, it)
	s.blobs[id] = blob
	s.mu.Unlock()
	writeJSON(w, it)
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Metadata-only updates arrive as JSON; blob replacement as multipart.
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		s.handleUpdate(s.resources)(w, r)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart body")
		return
	}

	var patch item
	if props := r.FormValue("props"); props != "" {
		if err := json.Unmarshal([]byte(props), &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid props")
			return
		}
	}

	var blob []byte
	if file, _, err := r.FormFile("data"); err == nil {
		defer file.Close()
		blob, _ = io.ReadAll(file)
	}

	s.mu.Lock()
	it, ok := s.resources.items[id]
	if ok {
		for k, v := range patch {
			it[k] = v
		}
		now := time.Now().UnixMilli()
		it["updated_time"] = now
		if blob != nil {
			s.blobs[id] = blob
			it["size"] = int64(len(blob))
			it["blob_updated_time"] = now
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, it)
}

func (s *Server) handleResourceFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	blob, ok := s.blobs[id]
	mime, _ := s.resources.items[id]["mime"].(string)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Write(blob)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]item, len(s.events))
	copy(items, s.events)
	s.mu.Unlock()
	writePage(w, r, items)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.mu.Lock()
	var found item
	for _, ev := range s.events {
		if evID, ok := ev["id"].(int64); ok && evID == id {
			found = ev
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, found)
}

// handleSearch does case-insensitive substring matching on title and body,
// which is all the tests need from the application's search engine.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "note"
	}

	var col *collection
	switch kind {
	case "note":
		col = s.notes
	case "folder":
		col = s.folders
	case "tag":
		col = s.tags
	case "resource":
		col = s.resources
	default:
		writeError(w, http.StatusBadRequest, "unknown search type")
		return
	}

	s.mu.Lock()
	var items []item
	for _, it := range col.list() {
		title, _ := it["title"].(string)
		body, _ := it["body"].(string)
		if strings.Contains(strings.ToLower(title), query) ||
			(body != "" && strings.Contains(strings.ToLower(body), query)) {
			items = append(items, it)
		}
	}
	s.mu.Unlock()
	writePage(w, r, items)
}

// helpers

func newID() string {
	return gonanoid.MustGenerate(idAlphabet, 32)
}

// writePage applies the Data API's list protocol: limit, page, order_by,
// order_dir and fields, wrapped in an items/has_more envelope.
func writePage(w http.ResponseWriter, r *http.Request, items []item) {
	q := r.URL.Query()
	limit := intParam(q.Get("limit"), defaultLimit)
	pageNum := intParam(q.Get("page"), 1)

	if orderBy := q.Get("order_by"); orderBy != "" {
		sorted := make([]item, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(i, j int) bool {
			return lessValues(sorted[i][orderBy], sorted[j][orderBy])
		})
		if strings.EqualFold(q.Get("order_dir"), "DESC") {
			for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
		items = sorted
	}

	start := (pageNum - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	pageItems := items[start:end]
	if fields := q.Get("fields"); fields != "" {
		names := strings.Split(fields, ",")
		projected := make([]item, len(pageItems))
		for i, it := range pageItems {
			projected[i] = project(it, names)
		}
		pageItems = projected
	}
	if pageItems == nil {
		pageItems = []item{}
	}

	writeJSON(w, map[string]any{
		"items":    pageItems,
		"has_more": end < len(items),
	})
}

func project(it item, fields []string) item {
	out := make(item, len(fields))
	for _, f := range fields {
		if v, ok := it[f]; ok {
			out[f] = v
		}
	}
	return out
}

func lessValues(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, _ := toFloat(b)
		return af < bf
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return as < bs
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func toItem(v any) item {
	data, _ := json.Marshal(v)
	var it item
	_ = json.Unmarshal(data, &it)
	return it
}
