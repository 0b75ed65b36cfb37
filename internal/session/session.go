// Package session implements the admin editing session: a draft document that
// accumulates edits and is committed to the content service as a whole.
package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bcmimarlik/site/internal/metrics"
	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusSaved           Status = "saved"
	StatusValidationError Status = "validation_error"
	StatusIOError         Status = "io_error"
	StatusBusy            Status = "busy"
)

// CommitResult is the outcome of Commit. Err is nil only for StatusSaved.
type CommitResult struct {
	Status Status
	Err    error
}

func (r CommitResult) OK() bool {
	return r.Status == StatusSaved
}

// Session holds a persisted snapshot and a draft snapshot. Snapshots are
// never modified once published; every edit builds a new draft.
type Session struct {
	id     string
	client ContentClient

	mu         sync.Mutex
	draft      *model.SiteDocument
	persisted  *model.SiteDocument
	lastActive time.Time

	committing atomic.Bool
	now        func() time.Time
}

// New creates a session whose draft starts as the default document.
func New(client ContentClient) *Session {
	doc := model.Default()
	s := &Session{
		id:        uuid.New().String(),
		client:    client,
		draft:     doc,
		persisted: doc,
		now:       time.Now,
	}
	s.lastActive = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Initialize loads the current document into both snapshots. On failure the
// default document is kept and a notice for the editor is returned.
func (s *Session) Initialize(ctx context.Context) string {
	doc, err := s.client.GetContent(ctx)
	if err == nil && doc != nil {
		err = doc.Validate()
	}
	if err != nil {
		logrus.Warnf("session %s: could not load content: %v", s.id, err)
		return "İçerik yüklenemedi, varsayılan içerik gösteriliyor."
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = doc
	s.persisted = doc
	s.lastActive = s.now()

	return ""
}

// Snapshot returns the current draft. The result must be treated as read only.
func (s *Session) Snapshot() *model.SiteDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Persisted returns the last document known to be stored.
func (s *Session) Persisted() *model.SiteDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// Dirty reports whether the draft differs from the persisted snapshot.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft != s.persisted && !reflect.DeepEqual(s.draft, s.persisted)
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Committing reports whether a commit is in flight.
func (s *Session) Committing() bool {
	return s.committing.Load()
}

// edit replaces the draft with the result of f applied to a shallow copy of it.
func (s *Session) edit(f func(doc *model.SiteDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.draft
	if err := f(&next); err != nil {
		return err
	}

	s.draft = &next
	s.lastActive = s.now()
	return nil
}

// UpdateField sets one scalar field. Paths are projects.<index>.<field>
// (name, url, alt, hasVideo, inProgress), contact.phoneText,
// contact.emailText, links.whatsappUrl and links.instagramUrl.
func (s *Session) UpdateField(path string, value any) error {
	parts := strings.Split(path, ".")

	return s.edit(func(doc *model.SiteDocument) error {
		switch {
		case len(parts) == 3 && parts[0] == "projects":
			index, err := strconv.Atoi(parts[1])
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidPath, path)
			}
			if index < 0 || index >= len(doc.Projects) {
				return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
			}

			projects := make([]model.ProjectEntry, len(doc.Projects))
			copy(projects, doc.Projects)
			if err := setProjectField(&projects[index], parts[2], value); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			doc.Projects = projects
			return nil

		case len(parts) == 2 && parts[0] == "contact":
			text, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s expects a string", ErrInvalidValue, path)
			}
			switch parts[1] {
			case "phoneText":
				doc.Contact.PhoneText = text
			case "emailText":
				doc.Contact.EmailText = text
			default:
				return fmt.Errorf("%w: %s", ErrInvalidPath, path)
			}
			return nil

		case len(parts) == 2 && parts[0] == "links":
			text, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s expects a string", ErrInvalidValue, path)
			}
			switch parts[1] {
			case "whatsappUrl":
				doc.Links.WhatsappURL = text
			case "instagramUrl":
				doc.Links.InstagramURL = text
			default:
				return fmt.Errorf("%w: %s", ErrInvalidPath, path)
			}
			return nil
		}

		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	})
}

func setProjectField(p *model.ProjectEntry, field string, value any) error {
	switch field {
	case "name", "url", "alt":
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: expects a string", ErrInvalidValue)
		}
		switch field {
		case "name":
			p.Name = text
		case "url":
			p.MediaURL = text
		case "alt":
			p.AltText = text
		}
	case "hasVideo", "inProgress":
		flag, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: expects a boolean", ErrInvalidValue)
		}
		if field == "hasVideo" {
			p.IsVideo = flag
		} else {
			p.InProgress = flag
		}
	default:
		return ErrInvalidPath
	}
	return nil
}

// UpdateAddressLines replaces the address with one entry per line of raw.
// Empty lines are kept.
func (s *Session) UpdateAddressLines(raw string) {
	lines := SplitLines(raw)
	_ = s.edit(func(doc *model.SiteDocument) error {
		doc.Contact.AddressLines = lines
		return nil
	})
}

// SplitLines splits on \n. Line endings are normalized first, so \r\n and a
// lone \r also end a line and no line keeps a trailing \r.
func SplitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return strings.Split(raw, "\n")
}

// AddProject appends a placeholder project with the next free id.
func (s *Session) AddProject() model.ProjectEntry {
	var added model.ProjectEntry
	_ = s.edit(func(doc *model.SiteDocument) error {
		added = model.NewProject(doc.NextProjectID())

		projects := make([]model.ProjectEntry, len(doc.Projects), len(doc.Projects)+1)
		copy(projects, doc.Projects)
		doc.Projects = append(projects, added)
		return nil
	})
	return added
}

// RemoveProject deletes the project at index. Remaining ids are unchanged.
func (s *Session) RemoveProject(index int) error {
	return s.edit(func(doc *model.SiteDocument) error {
		if index < 0 || index >= len(doc.Projects) {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}

		projects := make([]model.ProjectEntry, 0, len(doc.Projects)-1)
		projects = append(projects, doc.Projects[:index]...)
		projects = append(projects, doc.Projects[index+1:]...)
		doc.Projects = projects
		return nil
	})
}

// Commit saves the current draft. Only one commit runs at a time per session;
// an overlapping call returns StatusBusy without sending anything. On failure
// the draft is left as it was.
func (s *Session) Commit(ctx context.Context) CommitResult {
	result := s.commit(ctx)
	metrics.CommitResults.WithLabelValues(string(result.Status)).Inc()
	return result
}

func (s *Session) commit(ctx context.Context) CommitResult {
	if !s.committing.CompareAndSwap(false, true) {
		return CommitResult{Status: StatusBusy, Err: ErrCommitInFlight}
	}
	defer s.committing.Store(false)

	snapshot := s.Snapshot()
	if err := snapshot.Validate(); err != nil {
		return CommitResult{Status: StatusValidationError, Err: err}
	}

	if err := s.client.SaveContent(ctx, snapshot); err != nil {
		logrus.Warnf("session %s: commit failed: %v", s.id, err)
		return CommitResult{Status: classify(err), Err: err}
	}

	s.mu.Lock()
	s.persisted = snapshot
	s.lastActive = s.now()
	s.mu.Unlock()

	logrus.Infof("session %s: committed", s.id)
	return CommitResult{Status: StatusSaved}
}

// rejecter is implemented by client errors that carry a validation verdict.
type rejecter interface {
	Rejected() bool
}

func classify(err error) Status {
	var r rejecter
	switch {
	case errors.As(err, &r) && r.Rejected():
		return StatusValidationError
	case errors.Is(err, service.ErrInvalidDocument), errors.Is(err, model.ErrProjectsNotList):
		return StatusValidationError
	default:
		return StatusIOError
	}
}
