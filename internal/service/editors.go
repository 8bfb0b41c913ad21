package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
)

// EditorStore is the editorial-board member store.
type EditorStore interface {
	Create(ctx context.Context, e *repository.Editor) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id uint64) (*repository.Editor, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.Editor, int, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]repository.Editor, error)
	Update(ctx context.Context, id uint64, firstName, lastName, designation, department, university, address string) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
}

// EditorInput is the create/update payload for an editorial board member.
type EditorInput struct {
	FirstName   string
	LastName    string
	Email       string
	Designation string
	Department  string
	University  string
	Address     string
	CoverImage  string
}

// Editors manages editorial board members independently of the journals
// they serve on; journal assignment lives on the journal side.
type Editors struct {
	store EditorStore
	audit Recorder
}

func NewEditors(store EditorStore, rec Recorder) *Editors {
	return &Editors{store: store, audit: rec}
}

// Create registers an editor. Email is the identity key and must be unique
// across editors.
func (s *Editors) Create(ctx context.Context, in EditorInput, meta RequestMeta) (*repository.Editor, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FirstName == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: first name and email are required", ErrInvalidInput)
	}
	exists, err := s.store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: an editor with this email already exists", ErrConflict)
	}
	e := &repository.Editor{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		CreatedBy: meta.ActorID,
	}
	if in.Designation != "" {
		e.Designation = nullStr(in.Designation)
	}
	if in.Department != "" {
		e.Department = nullStr(in.Department)
	}
	if in.University != "" {
		e.University = nullStr(in.University)
	}
	if in.Address != "" {
		e.Address = nullStr(in.Address)
	}
	if in.CoverImage != "" {
		e.CoverImage = nullStr(in.CoverImage)
	}
	if err := s.store.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an editor with this email already exists", ErrConflict)
		}
		return nil, err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "CREATE", Model: "Editor",
		Details:   map[string]interface{}{"editorId": e.ID, "email": e.Email},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return e, nil
}

func (s *Editors) Get(ctx context.Context, id uint64) (*repository.Editor, error) {
	e, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEditorNotFound) {
		return nil, fmt.Errorf("%w: editor not found", ErrNotFound)
	}
	return e, err
}

func (s *Editors) List(ctx context.Context, search string, page, limit int) ([]repository.Editor, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.store.List(ctx, strings.TrimSpace(search), offset, limit)
}

// Update patches the editor's profile fields. Email is immutable; it is the
// editor's identity.
func (s *Editors) Update(ctx context.Context, id uint64, in EditorInput, meta RequestMeta) (*repository.Editor, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, in.FirstName, in.LastName, in.Designation,
		in.Department, in.University, in.Address); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "UPDATE", Model: "Editor",
		Details:   map[string]interface{}{"editorId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return s.store.GetByID(ctx, id)
}

// Delete soft-deletes an editor. Journal assignments keep the id; details
// views simply stop resolving it.
func (s *Editors) Delete(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "DELETE", Model: "Editor",
		Details:   map[string]interface{}{"editorId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}
