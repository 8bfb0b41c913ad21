package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
)

// SubmissionStore is the manuscript submission store.
type SubmissionStore interface {
	Create(ctx context.Context, sub *repository.Submission) error
	GetByID(ctx context.Context, id uint64) (*repository.Submission, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.Submission, int, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
}

// SubmissionFile describes one uploaded manuscript file.
type SubmissionFile struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// SubmissionInput is the public manuscript submission payload.
type SubmissionInput struct {
	JournalID    uint64
	Name         string
	Email        string
	Country      string
	ArticleTitle string
	ArticleType  string
	Abstract     string
	Files        []SubmissionFile
}

var submissionStatuses = map[string]bool{
	"Pending":      true,
	"Under Review": true,
	"Accepted":     true,
	"Rejected":     true,
}

// Submissions handles public manuscript submissions and their review
// lifecycle.
type Submissions struct {
	store    SubmissionStore
	journals JournalStore
	audit    Recorder
}

func NewSubmissions(store SubmissionStore, journals JournalStore, rec Recorder) *Submissions {
	return &Submissions{store: store, journals: journals, audit: rec}
}

// Create records a manuscript submission against an existing journal. This
// is a public endpoint; there is no actor.
func (s *Submissions) Create(ctx context.Context, in SubmissionInput, meta RequestMeta) (*repository.Submission, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.ArticleTitle = strings.TrimSpace(in.ArticleTitle)
	if in.JournalID == 0 || in.Name == "" || in.Email == "" || in.ArticleTitle == "" {
		return nil, fmt.Errorf("%w: journalId, name, email and articleTitle are required", ErrInvalidInput)
	}
	j, err := s.journals.GetByID(ctx, in.JournalID)
	if errors.Is(err, repository.ErrJournalNotFound) {
		return nil, fmt.Errorf("%w: journal not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if j.Deleted {
		return nil, fmt.Errorf("%w: journal not found", ErrNotFound)
	}

	sub := &repository.Submission{
		JournalID:    in.JournalID,
		Name:         in.Name,
		Email:        in.Email,
		Country:      in.Country,
		ArticleTitle: in.ArticleTitle,
		ArticleType:  in.ArticleType,
		Abstract:     in.Abstract,
		Status:       "Pending",
	}
	if len(in.Files) > 0 {
		raw, err := json.Marshal(in.Files)
		if err != nil {
			return nil, err
		}
		sub.Files = nullStr(string(raw))
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		Action: "CREATE", Model: "Submission",
		Details:   map[string]interface{}{"submissionId": sub.ID, "journalId": in.JournalID},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return sub, nil
}

func (s *Submissions) Get(ctx context.Context, id uint64) (*repository.Submission, error) {
	sub, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		return nil, fmt.Errorf("%w: submission not found", ErrNotFound)
	}
	return sub, err
}

func (s *Submissions) List(ctx context.Context, search string, page, limit int) ([]repository.Submission, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.store.List(ctx, strings.TrimSpace(search), offset, limit)
}

// UpdateStatus moves a submission through its review lifecycle.
func (s *Submissions) UpdateStatus(ctx context.Context, id uint64, status string, meta RequestMeta) error {
	if !submissionStatuses[status] {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "UPDATE", Model: "Submission",
		Details:   map[string]interface{}{"submissionId": id, "status": status},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}

func (s *Submissions) Delete(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "DELETE", Model: "Submission",
		Details:   map[string]interface{}{"submissionId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}
