// content.go is the publishing tree core: journals at the root, volumes
// under journals, issues under volumes and articles under issues, plus
// the in-press shelf that hangs off a volume. Name uniqueness is scoped
// to the parent, and deleting or restoring a journal cascades through
// everything beneath it while child-level deletes stay local.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
)

type JournalStore interface {
	Create(ctx context.Context, j *repository.Journal) error
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	GetByID(ctx context.Context, id uint64) (*repository.Journal, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.Journal, int, error)
	ListAll(ctx context.Context) ([]repository.Journal, error)
	ListDeleted(ctx context.Context) ([]repository.Journal, error)
	Update(ctx context.Context, id uint64, title, subTitle, content, coverImage string) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
	AppendVolume(ctx context.Context, journalID, volumeID uint64) error
	ReplaceEditors(ctx context.Context, journalID uint64, editorIDs []uint64) error
	EditorIDs(ctx context.Context, journalID uint64) ([]uint64, error)
}

type VolumeStore interface {
	Create(ctx context.Context, v *repository.Volume) error
	ExistsByKey(ctx context.Context, journalID uint64, key string) (bool, error)
	GetByID(ctx context.Context, id uint64) (*repository.Volume, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.Volume, int, error)
	ListByJournal(ctx context.Context, journalID uint64) ([]repository.Volume, error)
	UpdateName(ctx context.Context, id uint64, name, key string, updatedBy uint64) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
	SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error
}

type IssueStore interface {
	Create(ctx context.Context, i *repository.Issue) error
	Exists(ctx context.Context, name string, volumeID, journalID uint64) (bool, error)
	GetByID(ctx context.Context, id uint64) (*repository.Issue, error)
	List(ctx context.Context, search string, volumeID uint64, offset, limit int) ([]repository.Issue, int, error)
	ListByVolume(ctx context.Context, volumeID uint64) ([]repository.Issue, error)
	ListByJournal(ctx context.Context, journalID uint64) ([]repository.Issue, error)
	UpdateName(ctx context.Context, id uint64, name string, updatedBy uint64) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
	SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error
}

type ArticleStore interface {
	Create(ctx context.Context, a *repository.Article) error
	GetByID(ctx context.Context, id uint64) (*repository.Article, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.Article, int, error)
	ListByJournal(ctx context.Context, journalID uint64) ([]repository.Article, error)
	ListByIssue(ctx context.Context, issueID uint64) ([]repository.Article, error)
	Update(ctx context.Context, id uint64, title, author, content, articleType, externalLink, status string) error
	IncrementViews(ctx context.Context, id uint64) error
	IncrementDownloads(ctx context.Context, id uint64) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
	SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error
}

type InPressStore interface {
	Create(ctx context.Context, a *repository.InPressArticle) error
	GetByID(ctx context.Context, id uint64) (*repository.InPressArticle, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.InPressArticle, int, error)
	ListByVolume(ctx context.Context, volumeID uint64) ([]repository.InPressArticle, error)
	Update(ctx context.Context, id uint64, title, author, content, document string) error
	SetDeleted(ctx context.Context, id uint64, deleted bool) error
	SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error
}

// EditorLookup is the slice of the editor store the content core needs to
// assemble journal details.
type EditorLookup interface {
	ListByIDs(ctx context.Context, ids []uint64) ([]repository.Editor, error)
}

// VolumeKey normalizes a volume name for uniqueness comparison: trimmed,
// casefolded, internal whitespace collapsed to single spaces. "Volume 1",
// "volume 1" and "  VOLUME   1  " all share a key.
func VolumeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Content orchestrates the journal tree.
type Content struct {
	journals JournalStore
	volumes  VolumeStore
	issues   IssueStore
	articles ArticleStore
	inpress  InPressStore
	editors  EditorLookup
	audit    Recorder
}

func NewContent(j JournalStore, v VolumeStore, i IssueStore, a ArticleStore,
	p InPressStore, e EditorLookup, rec Recorder) *Content {
	return &Content{journals: j, volumes: v, issues: i, articles: a, inpress: p, editors: e, audit: rec}
}

func (s *Content) record(ctx context.Context, meta RequestMeta, action, model string, details map[string]interface{}) {
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: action, Model: model, Details: details,
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
}

// ---- journals ----

// JournalInput is the create/update payload for a journal.
type JournalInput struct {
	Title      string
	SubTitle   string
	Content    string
	CoverImage string
	ISSN       string
}

// CreateJournal creates a journal. Titles are unique across live journals,
// compared case-insensitively.
func (s *Content) CreateJournal(ctx context.Context, in JournalInput, meta RequestMeta) (*repository.Journal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	exists, err := s.journals.ExistsByTitle(ctx, in.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a journal with this title already exists", ErrConflict)
	}
	j := &repository.Journal{
		Title:     in.Title,
		SubTitle:  in.SubTitle,
		CreatedBy: meta.ActorID,
	}
	if in.Content != "" {
		j.Content = nullStr(in.Content)
	}
	if in.CoverImage != "" {
		j.CoverImage = nullStr(in.CoverImage)
	}
	if in.ISSN != "" {
		j.ISSN = nullStr(in.ISSN)
	}
	if err := s.journals.Create(ctx, j); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "CREATE", "Journal", map[string]interface{}{"journalId": j.ID, "title": j.Title})
	return j, nil
}

// GetJournal returns a live journal by id.
func (s *Content) GetJournal(ctx context.Context, id uint64) (*repository.Journal, error) {
	j, err := s.journals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrJournalNotFound) {
		return nil, fmt.Errorf("%w: journal not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if j.Deleted {
		return nil, fmt.Errorf("%w: journal not found", ErrNotFound)
	}
	return j, nil
}

func (s *Content) ListJournals(ctx context.Context, search string, page, limit int) ([]repository.Journal, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.journals.List(ctx, strings.TrimSpace(search), offset, limit)
}

func (s *Content) ListAllJournals(ctx context.Context) ([]repository.Journal, error) {
	return s.journals.ListAll(ctx)
}

func (s *Content) ListDeletedJournals(ctx context.Context) ([]repository.Journal, error) {
	return s.journals.ListDeleted(ctx)
}

// VolumeDetails is a volume together with its issues and their articles.
type VolumeDetails struct {
	Volume  repository.Volume           `json:"volume"`
	Issues  []IssueDetails              `json:"issues"`
	InPress []repository.InPressArticle `json:"inPress,omitempty"`
}

// IssueDetails is an issue and the articles published in it.
type IssueDetails struct {
	Issue    repository.Issue     `json:"issue"`
	Articles []repository.Article `json:"articles"`
}

// JournalDetails is the full journal view: the journal row, its editorial
// board and the volume/issue/article tree beneath it.
type JournalDetails struct {
	Journal repository.Journal  `json:"journal"`
	Editors []repository.Editor `json:"editors"`
	Volumes []VolumeDetails     `json:"volumes"`
}

// JournalFullDetails assembles the whole tree under a journal in one call.
func (s *Content) JournalFullDetails(ctx context.Context, id uint64) (*JournalDetails, error) {
	j, err := s.GetJournal(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &JournalDetails{Journal: *j}

	ids, err := s.journals.EditorIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		out.Editors, err = s.editors.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	vols, err := s.volumes.ListByJournal(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, v := range vols {
		vd := VolumeDetails{Volume: v}
		iss, err := s.issues.ListByVolume(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		for _, i := range iss {
			arts, err := s.articles.ListByIssue(ctx, i.ID)
			if err != nil {
				return nil, err
			}
			vd.Issues = append(vd.Issues, IssueDetails{Issue: i, Articles: arts})
		}
		vd.InPress, err = s.inpress.ListByVolume(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		out.Volumes = append(out.Volumes, vd)
	}
	return out, nil
}

// UpdateJournal patches the journal's descriptive fields. Empty fields keep
// their current value.
func (s *Content) UpdateJournal(ctx context.Context, id uint64, in JournalInput, meta RequestMeta) (*repository.Journal, error) {
	if _, err := s.GetJournal(ctx, id); err != nil {
		return nil, err
	}
	if err := s.journals.Update(ctx, id, strings.TrimSpace(in.Title), in.SubTitle, in.Content, in.CoverImage); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "UPDATE", "Journal", map[string]interface{}{"journalId": id})
	return s.journals.GetByID(ctx, id)
}

// AssignEditors replaces the journal's editorial board.
func (s *Content) AssignEditors(ctx context.Context, journalID uint64, editorIDs []uint64, meta RequestMeta) error {
	if _, err := s.GetJournal(ctx, journalID); err != nil {
		return err
	}
	if err := s.journals.ReplaceEditors(ctx, journalID, editorIDs); err != nil {
		return err
	}
	s.record(ctx, meta, "UPDATE", "Journal", map[string]interface{}{
		"journalId": journalID, "editors": len(editorIDs),
	})
	return nil
}

// DeleteJournal soft-deletes a journal and cascades the flag to every
// volume, issue, article and in-press article beneath it. Deleting an
// already-deleted journal is a no-op success: re-running the cascade only
// rewrites flags that already hold, which also lets a partially-failed
// delete be retried to completion.
func (s *Content) DeleteJournal(ctx context.Context, id uint64, meta RequestMeta) error {
	j, err := s.journals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrJournalNotFound) {
		return fmt.Errorf("%w: journal not found", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := s.setJournalTreeDeleted(ctx, id, true); err != nil {
		return err
	}
	s.record(ctx, meta, "DELETE", "Journal", map[string]interface{}{"journalId": id, "title": j.Title})
	return nil
}

// RestoreJournal undoes DeleteJournal, cascading the restore through the
// tree. Restoring a live journal is a no-op success and must not touch the
// children: a volume or article that was deleted on its own stays deleted.
func (s *Content) RestoreJournal(ctx context.Context, id uint64, meta RequestMeta) error {
	j, err := s.journals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJournalNotFound) {
			return fmt.Errorf("%w: journal not found", ErrNotFound)
		}
		return err
	}
	if !j.Deleted {
		return nil
	}
	if err := s.setJournalTreeDeleted(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, meta, "RESTORE", "Journal", map[string]interface{}{"journalId": id})
	return nil
}

// setJournalTreeDeleted cascades the flag through the journal and its child
// tables. On delete the journal flips first so the tree disappears from
// reads immediately; on restore it flips last so a cascade that failed
// partway leaves the journal deleted and a retry still passes the
// already-active gate. Every step is an idempotent flag write, so retrying
// the same call converges.
func (s *Content) setJournalTreeDeleted(ctx context.Context, id uint64, deleted bool) error {
	if deleted {
		if err := s.journals.SetDeleted(ctx, id, true); err != nil {
			return err
		}
	}
	steps := []struct {
		name string
		fn   func(context.Context, uint64, bool) error
	}{
		{"volumes", s.volumes.SetDeletedByJournal},
		{"issues", s.issues.SetDeletedByJournal},
		{"articles", s.articles.SetDeletedByJournal},
		{"inpress", s.inpress.SetDeletedByJournal},
	}
	for _, st := range steps {
		if err := st.fn(ctx, id, deleted); err != nil {
			log.Printf("content: cascade %s for journal %d: %v", st.name, id, err)
			return err
		}
	}
	if !deleted {
		return s.journals.SetDeleted(ctx, id, false)
	}
	return nil
}

// ---- volumes ----

// CreateVolume creates a volume under a journal. The name must be unique
// within that journal after normalization; the same name under a different
// journal is fine. On success the journal's volume index is appended
// best-effort.
func (s *Content) CreateVolume(ctx context.Context, journalID uint64, name string, meta RequestMeta) (*repository.Volume, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: volume name is required", ErrInvalidInput)
	}
	if _, err := s.GetJournal(ctx, journalID); err != nil {
		return nil, err
	}

	key := VolumeKey(name)
	exists, err := s.volumes.ExistsByKey(ctx, journalID, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a volume with this name already exists in the journal", ErrConflict)
	}

	v := &repository.Volume{
		JournalID:  journalID,
		VolumeName: name,
		VolumeKey:  key,
		CreatedBy:  meta.ActorID,
	}
	if err := s.volumes.Create(ctx, v); err != nil {
		// Two racing creates can both pass the pre-check; the unique
		// index catches the loser.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a volume with this name already exists in the journal", ErrConflict)
		}
		return nil, err
	}

	// The index is a denormalized convenience; the volume row is already
	// authoritative, so a failed append is logged and ignored.
	if err := s.journals.AppendVolume(ctx, journalID, v.ID); err != nil {
		log.Printf("content: append volume %d to journal %d index: %v", v.ID, journalID, err)
	}

	s.record(ctx, meta, "CREATE", "Volume", map[string]interface{}{
		"volumeId": v.ID, "journalId": journalID, "name": name,
	})
	return v, nil
}

func (s *Content) GetVolume(ctx context.Context, id uint64) (*repository.Volume, error) {
	v, err := s.volumes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrVolumeNotFound) {
		return nil, fmt.Errorf("%w: volume not found", ErrNotFound)
	}
	return v, err
}

func (s *Content) ListVolumes(ctx context.Context, search string, page, limit int) ([]repository.Volume, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.volumes.List(ctx, strings.TrimSpace(search), offset, limit)
}

func (s *Content) ListVolumesByJournal(ctx context.Context, journalID uint64) ([]repository.Volume, error) {
	return s.volumes.ListByJournal(ctx, journalID)
}

// RenameVolume changes a volume's display name. The new name must not
// collide with another volume in the same journal; renaming to a different
// spelling of the current name is allowed.
func (s *Content) RenameVolume(ctx context.Context, id uint64, name string, meta RequestMeta) (*repository.Volume, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: volume name is required", ErrInvalidInput)
	}
	v, err := s.GetVolume(ctx, id)
	if err != nil {
		return nil, err
	}
	key := VolumeKey(name)
	if key != v.VolumeKey {
		exists, err := s.volumes.ExistsByKey(ctx, v.JournalID, key)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: a volume with this name already exists in the journal", ErrConflict)
		}
	}
	if err := s.volumes.UpdateName(ctx, id, name, key, meta.ActorID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a volume with this name already exists in the journal", ErrConflict)
		}
		return nil, err
	}
	s.record(ctx, meta, "UPDATE", "Volume", map[string]interface{}{"volumeId": id, "name": name})
	return s.volumes.GetByID(ctx, id)
}

// DeleteVolume soft-deletes a single volume. Unlike a journal delete this
// does not cascade: issues and articles under the volume keep their flags.
func (s *Content) DeleteVolume(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetVolume(ctx, id); err != nil {
		return err
	}
	if err := s.volumes.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	s.record(ctx, meta, "DELETE", "Volume", map[string]interface{}{"volumeId": id})
	return nil
}

// RestoreVolume undoes a single-volume delete.
func (s *Content) RestoreVolume(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetVolume(ctx, id); err != nil {
		return err
	}
	if err := s.volumes.SetDeleted(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, meta, "RESTORE", "Volume", map[string]interface{}{"volumeId": id})
	return nil
}

// ---- issues ----

// CreateIssue creates an issue under a volume. Uniqueness is scoped to the
// (name, volume, journal) triple; the journal id is recorded on the issue
// row as well so journal-wide queries and cascades need no join.
func (s *Content) CreateIssue(ctx context.Context, volumeID uint64, name string, meta RequestMeta) (*repository.Issue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: issue name is required", ErrInvalidInput)
	}
	v, err := s.GetVolume(ctx, volumeID)
	if err != nil {
		return nil, err
	}
	exists, err := s.issues.Exists(ctx, name, volumeID, v.JournalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: an issue with this name already exists in the volume", ErrConflict)
	}
	i := &repository.Issue{
		JournalID: v.JournalID,
		VolumeID:  volumeID,
		IssueName: name,
		CreatedBy: meta.ActorID,
	}
	if err := s.issues.Create(ctx, i); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an issue with this name already exists in the volume", ErrConflict)
		}
		return nil, err
	}
	s.record(ctx, meta, "CREATE", "Issue", map[string]interface{}{
		"issueId": i.ID, "volumeId": volumeID, "journalId": v.JournalID, "name": name,
	})
	return i, nil
}

func (s *Content) GetIssue(ctx context.Context, id uint64) (*repository.Issue, error) {
	i, err := s.issues.GetByID(ctx, id)
	if errors.Is(err, repository.ErrIssueNotFound) {
		return nil, fmt.Errorf("%w: issue not found", ErrNotFound)
	}
	return i, err
}

func (s *Content) ListIssues(ctx context.Context, search string, volumeID uint64, page, limit int) ([]repository.Issue, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.issues.List(ctx, strings.TrimSpace(search), volumeID, offset, limit)
}

func (s *Content) ListIssuesByJournal(ctx context.Context, journalID uint64) ([]repository.Issue, error) {
	return s.issues.ListByJournal(ctx, journalID)
}

// RenameIssue changes an issue's name, keeping the per-volume uniqueness.
func (s *Content) RenameIssue(ctx context.Context, id uint64, name string, meta RequestMeta) (*repository.Issue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: issue name is required", ErrInvalidInput)
	}
	i, err := s.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != i.IssueName {
		exists, err := s.issues.Exists(ctx, name, i.VolumeID, i.JournalID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: an issue with this name already exists in the volume", ErrConflict)
		}
	}
	if err := s.issues.UpdateName(ctx, id, name, meta.ActorID); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "UPDATE", "Issue", map[string]interface{}{"issueId": id, "name": name})
	return s.issues.GetByID(ctx, id)
}

// DeleteIssue soft-deletes one issue without touching its articles.
func (s *Content) DeleteIssue(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetIssue(ctx, id); err != nil {
		return err
	}
	if err := s.issues.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	s.record(ctx, meta, "DELETE", "Issue", map[string]interface{}{"issueId": id})
	return nil
}

func (s *Content) RestoreIssue(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetIssue(ctx, id); err != nil {
		return err
	}
	if err := s.issues.SetDeleted(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, meta, "RESTORE", "Issue", map[string]interface{}{"issueId": id})
	return nil
}

// ---- articles ----

// ArticleInput is the create payload for a published article.
type ArticleInput struct {
	IssueID      uint64
	Title        string
	Author       string
	Content      string
	CoverImage   string
	ArticleType  string
	ExternalLink string
	Status       string
}

// CreateArticle publishes an article into an issue. The journal and volume
// ids are derived from the issue, never trusted from the caller.
func (s *Content) CreateArticle(ctx context.Context, in ArticleInput, meta RequestMeta) (*repository.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.IssueID == 0 {
		return nil, fmt.Errorf("%w: title and issueId are required", ErrInvalidInput)
	}
	i, err := s.GetIssue(ctx, in.IssueID)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = "published"
	}
	a := &repository.Article{
		JournalID:   i.JournalID,
		VolumeID:    i.VolumeID,
		IssueID:     i.ID,
		Title:       in.Title,
		Author:      in.Author,
		Content:     in.Content,
		ArticleType: in.ArticleType,
		Status:      in.Status,
	}
	if in.CoverImage != "" {
		a.CoverImage = nullStr(in.CoverImage)
	}
	if in.ExternalLink != "" {
		a.ExternalLink = nullStr(in.ExternalLink)
	}
	if meta.ActorID != 0 {
		a.CreatedBy.Int64 = int64(meta.ActorID)
		a.CreatedBy.Valid = true
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "CREATE", "Article", map[string]interface{}{
		"articleId": a.ID, "issueId": i.ID, "title": a.Title,
	})
	return a, nil
}

func (s *Content) GetArticle(ctx context.Context, id uint64) (*repository.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrArticleNotFound) {
		return nil, fmt.Errorf("%w: article not found", ErrNotFound)
	}
	return a, err
}

func (s *Content) ListArticles(ctx context.Context, search string, page, limit int) ([]repository.Article, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.articles.List(ctx, strings.TrimSpace(search), offset, limit)
}

func (s *Content) ListArticlesByJournal(ctx context.Context, journalID uint64) ([]repository.Article, error) {
	return s.articles.ListByJournal(ctx, journalID)
}

func (s *Content) ListArticlesByIssue(ctx context.Context, issueID uint64) ([]repository.Article, error) {
	return s.articles.ListByIssue(ctx, issueID)
}

// UpdateArticle patches an article's fields. Moving to status "published"
// stamps the publication time once; later edits keep the original stamp.
func (s *Content) UpdateArticle(ctx context.Context, id uint64, in ArticleInput, meta RequestMeta) (*repository.Article, error) {
	if _, err := s.GetArticle(ctx, id); err != nil {
		return nil, err
	}
	if err := s.articles.Update(ctx, id, strings.TrimSpace(in.Title), in.Author,
		in.Content, in.ArticleType, in.ExternalLink, in.Status); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "UPDATE", "Article", map[string]interface{}{"articleId": id})
	return s.articles.GetByID(ctx, id)
}

// RecordView bumps the public view counter.
func (s *Content) RecordView(ctx context.Context, id uint64) error {
	if err := s.articles.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return fmt.Errorf("%w: article not found", ErrNotFound)
		}
		return err
	}
	return nil
}

// RecordDownload bumps the public download counter.
func (s *Content) RecordDownload(ctx context.Context, id uint64) error {
	if err := s.articles.IncrementDownloads(ctx, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return fmt.Errorf("%w: article not found", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *Content) DeleteArticle(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetArticle(ctx, id); err != nil {
		return err
	}
	if err := s.articles.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	s.record(ctx, meta, "DELETE", "Article", map[string]interface{}{"articleId": id})
	return nil
}

func (s *Content) RestoreArticle(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetArticle(ctx, id); err != nil {
		return err
	}
	if err := s.articles.SetDeleted(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, meta, "RESTORE", "Article", map[string]interface{}{"articleId": id})
	return nil
}

// ---- in-press ----

// InPressInput is the create payload for an accepted-but-unpublished
// article. In-press articles hang off a volume directly; they have no issue
// yet.
type InPressInput struct {
	VolumeID uint64
	Title    string
	Author   string
	Content  string
	Document string
}

func (s *Content) CreateInPress(ctx context.Context, in InPressInput, meta RequestMeta) (*repository.InPressArticle, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.VolumeID == 0 {
		return nil, fmt.Errorf("%w: title and volumeId are required", ErrInvalidInput)
	}
	v, err := s.GetVolume(ctx, in.VolumeID)
	if err != nil {
		return nil, err
	}
	a := &repository.InPressArticle{
		JournalID: v.JournalID,
		VolumeID:  v.ID,
		Title:     in.Title,
		Author:    in.Author,
		Content:   in.Content,
	}
	if in.Document != "" {
		a.Document = nullStr(in.Document)
	}
	if meta.ActorID != 0 {
		a.CreatedBy.Int64 = int64(meta.ActorID)
		a.CreatedBy.Valid = true
	}
	if err := s.inpress.Create(ctx, a); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "CREATE", "InPressArticle", map[string]interface{}{
		"inPressId": a.ID, "volumeId": v.ID, "title": a.Title,
	})
	return a, nil
}

func (s *Content) GetInPress(ctx context.Context, id uint64) (*repository.InPressArticle, error) {
	a, err := s.inpress.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInPressNotFound) {
		return nil, fmt.Errorf("%w: in-press article not found", ErrNotFound)
	}
	return a, err
}

func (s *Content) ListInPress(ctx context.Context, search string, page, limit int) ([]repository.InPressArticle, int, error) {
	offset, limit := pageWindow(page, limit)
	return s.inpress.List(ctx, strings.TrimSpace(search), offset, limit)
}

func (s *Content) UpdateInPress(ctx context.Context, id uint64, in InPressInput, meta RequestMeta) (*repository.InPressArticle, error) {
	if _, err := s.GetInPress(ctx, id); err != nil {
		return nil, err
	}
	if err := s.inpress.Update(ctx, id, strings.TrimSpace(in.Title), in.Author, in.Content, in.Document); err != nil {
		return nil, err
	}
	s.record(ctx, meta, "UPDATE", "InPressArticle", map[string]interface{}{"inPressId": id})
	return s.inpress.GetByID(ctx, id)
}

func (s *Content) DeleteInPress(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetInPress(ctx, id); err != nil {
		return err
	}
	if err := s.inpress.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	s.record(ctx, meta, "DELETE", "InPressArticle", map[string]interface{}{"inPressId": id})
	return nil
}

func (s *Content) RestoreInPress(ctx context.Context, id uint64, meta RequestMeta) error {
	if _, err := s.GetInPress(ctx, id); err != nil {
		return err
	}
	if err := s.inpress.SetDeleted(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, meta, "RESTORE", "InPressArticle", map[string]interface{}{"inPressId": id})
	return nil
}

// ---- helpers ----

func pageWindow(page, limit int) (offset, capped int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return (page - 1) * limit, limit
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
