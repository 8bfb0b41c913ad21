package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
)

// ---- fakes ----

type fakeJournals struct {
	nextID    uint64
	byID      map[uint64]*repository.Journal
	index     map[uint64][]uint64 // journal id -> appended volume ids
	editorIDs map[uint64][]uint64
	appendErr error
}

func newFakeJournals() *fakeJournals {
	return &fakeJournals{
		byID:      map[uint64]*repository.Journal{},
		index:     map[uint64][]uint64{},
		editorIDs: map[uint64][]uint64{},
	}
}

func (f *fakeJournals) Create(_ context.Context, j *repository.Journal) error {
	f.nextID++
	j.ID = f.nextID
	cp := *j
	f.byID[j.ID] = &cp
	return nil
}

func (f *fakeJournals) ExistsByTitle(_ context.Context, title string) (bool, error) {
	for _, j := range f.byID {
		if !j.Deleted && strings.EqualFold(j.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeJournals) GetByID(_ context.Context, id uint64) (*repository.Journal, error) {
	j, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrJournalNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJournals) List(_ context.Context, _ string, _, _ int) ([]repository.Journal, int, error) {
	var out []repository.Journal
	for _, j := range f.byID {
		if !j.Deleted {
			out = append(out, *j)
		}
	}
	return out, len(out), nil
}

func (f *fakeJournals) ListAll(ctx context.Context) ([]repository.Journal, error) {
	out, _, err := f.List(ctx, "", 0, 0)
	return out, err
}

func (f *fakeJournals) ListDeleted(_ context.Context) ([]repository.Journal, error) {
	var out []repository.Journal
	for _, j := range f.byID {
		if j.Deleted {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJournals) Update(_ context.Context, id uint64, title, subTitle, _, _ string) error {
	j, ok := f.byID[id]
	if !ok {
		return repository.ErrJournalNotFound
	}
	if title != "" {
		j.Title = title
	}
	if subTitle != "" {
		j.SubTitle = subTitle
	}
	return nil
}

func (f *fakeJournals) SetDeleted(_ context.Context, id uint64, deleted bool) error {
	j, ok := f.byID[id]
	if !ok {
		return repository.ErrJournalNotFound
	}
	j.Deleted = deleted
	return nil
}

func (f *fakeJournals) AppendVolume(_ context.Context, journalID, volumeID uint64) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.index[journalID] = append(f.index[journalID], volumeID)
	return nil
}

func (f *fakeJournals) ReplaceEditors(_ context.Context, journalID uint64, ids []uint64) error {
	f.editorIDs[journalID] = ids
	return nil
}

func (f *fakeJournals) EditorIDs(_ context.Context, journalID uint64) ([]uint64, error) {
	return f.editorIDs[journalID], nil
}

type fakeVolumes struct {
	nextID uint64
	byID   map[uint64]*repository.Volume
}

func newFakeVolumes() *fakeVolumes { return &fakeVolumes{byID: map[uint64]*repository.Volume{}} }

func (f *fakeVolumes) Create(_ context.Context, v *repository.Volume) error {
	// The unique index sees every row, deleted or not.
	for _, ex := range f.byID {
		if ex.JournalID == v.JournalID && ex.VolumeKey == v.VolumeKey {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	v.ID = f.nextID
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVolumes) ExistsByKey(_ context.Context, journalID uint64, key string) (bool, error) {
	for _, v := range f.byID {
		if v.JournalID == journalID && v.VolumeKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVolumes) GetByID(_ context.Context, id uint64) (*repository.Volume, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrVolumeNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVolumes) List(_ context.Context, _ string, _, _ int) ([]repository.Volume, int, error) {
	var out []repository.Volume
	for _, v := range f.byID {
		if !v.Deleted {
			out = append(out, *v)
		}
	}
	return out, len(out), nil
}

func (f *fakeVolumes) ListByJournal(_ context.Context, journalID uint64) ([]repository.Volume, error) {
	var out []repository.Volume
	for _, v := range f.byID {
		if v.JournalID == journalID && !v.Deleted {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVolumes) UpdateName(_ context.Context, id uint64, name, key string, _ uint64) error {
	v, ok := f.byID[id]
	if !ok {
		return repository.ErrVolumeNotFound
	}
	v.VolumeName = name
	v.VolumeKey = key
	return nil
}

func (f *fakeVolumes) SetDeleted(_ context.Context, id uint64, deleted bool) error {
	v, ok := f.byID[id]
	if !ok {
		return repository.ErrVolumeNotFound
	}
	v.Deleted = deleted
	return nil
}

func (f *fakeVolumes) SetDeletedByJournal(_ context.Context, journalID uint64, deleted bool) error {
	for _, v := range f.byID {
		if v.JournalID == journalID {
			v.Deleted = deleted
		}
	}
	return nil
}

type fakeIssues struct {
	nextID uint64
	byID   map[uint64]*repository.Issue
}

func newFakeIssues() *fakeIssues { return &fakeIssues{byID: map[uint64]*repository.Issue{}} }

func (f *fakeIssues) Create(_ context.Context, i *repository.Issue) error {
	f.nextID++
	i.ID = f.nextID
	cp := *i
	f.byID[i.ID] = &cp
	return nil
}

func (f *fakeIssues) Exists(_ context.Context, name string, volumeID, journalID uint64) (bool, error) {
	for _, i := range f.byID {
		if i.IssueName == name && i.VolumeID == volumeID && i.JournalID == journalID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIssues) GetByID(_ context.Context, id uint64) (*repository.Issue, error) {
	i, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrIssueNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIssues) List(_ context.Context, _ string, volumeID uint64, _, _ int) ([]repository.Issue, int, error) {
	var out []repository.Issue
	for _, i := range f.byID {
		if i.Deleted {
			continue
		}
		if volumeID != 0 && i.VolumeID != volumeID {
			continue
		}
		out = append(out, *i)
	}
	return out, len(out), nil
}

func (f *fakeIssues) ListByVolume(ctx context.Context, volumeID uint64) ([]repository.Issue, error) {
	out, _, err := f.List(ctx, "", volumeID, 0, 0)
	return out, err
}

func (f *fakeIssues) ListByJournal(_ context.Context, journalID uint64) ([]repository.Issue, error) {
	var out []repository.Issue
	for _, i := range f.byID {
		if i.JournalID == journalID && !i.Deleted {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeIssues) UpdateName(_ context.Context, id uint64, name string, _ uint64) error {
	i, ok := f.byID[id]
	if !ok {
		return repository.ErrIssueNotFound
	}
	i.IssueName = name
	return nil
}

func (f *fakeIssues) SetDeleted(_ context.Context, id uint64, deleted bool) error {
	i, ok := f.byID[id]
	if !ok {
		return repository.ErrIssueNotFound
	}
	i.Deleted = deleted
	return nil
}

func (f *fakeIssues) SetDeletedByJournal(_ context.Context, journalID uint64, deleted bool) error {
	for _, i := range f.byID {
		if i.JournalID == journalID {
			i.Deleted = deleted
		}
	}
	return nil
}

type fakeArticles struct {
	nextID uint64
	byID   map[uint64]*repository.Article
}

func newFakeArticles() *fakeArticles { return &fakeArticles{byID: map[uint64]*repository.Article{}} }

func (f *fakeArticles) Create(_ context.Context, a *repository.Article) error {
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticles) GetByID(_ context.Context, id uint64) (*repository.Article, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrArticleNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArticles) List(_ context.Context, _ string, _, _ int) ([]repository.Article, int, error) {
	var out []repository.Article
	for _, a := range f.byID {
		if !a.Deleted {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeArticles) ListByJournal(_ context.Context, journalID uint64) ([]repository.Article, error) {
	var out []repository.Article
	for _, a := range f.byID {
		if a.JournalID == journalID && !a.Deleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeArticles) ListByIssue(_ context.Context, issueID uint64) ([]repository.Article, error) {
	var out []repository.Article
	for _, a := range f.byID {
		if a.IssueID == issueID && !a.Deleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeArticles) Update(_ context.Context, id uint64, title, author, content, articleType, _, status string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrArticleNotFound
	}
	if title != "" {
		a.Title = title
	}
	if author != "" {
		a.Author = author
	}
	if content != "" {
		a.Content = content
	}
	if articleType != "" {
		a.ArticleType = articleType
	}
	if status != "" {
		a.Status = status
	}
	return nil
}

func (f *fakeArticles) IncrementViews(_ context.Context, id uint64) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrArticleNotFound
	}
	a.Views++
	return nil
}

func (f *fakeArticles) IncrementDownloads(_ context.Context, id uint64) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrArticleNotFound
	}
	a.Downloads++
	return nil
}

func (f *fakeArticles) SetDeleted(_ context.Context, id uint64, deleted bool) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrArticleNotFound
	}
	a.Deleted = deleted
	return nil
}

func (f *fakeArticles) SetDeletedByJournal(_ context.Context, journalID uint64, deleted bool) error {
	for _, a := range f.byID {
		if a.JournalID == journalID {
			a.Deleted = deleted
		}
	}
	return nil
}

type fakeInPress struct {
	nextID uint64
	byID   map[uint64]*repository.InPressArticle
}

func newFakeInPress() *fakeInPress {
	return &fakeInPress{byID: map[uint64]*repository.InPressArticle{}}
}

func (f *fakeInPress) Create(_ context.Context, a *repository.InPressArticle) error {
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeInPress) GetByID(_ context.Context, id uint64) (*repository.InPressArticle, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrInPressNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeInPress) List(_ context.Context, _ string, _, _ int) ([]repository.InPressArticle, int, error) {
	var out []repository.InPressArticle
	for _, a := range f.byID {
		if !a.Deleted {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeInPress) ListByVolume(_ context.Context, volumeID uint64) ([]repository.InPressArticle, error) {
	var out []repository.InPressArticle
	for _, a := range f.byID {
		if a.VolumeID == volumeID && !a.Deleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeInPress) Update(_ context.Context, id uint64, title, author, content, document string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrInPressNotFound
	}
	if title != "" {
		a.Title = title
	}
	if author != "" {
		a.Author = author
	}
	if content != "" {
		a.Content = content
	}
	_ = document
	return nil
}

func (f *fakeInPress) SetDeleted(_ context.Context, id uint64, deleted bool) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrInPressNotFound
	}
	a.Deleted = deleted
	return nil
}

func (f *fakeInPress) SetDeletedByJournal(_ context.Context, journalID uint64, deleted bool) error {
	for _, a := range f.byID {
		if a.JournalID == journalID {
			a.Deleted = deleted
		}
	}
	return nil
}

type fakeEditorLookup struct {
	byID map[uint64]repository.Editor
}

func (f *fakeEditorLookup) ListByIDs(_ context.Context, ids []uint64) ([]repository.Editor, error) {
	var out []repository.Editor
	for _, id := range ids {
		if e, ok := f.byID[id]; ok && !e.Deleted {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---- harness ----

type contentFix struct {
	svc      *Content
	journals *fakeJournals
	volumes  *fakeVolumes
	issues   *fakeIssues
	articles *fakeArticles
	inpress  *fakeInPress
	audit    *fakeRecorder
}

func newContentFix(t *testing.T) *contentFix {
	t.Helper()
	f := &contentFix{
		journals: newFakeJournals(),
		volumes:  newFakeVolumes(),
		issues:   newFakeIssues(),
		articles: newFakeArticles(),
		inpress:  newFakeInPress(),
		audit:    &fakeRecorder{},
	}
	f.svc = NewContent(f.journals, f.volumes, f.issues, f.articles, f.inpress,
		&fakeEditorLookup{byID: map[uint64]repository.Editor{}}, f.audit)
	return f
}

func (f *contentFix) journal(t *testing.T, title string) *repository.Journal {
	t.Helper()
	j, err := f.svc.CreateJournal(context.Background(), JournalInput{Title: title}, RequestMeta{ActorID: 1})
	if err != nil {
		t.Fatalf("CreateJournal(%q): %v", title, err)
	}
	return j
}

func (f *contentFix) volume(t *testing.T, journalID uint64, name string) *repository.Volume {
	t.Helper()
	v, err := f.svc.CreateVolume(context.Background(), journalID, name, RequestMeta{ActorID: 1})
	if err != nil {
		t.Fatalf("CreateVolume(%q): %v", name, err)
	}
	return v
}

func (f *contentFix) issue(t *testing.T, volumeID uint64, name string) *repository.Issue {
	t.Helper()
	i, err := f.svc.CreateIssue(context.Background(), volumeID, name, RequestMeta{ActorID: 1})
	if err != nil {
		t.Fatalf("CreateIssue(%q): %v", name, err)
	}
	return i
}

// ---- journals ----

func TestCreateJournalTitleUniqueness(t *testing.T) {
	f := newContentFix(t)
	f.journal(t, "Clinical Cardiology Review")

	_, err := f.svc.CreateJournal(context.Background(),
		JournalInput{Title: "clinical cardiology REVIEW"}, RequestMeta{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict for case-insensitive duplicate", err)
	}
}

func TestVolumeKeyNormalization(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Volume 1", "volume 1"},
		{"  volume   1  ", "volume 1"},
		{"VOLUME\t1", "volume 1"},
		{"Volume 2", "volume 2"},
	}
	for _, c := range cases {
		if got := VolumeKey(c.in); got != c.want {
			t.Errorf("VolumeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// ---- volumes ----

func TestCreateVolumeScopedUniqueness(t *testing.T) {
	f := newContentFix(t)
	j1 := f.journal(t, "Journal A")
	j2 := f.journal(t, "Journal B")
	ctx := context.Background()

	f.volume(t, j1.ID, "Volume 1")

	// The same name under the same journal conflicts regardless of case and
	// spacing.
	_, err := f.svc.CreateVolume(ctx, j1.ID, "  VOLUME   1 ", RequestMeta{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// The same name under a different journal is fine.
	if _, err := f.svc.CreateVolume(ctx, j2.ID, "Volume 1", RequestMeta{}); err != nil {
		t.Fatalf("cross-journal create: %v", err)
	}
}

func TestCreateVolumeRaceFallsBackToIndex(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")

	// Plant a row the pre-check misses, as a racing writer would. The fake
	// Create enforces the unique index.
	f.volumes.nextID++
	f.volumes.byID[f.volumes.nextID] = &repository.Volume{
		ID: f.volumes.nextID, JournalID: j.ID, VolumeName: "Volume 1", VolumeKey: "volume 1",
	}

	_, err := f.svc.CreateVolume(context.Background(), j.ID, "Volume 1", RequestMeta{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict from index violation", err)
	}
}

func TestSoftDeletedVolumeStillOwnsItsName(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	ctx := context.Background()

	if err := f.svc.DeleteVolume(ctx, v.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.CreateVolume(ctx, j.ID, "Volume 1", RequestMeta{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict against deleted volume", err)
	}
}

func TestCreateVolumeIndexAppendIsBestEffort(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	f.journals.appendErr = fmt.Errorf("index table unavailable")

	v, err := f.svc.CreateVolume(context.Background(), j.ID, "Volume 1", RequestMeta{})
	if err != nil {
		t.Fatalf("create failed on index append: %v", err)
	}
	// The volume row is authoritative; listing must not depend on the index.
	vols, err := f.svc.ListVolumesByJournal(context.Background(), j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(vols) != 1 || vols[0].ID != v.ID {
		t.Fatalf("volume missing from journal listing: %+v", vols)
	}
}

func TestCreateVolumeUnderDeletedJournal(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	if err := f.svc.DeleteJournal(context.Background(), j.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.CreateVolume(context.Background(), j.ID, "Volume 1", RequestMeta{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRenameVolumeRespellingAllowed(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "volume 1")

	// A different spelling of the same key is a rename, not a conflict.
	got, err := f.svc.RenameVolume(context.Background(), v.ID, "Volume 1", RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	if got.VolumeName != "Volume 1" || got.VolumeKey != "volume 1" {
		t.Fatalf("rename result: name=%q key=%q", got.VolumeName, got.VolumeKey)
	}

	f.volume(t, j.ID, "Volume 2")
	if _, err := f.svc.RenameVolume(context.Background(), v.ID, "volume 2", RequestMeta{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

// ---- issues ----

func TestCreateIssueScopedUniqueness(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v1 := f.volume(t, j.ID, "Volume 1")
	v2 := f.volume(t, j.ID, "Volume 2")
	ctx := context.Background()

	i := f.issue(t, v1.ID, "Issue 1")
	if i.JournalID != j.ID {
		t.Fatalf("issue journal = %d, want %d (derived from volume)", i.JournalID, j.ID)
	}

	if _, err := f.svc.CreateIssue(ctx, v1.ID, "Issue 1", RequestMeta{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("same volume: err = %v, want ErrConflict", err)
	}
	if _, err := f.svc.CreateIssue(ctx, v2.ID, "Issue 1", RequestMeta{}); err != nil {
		t.Fatalf("sibling volume: %v", err)
	}
}

func TestListIssuesByJournal(t *testing.T) {
	f := newContentFix(t)
	j1 := f.journal(t, "Journal A")
	j2 := f.journal(t, "Journal B")
	v1 := f.volume(t, j1.ID, "Volume 1")
	v2 := f.volume(t, j1.ID, "Volume 2")
	v3 := f.volume(t, j2.ID, "Volume 1")

	f.issue(t, v1.ID, "Issue 1")
	f.issue(t, v2.ID, "Issue 1")
	other := f.issue(t, v3.ID, "Issue 1")

	got, err := f.svc.ListIssuesByJournal(context.Background(), j1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("issues = %d, want 2", len(got))
	}
	for _, i := range got {
		if i.ID == other.ID {
			t.Fatal("listing leaked an issue from another journal")
		}
	}
}

// ---- cascade ----

func TestDeleteJournalCascades(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")
	ctx := context.Background()

	a, err := f.svc.CreateArticle(ctx, ArticleInput{IssueID: i.ID, Title: "Findings"}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	p, err := f.svc.CreateInPress(ctx, InPressInput{VolumeID: v.ID, Title: "Upcoming"}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}

	// An unrelated journal's content must be untouched by the cascade.
	j2 := f.journal(t, "Journal B")
	v2 := f.volume(t, j2.ID, "Volume 1")

	if err := f.svc.DeleteJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}

	if !f.journals.byID[j.ID].Deleted {
		t.Fatal("journal not deleted")
	}
	for name, deleted := range map[string]bool{
		"volume":   f.volumes.byID[v.ID].Deleted,
		"issue":    f.issues.byID[i.ID].Deleted,
		"article":  f.articles.byID[a.ID].Deleted,
		"inpress":  f.inpress.byID[p.ID].Deleted,
		"sibling":  !f.volumes.byID[v2.ID].Deleted,
		"journal2": !f.journals.byID[j2.ID].Deleted,
	} {
		if !deleted {
			t.Errorf("cascade wrong for %s", name)
		}
	}

	if _, err := f.svc.GetJournal(ctx, j.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted journal readable: %v", err)
	}
}

func TestRestoreJournalRoundTrip(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")
	ctx := context.Background()

	if err := f.svc.DeleteJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.RestoreJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}

	if f.journals.byID[j.ID].Deleted || f.volumes.byID[v.ID].Deleted || f.issues.byID[i.ID].Deleted {
		t.Fatal("restore did not cascade")
	}

	// Restoring a live journal is a no-op success.
	if err := f.svc.RestoreJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatalf("idempotent restore: %v", err)
	}
	// So is re-deleting a deleted one.
	if err := f.svc.DeleteJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.DeleteJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatalf("idempotent delete: %v", err)
	}
}

func TestRestoreActiveJournalLeavesDeletedChildren(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")
	ctx := context.Background()

	// Delete the volume on its own; the journal stays active.
	if err := f.svc.DeleteVolume(ctx, v.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.DeleteIssue(ctx, i.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}

	// Restoring the active journal is a success but must not run the
	// cascade: the individually-deleted children stay deleted.
	if err := f.svc.RestoreJournal(ctx, j.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if !f.volumes.byID[v.ID].Deleted {
		t.Fatal("restore of an active journal resurrected an individually deleted volume")
	}
	if !f.issues.byID[i.ID].Deleted {
		t.Fatal("restore of an active journal resurrected an individually deleted issue")
	}
}

func TestDeleteVolumeDoesNotCascade(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")

	if err := f.svc.DeleteVolume(context.Background(), v.ID, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if f.issues.byID[i.ID].Deleted {
		t.Fatal("volume delete cascaded to its issue")
	}
}

// ---- articles ----

func TestArticleParentageDerivedFromIssue(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")

	a, err := f.svc.CreateArticle(context.Background(),
		ArticleInput{IssueID: i.ID, Title: "Findings"}, RequestMeta{ActorID: 7})
	if err != nil {
		t.Fatal(err)
	}
	if a.JournalID != j.ID || a.VolumeID != v.ID {
		t.Fatalf("parentage journal=%d volume=%d, want %d/%d", a.JournalID, a.VolumeID, j.ID, v.ID)
	}
	if a.Status != "published" {
		t.Fatalf("default status = %q", a.Status)
	}
}

func TestRecordViewAndDownload(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")
	ctx := context.Background()

	a, err := f.svc.CreateArticle(ctx, ArticleInput{IssueID: i.ID, Title: "Findings"}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 3; n++ {
		if err := f.svc.RecordView(ctx, a.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.svc.RecordDownload(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	got := f.articles.byID[a.ID]
	if got.Views != 3 || got.Downloads != 1 {
		t.Fatalf("views=%d downloads=%d", got.Views, got.Downloads)
	}

	if err := f.svc.RecordView(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing article: err = %v, want ErrNotFound", err)
	}
}

// ---- full details ----

func TestJournalFullDetails(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	v := f.volume(t, j.ID, "Volume 1")
	i := f.issue(t, v.ID, "Issue 1")
	ctx := context.Background()

	if _, err := f.svc.CreateArticle(ctx, ArticleInput{IssueID: i.ID, Title: "Findings"}, RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateInPress(ctx, InPressInput{VolumeID: v.ID, Title: "Upcoming"}, RequestMeta{}); err != nil {
		t.Fatal(err)
	}

	d, err := f.svc.JournalFullDetails(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Volumes) != 1 {
		t.Fatalf("volumes = %d", len(d.Volumes))
	}
	vd := d.Volumes[0]
	if len(vd.Issues) != 1 || len(vd.Issues[0].Articles) != 1 || len(vd.InPress) != 1 {
		t.Fatalf("tree shape: issues=%d articles=%d inpress=%d",
			len(vd.Issues), len(vd.Issues[0].Articles), len(vd.InPress))
	}
}

// ---- audit ----

func TestContentAuditTrail(t *testing.T) {
	f := newContentFix(t)
	j := f.journal(t, "Journal A")
	if err := f.svc.DeleteJournal(context.Background(), j.ID, RequestMeta{ActorID: 1}); err != nil {
		t.Fatal(err)
	}

	got := f.audit.actions()
	want := []string{"CREATE", "DELETE"}
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for n := range want {
		if got[n] != want[n] {
			t.Fatalf("audit actions = %v, want %v", got, want)
		}
	}
}
