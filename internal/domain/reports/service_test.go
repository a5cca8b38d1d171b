package reports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"animal-rescue/internal/domain/lifecycle"
	"animal-rescue/internal/ports/events"
)

// -------------------------
// Fakes
// -------------------------

var errRepoNotFound = lifecycle.ErrRecordNotFound

type testRepo struct {
	byID    map[string]Report
	creates int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Report{}}
}

func (r *testRepo) Create(ctx context.Context, rep Report) error {
	if _, ok := r.byID[rep.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.creates++
	r.byID[rep.ID] = rep
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Report, error) {
	rep, ok := r.byID[id]
	if !ok {
		return Report{}, errRepoNotFound
	}
	return rep, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Report, error) {
	out := make([]Report, 0)
	for _, rep := range r.byID {
		if f.Matches(rep) {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	rep, ok := r.byID[id]
	if !ok {
		return errRepoNotFound
	}
	if rep.Status != from {
		return lifecycle.ErrStaleStatus
	}
	rep.Status = to
	rep.UpdatedAt = at
	r.byID[id] = rep
	return nil
}

type testStore struct {
	uploads map[string][]byte
	types   map[string]string
	err     error
}

func newTestStore() *testStore {
	return &testStore{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (s *testStore) Upload(ctx context.Context, path, contentType string, body io.Reader, size int64) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.uploads[path] = b
	s.types[path] = contentType
	return nil
}

func (s *testStore) PublicURL(path string) string {
	return "https://cdn.test/animal-photos/" + path
}

type testPublisher struct {
	got []events.Event
}

func (p *testPublisher) Publish(ctx context.Context, e events.Event) error {
	p.got = append(p.got, e)
	return nil
}

func newTestService() (*Service, *testRepo, *testStore, *testPublisher) {
	repo := newTestRepo()
	store := newTestStore()
	pub := &testPublisher{}
	svc := NewService(repo, store, pub, nil)

	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	svc.token = func() string { return "abcd1234" }
	return svc, repo, store, pub
}

// -------------------------
// Submit
// -------------------------

func TestSubmit_WithoutPhoto(t *testing.T) {
	ctx := context.Background()
	svc, repo, store, pub := newTestService()

	rep, err := svc.Submit(ctx, SubmitInput{
		AnimalType: "dog",
		Condition:  "injured",
		Location:   "Anna Nagar, Chennai",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Status != StatusPending {
		t.Fatalf("expected pending, got %s", rep.Status)
	}
	if rep.PhotoURL != nil {
		t.Fatalf("expected nil photo url, got %q", *rep.PhotoURL)
	}
	if rep.ID == "" || rep.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be set: %#v", rep)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 insert, got %d", repo.creates)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("expected no uploads")
	}
	if len(pub.got) != 1 || pub.got[0].Type != EventSubmitted || pub.got[0].Key != rep.ID {
		t.Fatalf("expected report.submitted event, got %#v", pub.got)
	}
}

func TestSubmit_MissingRequiredFields(t *testing.T) {
	ctx := context.Background()

	cases := []SubmitInput{
		{Condition: "injured", Location: "x"},
		{AnimalType: "dog", Location: "x"},
		{AnimalType: "dog", Condition: "injured", Location: "   "},
	}
	for _, in := range cases {
		svc, repo, store, _ := newTestService()
		_, err := svc.Submit(ctx, in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %#v, got %v", in, err)
		}
		if repo.creates != 0 || len(store.uploads) != 0 {
			t.Fatalf("expected no side effects for %#v", in)
		}
	}
}

func TestSubmit_UnknownEnum(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.Submit(context.Background(), SubmitInput{AnimalType: "horse", Condition: "injured", Location: "x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = svc.Submit(context.Background(), SubmitInput{AnimalType: "cat", Condition: "sleepy", Location: "x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no inserts")
	}
}

func TestSubmit_WithPhoto(t *testing.T) {
	svc, repo, store, _ := newTestService()

	rep, err := svc.Submit(context.Background(), SubmitInput{
		AnimalType: "Cat",
		Condition:  "stray",
		Location:   "T Nagar",
		Photo: &Photo{
			Filename:    "kitty.PNG",
			ContentType: "image/png",
			Size:        4,
			Body:        bytes.NewReader([]byte("\x89PNG")),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "1736510460000-abcd1234.png"
	if _, ok := store.uploads[name]; !ok {
		t.Fatalf("expected upload at %s, got %v", name, store.uploads)
	}
	if store.types[name] != "image/png" {
		t.Fatalf("unexpected content type %q", store.types[name])
	}
	if rep.PhotoURL == nil || *rep.PhotoURL != "https://cdn.test/animal-photos/"+name {
		t.Fatalf("unexpected photo url %v", rep.PhotoURL)
	}
	if rep.AnimalType != AnimalCat {
		t.Fatalf("expected animal type normalized to cat, got %s", rep.AnimalType)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 insert")
	}
}

func TestSubmit_PhotoRejectedBeforeUpload(t *testing.T) {
	cases := []struct {
		name  string
		photo Photo
		want  error
	}{
		{
			name:  "too large",
			photo: Photo{Filename: "a.jpg", ContentType: "image/jpeg", Size: MaxPhotoSize + 1, Body: strings.NewReader("x")},
			want:  ErrPhotoTooLarge,
		},
		{
			name:  "gif",
			photo: Photo{Filename: "a.gif", ContentType: "image/gif", Size: 10, Body: strings.NewReader("x")},
			want:  ErrPhotoType,
		},
		{
			name:  "pdf",
			photo: Photo{Filename: "a.pdf", ContentType: "application/pdf", Size: 10, Body: strings.NewReader("x")},
			want:  ErrPhotoType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, store, _ := newTestService()
			p := tc.photo
			_, err := svc.Submit(context.Background(), SubmitInput{
				AnimalType: "dog", Condition: "injured", Location: "x", Photo: &p,
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(store.uploads) != 0 || repo.creates != 0 {
				t.Fatalf("expected no upload and no insert")
			}
		})
	}
}

func TestSubmit_UploadFailureAbortsInsert(t *testing.T) {
	svc, repo, store, pub := newTestService()
	store.err = errors.New("bucket unavailable")

	_, err := svc.Submit(context.Background(), SubmitInput{
		AnimalType: "bird", Condition: "accident", Location: "x",
		Photo: &Photo{Filename: "b.webp", ContentType: "image/webp", Size: 3, Body: strings.NewReader("abc")},
	})
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("report must not be inserted after a failed upload")
	}
	if len(pub.got) != 0 {
		t.Fatalf("expected no events")
	}
}

func TestObjectName_ExtensionFallback(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	got := objectName(now, "tok", Photo{Filename: "noext", ContentType: "image/jpeg; charset=binary"})
	if got != "1700000000000-tok.jpg" {
		t.Fatalf("unexpected name %q", got)
	}
	got = objectName(now, "tok", Photo{Filename: "dog.JPEG", ContentType: "image/jpeg"})
	if got != "1700000000000-tok.jpeg" {
		t.Fatalf("unexpected name %q", got)
	}
}

// -------------------------
// Catalog / transitions
// -------------------------

func seed(t *testing.T, svc *Service, animal, cond string) Report {
	t.Helper()
	rep, err := svc.Submit(context.Background(), SubmitInput{AnimalType: animal, Condition: cond, Location: "Chennai"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rep
}

func resolve(t *testing.T, svc *Service, id string) {
	t.Helper()
	if _, err := svc.Transition(context.Background(), id, StatusInProgress); err != nil {
		t.Fatalf("in_progress: %v", err)
	}
	if _, err := svc.Transition(context.Background(), id, StatusResolved); err != nil {
		t.Fatalf("resolved: %v", err)
	}
}

func TestListAdoptable_FiltersAggressiveAndUnresolved(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	a := seed(t, svc, "dog", "injured")    // resolved -> visible
	b := seed(t, svc, "cat", "aggressive") // resolved but aggressive
	c := seed(t, svc, "dog", "stray")      // pending
	d := seed(t, svc, "bird", "accident")  // resolved -> visible

	resolve(t, svc, a.ID)
	resolve(t, svc, b.ID)
	resolve(t, svc, d.ID)
	_ = c

	got, err := svc.ListAdoptable(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 adoptable, got %d", len(got))
	}
	// más nuevo primero
	if got[0].ID != d.ID || got[1].ID != a.ID {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	for _, r := range got {
		if !r.AdoptionEligible() {
			t.Fatalf("non eligible report in catalog: %#v", r)
		}
	}
}

func TestList_StableOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()
	for i := 0; i < 5; i++ {
		seed(t, svc, "dog", "stray")
	}

	first, _ := svc.List(ctx)
	second, _ := svc.List(ctx)
	if len(first) != 5 || len(first) != len(second) {
		t.Fatalf("unexpected lengths %d / %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order changed at %d", i)
		}
		if i > 0 && first[i].CreatedAt.After(first[i-1].CreatedAt) {
			t.Fatalf("expected created_at desc")
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	next := AllowedTransitions(Report{Status: StatusPending})
	if len(next) != 2 || next[0] != StatusInProgress || next[1] != StatusRejected {
		t.Fatalf("unexpected transitions for pending: %v", next)
	}
	if len(AllowedTransitions(Report{Status: StatusResolved})) != 0 {
		t.Fatalf("resolved must be terminal")
	}
	if len(AllowedTransitions(Report{Status: StatusRejected})) != 0 {
		t.Fatalf("rejected must be terminal")
	}
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newTestService()
	rep := seed(t, svc, "dog", "injured")

	// saltar in_progress no está permitido
	if _, err := svc.Transition(ctx, rep.ID, StatusResolved); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}

	updated, err := svc.Transition(ctx, rep.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInProgress || !updated.UpdatedAt.After(rep.UpdatedAt) {
		t.Fatalf("unexpected report after transition: %#v", updated)
	}
	if updated.CreatedAt != rep.CreatedAt {
		t.Fatalf("created_at must not change")
	}

	last := pub.got[len(pub.got)-1]
	if last.Type != EventStatusChanged {
		t.Fatalf("expected status_changed event, got %s", last.Type)
	}

	if _, err := svc.Transition(ctx, rep.ID, "archived"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := svc.Transition(ctx, "missing", StatusResolved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransition_StaleStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()
	rep := seed(t, svc, "cat", "stray")

	// otro admin lo rechazó entre el GetByID y el update
	stale := &staleRepo{testRepo: repo, flipTo: StatusRejected}
	svc.repo = stale

	if _, err := svc.Transition(ctx, rep.ID, StatusInProgress); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
	got, _ := repo.GetByID(ctx, rep.ID)
	if got.Status != StatusRejected {
		t.Fatalf("concurrent update must win, got %s", got.Status)
	}
}

// staleRepo cambia el estado justo antes del update condicional.
type staleRepo struct {
	*testRepo
	flipTo Status
}

func (r *staleRepo) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	rep := r.byID[id]
	rep.Status = r.flipTo
	r.byID[id] = rep
	return r.testRepo.UpdateStatus(ctx, id, from, to, at)
}

// downRepo simula el store caído: todo GetByID falla con un error de red.
type downRepo struct {
	*testRepo
}

var errStoreDown = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

func (r *downRepo) GetByID(ctx context.Context, id string) (Report, error) {
	return Report{}, errStoreDown
}

func TestGetByID_StoreFailureIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()
	rep := seed(t, svc, "dog", "injured")
	svc.repo = &downRepo{testRepo: repo}

	_, err := svc.GetByID(ctx, rep.ID)
	if errors.Is(err, ErrNotFound) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error to pass through, got %v", err)
	}
	_, err = svc.Transition(ctx, rep.ID, StatusInProgress)
	if errors.Is(err, ErrNotFound) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error on transition, got %v", err)
	}

	svc.repo = repo
	if _, err := svc.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}
