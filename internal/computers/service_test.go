package computers

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comcol/comcol-backend/internal/pictures"
	"github.com/comcol/comcol-backend/pkg/db/models"
	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/pagination"
)

type stubComputerRepo struct {
	rows       map[uuid.UUID]*models.Computer
	listRows   []models.Computer
	listErr    error
	lastSearch string
	lastLimit  int
	lastCursor *pagination.Cursor
	createErr  error
	deletedID  uuid.UUID
}

func newStubComputerRepo() *stubComputerRepo {
	return &stubComputerRepo{rows: make(map[uuid.UUID]*models.Computer)}
}

func (s *stubComputerRepo) Create(ctx context.Context, computer *models.Computer) error {
	if s.createErr != nil {
		return s.createErr
	}
	if computer.ID == uuid.Nil {
		computer.ID = uuid.New()
	}
	computer.CreatedAt = time.Now()
	s.rows[computer.ID] = computer
	return nil
}

func (s *stubComputerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Computer, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubComputerRepo) List(ctx context.Context, search string, cursor *pagination.Cursor, limit int) ([]models.Computer, error) {
	s.lastSearch = search
	s.lastCursor = cursor
	s.lastLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.listRows) {
		return s.listRows[:limit], nil
	}
	return s.listRows, nil
}

func (s *stubComputerRepo) Update(ctx context.Context, computer *models.Computer) error {
	copied := *computer
	s.rows[computer.ID] = &copied
	return nil
}

func (s *stubComputerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	delete(s.rows, id)
	return nil
}

type stubCleaner struct {
	removed uuid.UUID
	err     error
}

func (s *stubCleaner) RemoveAllForComputer(ctx context.Context, computerID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.removed = computerID
	return nil
}

func newComputerService(t *testing.T, repo *stubComputerRepo, cleaner *stubCleaner) Service {
	t.Helper()
	resolver, err := pictures.NewURLResolver("/media", "computer_pictures")
	if err != nil {
		t.Fatalf("NewURLResolver: %v", err)
	}
	svc, err := NewService(repo, cleaner, resolver, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestCreateComputer(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	svc := newComputerService(t, repo, &stubCleaner{})

	dto, err := svc.Create(context.Background(), CreateInput{
		Name:  "  Commodore 64  ",
		Maker: strPtr("Commodore"),
		Year:  intPtr(1982),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if dto.Name != "Commodore 64" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Maker == nil || *dto.Maker != "Commodore" {
		t.Fatalf("expected maker retained, got %v", dto.Maker)
	}
	if dto.Pictures == nil || len(dto.Pictures) != 0 {
		t.Fatalf("expected empty picture list, got %v", dto.Pictures)
	}
	if _, ok := repo.rows[dto.ID]; !ok {
		t.Fatal("expected row persisted")
	}
}

func TestCreateComputerValidation(t *testing.T) {
	t.Parallel()

	svc := newComputerService(t, newStubComputerRepo(), &stubCleaner{})

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"blank name", CreateInput{Name: "   "}},
		{"negative year", CreateInput{Name: "PDP-11", Year: intPtr(-4)}},
		{"bad url", CreateInput{Name: "PDP-11", SourceURL: strPtr("ftp://museum.example")}},
		{"not a url", CreateInput{Name: "PDP-11", SourceURL: strPtr("museum dot example")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateComputerClearsBlankOptionals(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	svc := newComputerService(t, repo, &stubCleaner{})

	dto, err := svc.Create(context.Background(), CreateInput{
		Name:        "Altair 8800",
		Maker:       strPtr("   "),
		Description: strPtr(""),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Maker != nil {
		t.Fatalf("expected blank maker stored as null, got %q", *dto.Maker)
	}
	if dto.Description != nil {
		t.Fatal("expected blank description stored as null")
	}
}

func TestGetComputerNotFound(t *testing.T) {
	t.Parallel()

	svc := newComputerService(t, newStubComputerRepo(), &stubCleaner{})

	_, err := svc.Get(context.Background(), uuid.New())

	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListComputersPagination(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	for i := 0; i < 3; i++ {
		repo.listRows = append(repo.listRows, models.Computer{
			ID:        uuid.New(),
			Name:      fmt.Sprintf("Machine %d", i),
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		})
	}
	svc := newComputerService(t, repo, &stubCleaner{})

	page, err := svc.List(context.Background(), ListInput{Limit: 2, Search: "machine"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if repo.lastLimit != 3 {
		t.Fatalf("expected limit+1 fetch, got %d", repo.lastLimit)
	}
	if repo.lastSearch != "machine" {
		t.Fatalf("expected search forwarded, got %q", repo.lastSearch)
	}
	if len(page.Computers) != 2 {
		t.Fatalf("expected 2 computers, got %d", len(page.Computers))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor for truncated page")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if cursor.ID != page.Computers[1].ID {
		t.Fatal("expected cursor to point at the last returned row")
	}
}

func TestListComputersLastPage(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	repo.listRows = []models.Computer{{ID: uuid.New(), Name: "ZX Spectrum"}}
	svc := newComputerService(t, repo, &stubCleaner{})

	page, err := svc.List(context.Background(), ListInput{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.NextCursor != "" {
		t.Fatal("expected no cursor on the last page")
	}
}

func TestListComputersBadCursor(t *testing.T) {
	t.Parallel()

	svc := newComputerService(t, newStubComputerRepo(), &stubCleaner{})

	_, err := svc.List(context.Background(), ListInput{Cursor: "!!not-base64!!"})

	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateComputerPartial(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	svc := newComputerService(t, repo, &stubCleaner{})

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Apple II",
		Maker: strPtr("Apple"),
		Year:  intPtr(1977),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Description: strPtr("First mass-market micro"),
		Maker:       strPtr(""),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Name != "Apple II" {
		t.Fatalf("expected untouched name, got %q", updated.Name)
	}
	if updated.Year == nil || *updated.Year != 1977 {
		t.Fatal("expected untouched year")
	}
	if updated.Maker != nil {
		t.Fatal("expected maker cleared")
	}
	if updated.Description == nil || *updated.Description != "First mass-market micro" {
		t.Fatal("expected description set")
	}
}

func TestUpdateComputerValidation(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	svc := newComputerService(t, repo, &stubCleaner{})

	created, err := svc.Create(context.Background(), CreateInput{Name: "BBC Micro"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Name: strPtr("  ")})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteComputerCascades(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	cleaner := &stubCleaner{}
	svc := newComputerService(t, repo, cleaner)

	created, err := svc.Create(context.Background(), CreateInput{Name: "NeXTcube"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if cleaner.removed != created.ID {
		t.Fatal("expected picture cleanup before row delete")
	}
	if repo.deletedID != created.ID {
		t.Fatal("expected row deleted")
	}
}

func TestDeleteComputerStopsOnCleanerFailure(t *testing.T) {
	t.Parallel()

	repo := newStubComputerRepo()
	cleaner := &stubCleaner{err: fmt.Errorf("blob store down")}
	svc := newComputerService(t, repo, cleaner)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Lisa"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.Delete(context.Background(), created.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if repo.deletedID != uuid.Nil {
		t.Fatal("expected row kept when picture cleanup failed")
	}
}
