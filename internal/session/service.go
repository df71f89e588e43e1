// Package session ties the credential store, the token endpoints, the
// collective repository and the page cache into the operations a signed-in
// user performs.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/johanforsgren/mantella/internal/cache"
	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/logger"
	"github.com/johanforsgren/mantella/internal/provider/common"
)

const DefaultRevokeTimeout = 15 * time.Second

var (
	ErrEmptyName   = errors.New("name must not be empty")
	ErrInvalidName = errors.New("name must not contain '/'")
	ErrNameTaken   = errors.New("a collective with this name already exists")
)

var validate = validator.New()

type loginRequest struct {
	Server   string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type Service struct {
	store         domain.CredentialStore
	auth          domain.TokenService
	repo          domain.CollectiveService
	pages         *cache.PageCache
	revokeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a service. repo is expected to publish fetched listings into
// pages, as nextcloud.Provider does.
func New(store domain.CredentialStore, auth domain.TokenService, repo domain.CollectiveService, pages *cache.PageCache, revokeTimeout time.Duration) *Service {
	if pages == nil {
		pages = cache.NewPageCache()
	}
	if revokeTimeout <= 0 {
		revokeTimeout = DefaultRevokeTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:         store,
		auth:          auth,
		repo:          repo,
		pages:         pages,
		revokeTimeout: revokeTimeout,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Login trades password for an app password and stores the resulting
// credential, replacing any previous one.
func (s *Service) Login(ctx context.Context, server, username, password string) (domain.Credential, error) {
	req := loginRequest{
		Server:   strings.TrimSpace(server),
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := validate.Struct(req); err != nil {
		return domain.Credential{}, formatValidationError(err)
	}

	normalized, err := common.NormalizeServer(req.Server)
	if err != nil {
		return domain.Credential{}, err
	}

	token, err := s.auth.AcquireToken(ctx, normalized, req.Username, req.Password)
	if err != nil {
		return domain.Credential{}, err
	}

	cred := domain.Credential{Server: normalized, Username: req.Username, AccessToken: token}
	if err := s.store.Save(ctx, cred); err != nil {
		return domain.Credential{}, fmt.Errorf("failed to save credentials: %w", err)
	}
	s.pages.Invalidate()

	logger.Log("Session: Signed in as %s on %s", cred.Username, cred.Server)
	return cred, nil
}

// Logout forgets the credential locally right away and revokes it on the
// server in the background. The revoke is bounded by the revoke timeout and
// by Close.
func (s *Service) Logout(ctx context.Context) error {
	cred, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	s.pages.Invalidate()

	if cred == nil {
		return nil
	}

	s.wg.Add(1)
	go func(cred domain.Credential) {
		defer s.wg.Done()
		revokeCtx, cancel := context.WithTimeout(s.ctx, s.revokeTimeout)
		defer cancel()
		s.auth.RevokeToken(revokeCtx, cred)
	}(*cred)

	logger.Log("Session: Signed out %s", cred.Username)
	return nil
}

// Wait blocks until background revokes have finished or timed out.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels background revokes and waits for them to return.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// CurrentUser returns the stored credential, or nil when signed out.
func (s *Service) CurrentUser(ctx context.Context) (*domain.Credential, error) {
	return s.store.Get(ctx)
}

func (s *Service) Refresh(ctx context.Context) (domain.CollectivePages, error) {
	return s.repo.FetchCollectivesWithPages(ctx)
}

// Collectives returns the cached collectives ordered by name, loading them
// first if needed.
func (s *Service) Collectives(ctx context.Context) ([]domain.Collective, error) {
	snapshot := s.pages.Snapshot()
	if snapshot == nil {
		var err error
		if snapshot, err = s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return domain.SortCollectives(snapshot), nil
}

// Pages returns the cached pages of a collective, main page first.
func (s *Service) Pages(collective string) []domain.Page {
	return domain.SortPages(s.pages.PagesFor(collective))
}

func (s *Service) ReadPage(ctx context.Context, path string) (string, error) {
	if _, _, err := common.ParsePagePath(path); err != nil {
		return "", err
	}
	return s.repo.GetMarkdownFile(ctx, path)
}

func (s *Service) WritePage(ctx context.Context, path, content string) error {
	if _, _, err := common.ParsePagePath(path); err != nil {
		return err
	}
	return s.repo.SaveMarkdownFile(ctx, path, content)
}

// DiffPage compares content with the page currently stored at path. A page
// that does not exist yet diffs against empty text.
func (s *Service) DiffPage(ctx context.Context, path, content string) (domain.PageDiff, error) {
	current, err := s.ReadPage(ctx, path)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return domain.PageDiff{}, err
	}
	return common.DiffPage(path, current, content), nil
}

// AddPage creates an empty page and records it in the cache.
func (s *Service) AddPage(ctx context.Context, collective, pageName string) (domain.Page, error) {
	name := strings.TrimSuffix(strings.TrimSpace(pageName), domain.MarkdownExtension)
	switch {
	case name == "":
		return domain.Page{}, ErrEmptyName
	case strings.Contains(name, "/"):
		return domain.Page{}, ErrInvalidName
	}

	path := domain.PagePath(collective, name)
	if err := s.repo.SaveMarkdownFile(ctx, path, ""); err != nil {
		return domain.Page{}, err
	}

	page := domain.NewPage(collective, name+domain.MarkdownExtension)
	s.pages.AppendPage(collective, page)
	return page, nil
}

// DeletePages removes pages remotely and, only once all are gone, from the
// cache.
func (s *Service) DeletePages(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if _, _, err := common.ParsePagePath(path); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteMarkdownFiles(ctx, paths); err != nil {
		return err
	}
	s.pages.RemovePages(paths)
	return nil
}

// NameAvailable reports whether no cached collective already uses name,
// ignoring case and surrounding space.
func (s *Service) NameAvailable(name string) bool {
	_, taken := s.pages.CollectiveNamesLowercased()[strings.ToLower(strings.TrimSpace(name))]
	return !taken
}

func (s *Service) People(ctx context.Context, limit int) (domain.UsersAndGroups, error) {
	return s.repo.ListUsersAndGroups(ctx, limit)
}

// CreateCollective checks title against the known collectives, creates it,
// shares it and reloads the listing. The id is returned whenever the
// collective itself was created, even if a later step failed.
func (s *Service) CreateCollective(ctx context.Context, title, emoji string, users, groups []string) (int, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyName
	}

	if !s.pages.Loaded() {
		if _, err := s.Refresh(ctx); err != nil {
			return 0, err
		}
	}
	if !s.NameAvailable(title) {
		return 0, fmt.Errorf("%q: %w", title, ErrNameTaken)
	}

	id, err := s.repo.CreateCollective(ctx, title, emoji, users, groups)
	if err != nil {
		return id, err
	}

	if _, err := s.Refresh(ctx); err != nil {
		return id, fmt.Errorf("collective %d created but reload failed: %w", id, err)
	}
	return id, nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	missing := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		missing = append(missing, strings.ToLower(e.Field()))
	}
	return fmt.Errorf("%s required", strings.Join(missing, ", "))
}
