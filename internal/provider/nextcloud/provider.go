package nextcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/johanforsgren/mantella/internal/cache"
	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/logger"
	"github.com/johanforsgren/mantella/internal/provider/common"
	"golang.org/x/sync/errgroup"
)

// Provider is the collective repository: every remote read and write of
// collectives, pages, users and shares goes through it.
type Provider struct {
	store     domain.CredentialStore
	http      *http.Client
	dav       *DirectoryClient
	pages     *cache.PageCache
	userLimit int
}

// NewProvider wires a provider to store. client must authenticate requests
// from store (see NewAuthenticatedClient); nil builds one with the default
// timeout. pages may be nil when no cache is kept.
func NewProvider(store domain.CredentialStore, pages *cache.PageCache, client *http.Client, userLimit int) *Provider {
	if client == nil {
		client = NewAuthenticatedClient(store, DefaultTimeout)
	}
	if userLimit <= 0 {
		userLimit = DefaultUserLimit
	}
	return &Provider{
		store:     store,
		http:      client,
		dav:       NewDirectoryClient(client),
		pages:     pages,
		userLimit: userLimit,
	}
}

func (p *Provider) credential(ctx context.Context) (*domain.Credential, error) {
	cred, err := p.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	if cred == nil {
		return nil, common.ErrMissingCredential
	}
	normalized := *cred
	normalized.Server = strings.TrimRight(cred.Server, "/")
	return &normalized, nil
}

// do sends one request and returns the fully read body. Status handling is
// left to the caller.
func (p *Provider) do(ctx context.Context, op, method, target string, body io.Reader, contentType string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, nil, common.TransportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, common.TransportError(op, err)
	}
	return resp, data, nil
}

func (p *Provider) getJSON(ctx context.Context, op, target string, v any) error {
	resp, body, err := p.do(ctx, op, http.MethodGet, target, nil, "")
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		return common.StatusError(op, resp, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &common.Error{Kind: common.ErrProtocol, Op: op, StatusCode: resp.StatusCode, Message: "malformed JSON response", Err: err}
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func (p *Provider) ListCollectives(ctx context.Context) ([]string, error) {
	cred, err := p.credential(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log("Nextcloud: Listing collectives for %s", cred.Username)
	names, err := p.dav.ListDirectory(ctx, collectivesURL(cred, "", true))
	if err != nil {
		logger.LogError("LIST_COLLECTIVES", cred.Username, err)
		return nil, err
	}

	logger.Log("Nextcloud: Found %d collectives", len(names))
	return names, nil
}

type collectivesResponse struct {
	Data []struct {
		Name  string `json:"name"`
		Emoji string `json:"emoji"`
	} `json:"data"`
}

func (p *Provider) ListCollectiveEmojis(ctx context.Context) (map[string]string, error) {
	cred, err := p.credential(ctx)
	if err != nil {
		return nil, err
	}

	var parsed collectivesResponse
	if err := p.getJSON(ctx, "list collective emojis", collectivesAPIURL(cred.Server), &parsed); err != nil {
		logger.LogError("LIST_EMOJIS", cred.Server, err)
		return nil, err
	}

	emojis := make(map[string]string, len(parsed.Data))
	for _, c := range parsed.Data {
		emojis[c.Name] = c.Emoji
	}
	return emojis, nil
}

// FetchCollectivesWithPages lists every collective together with its
// markdown pages. The per-collective listings run concurrently; the first
// failure cancels the rest and nothing is returned or cached.
func (p *Provider) FetchCollectivesWithPages(ctx context.Context) (domain.CollectivePages, error) {
	const op = "fetch collectives"

	cred, err := p.credential(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	var emojis map[string]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = p.ListCollectives(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		emojis, err = p.ListCollectiveEmojis(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, common.FanOutError(op, err)
	}

	collectives := make([]domain.Collective, len(names))
	for i, name := range names {
		collectives[i] = domain.Collective{Name: name, Emoji: emojis[name]}
	}

	pages := make([][]domain.Page, len(collectives))
	g, gctx = errgroup.WithContext(ctx)
	for i, collective := range collectives {
		g.Go(func() error {
			entries, err := p.dav.ListDirectory(gctx, collectivesURL(cred, collective.Name, true))
			if err != nil {
				logger.LogError("LIST_PAGES", collective.Name, err)
				return fmt.Errorf("collective '%s': %w", collective.Name, err)
			}

			list := make([]domain.Page, 0, len(entries))
			for _, file := range entries {
				if domain.IsMarkdownFile(file) {
					list = append(list, domain.NewPage(collective.Name, file))
				}
			}
			pages[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, common.FanOutError(op, err)
	}

	result := make(domain.CollectivePages, len(collectives))
	for i, collective := range collectives {
		result[collective] = pages[i]
	}

	if p.pages != nil {
		p.pages.ReplaceAll(result)
	}

	logger.Log("Nextcloud: Fetched %d collectives with pages", len(result))
	return result, nil
}

func (p *Provider) GetMarkdownFile(ctx context.Context, path string) (string, error) {
	const op = "get markdown file"

	cred, err := p.credential(ctx)
	if err != nil {
		return "", err
	}

	resp, body, err := p.do(ctx, op, http.MethodGet, collectivesURL(cred, path, false), nil, "")
	if err != nil {
		logger.LogError("GET_FILE", path, err)
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		err := common.StatusError(op, resp, body)
		logger.LogError("GET_FILE", path, err)
		return "", err
	}

	logger.Log("Nextcloud: Read %s (%d bytes)", path, len(body))
	return string(body), nil
}

func (p *Provider) SaveMarkdownFile(ctx context.Context, path string, content string) error {
	const op = "save markdown file"

	cred, err := p.credential(ctx)
	if err != nil {
		return err
	}

	resp, body, err := p.do(ctx, op, http.MethodPut, collectivesURL(cred, path, false), strings.NewReader(content), "text/markdown")
	if err != nil {
		logger.LogError("SAVE_FILE", path, err)
		return err
	}
	if !isSuccess(resp.StatusCode) {
		err := common.StatusError(op, resp, body)
		logger.LogError("SAVE_FILE", path, err)
		return err
	}

	logger.Log("Nextcloud: Saved %s (%d bytes)", path, len(content))
	return nil
}

// DeleteMarkdownFiles removes every path concurrently. A page that is
// already gone counts as deleted.
func (p *Provider) DeleteMarkdownFiles(ctx context.Context, paths []string) error {
	const op = "delete markdown files"

	cred, err := p.credential(ctx)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			resp, body, err := p.do(gctx, op, http.MethodDelete, collectivesURL(cred, path, false), nil, "")
			if err != nil {
				return fmt.Errorf("delete '%s': %w", path, err)
			}
			switch resp.StatusCode {
			case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
				return nil
			default:
				return fmt.Errorf("delete '%s': %w", path, common.StatusError(op, resp, body))
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.LogError("DELETE_FILES", strings.Join(paths, ","), err)
		return common.FanOutError(op, err)
	}

	logger.Log("Nextcloud: Deleted %d pages", len(paths))
	return nil
}

type ocsRoot[T any] struct {
	OCS struct {
		Data T `json:"data"`
	} `json:"ocs"`
}

type usersPayload struct {
	Users []string `json:"users"`
}

type groupsPayload struct {
	Groups []string `json:"groups"`
}

// ListUsersAndGroups fetches both directories concurrently; both must succeed.
func (p *Provider) ListUsersAndGroups(ctx context.Context, limit int) (domain.UsersAndGroups, error) {
	cred, err := p.credential(ctx)
	if err != nil {
		return domain.UsersAndGroups{}, err
	}
	if limit <= 0 {
		limit = p.userLimit
	}

	var users ocsRoot[usersPayload]
	var groups ocsRoot[groupsPayload]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.getJSON(gctx, "list users", usersURL(cred.Server, limit), &users)
	})
	g.Go(func() error {
		return p.getJSON(gctx, "list groups", groupsURL(cred.Server, limit), &groups)
	})
	if err := g.Wait(); err != nil {
		logger.LogError("LIST_USERS_GROUPS", cred.Server, err)
		return domain.UsersAndGroups{}, common.FanOutError("list users and groups", err)
	}

	result := domain.UsersAndGroups{
		Users:  nonNil(users.OCS.Data.Users),
		Groups: nonNil(groups.OCS.Data.Groups),
	}
	logger.Log("Nextcloud: Found %d users and %d groups", len(result.Users), len(result.Groups))
	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type createResponse struct {
	ID   *int `json:"id"`
	Data *struct {
		ID *int `json:"id"`
	} `json:"data"`
}

func (r createResponse) id() (int, bool) {
	if r.ID != nil {
		return *r.ID, true
	}
	if r.Data != nil && r.Data.ID != nil {
		return *r.Data.ID, true
	}
	return 0, false
}

// CreateCollective creates a collective and then shares its folder, one
// grant at a time, with users and groups. The acting user is never shared
// with. When a share fails the new collective's id is still returned along
// with the error, and no further shares are attempted.
func (p *Provider) CreateCollective(ctx context.Context, title, emoji string, users, groups []string) (int, error) {
	const op = "create collective"

	cred, err := p.credential(ctx)
	if err != nil {
		return 0, err
	}

	form := url.Values{}
	form.Set("name", strings.TrimSpace(title))
	form.Set("emoji", emoji)

	logger.Log("Nextcloud: Creating collective %q", strings.TrimSpace(title))
	resp, body, err := p.do(ctx, op, http.MethodPost, collectivesAPIURL(cred.Server), strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		logger.LogError("CREATE_COLLECTIVE", title, err)
		return 0, err
	}
	if !isSuccess(resp.StatusCode) {
		err := common.StatusError(op, resp, body)
		logger.LogError("CREATE_COLLECTIVE", title, err)
		return 0, err
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, &common.Error{Kind: common.ErrProtocol, Op: op, StatusCode: resp.StatusCode, Message: "malformed JSON response", Err: err}
	}
	id, ok := created.id()
	if !ok {
		return 0, &common.Error{Kind: common.ErrProtocol, Op: op, StatusCode: resp.StatusCode, Message: "collective id missing from response"}
	}

	for _, user := range users {
		if user == cred.Username {
			continue
		}
		if err := p.share(ctx, cred, id, user, domain.ShareTypeUser); err != nil {
			return id, err
		}
	}
	for _, group := range groups {
		if err := p.share(ctx, cred, id, group, domain.ShareTypeGroup); err != nil {
			return id, err
		}
	}

	logger.Log("Nextcloud: Created collective %d", id)
	return id, nil
}

func collectiveSharePath(id int) string {
	return "/collectives/" + strconv.Itoa(id)
}

func (p *Provider) share(ctx context.Context, cred *domain.Credential, id int, target string, shareType domain.ShareType) error {
	const op = "share collective"

	form := url.Values{}
	form.Set("path", collectiveSharePath(id))
	form.Set("shareType", strconv.Itoa(int(shareType)))
	form.Set("shareWith", target)
	form.Set("permissions", strconv.Itoa(int(domain.PermissionAll)))

	resp, body, err := p.do(ctx, op, http.MethodPost, sharesURL(cred.Server), strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		logger.LogError("SHARE_COLLECTIVE", target, err)
		return fmt.Errorf("share with '%s': %w", target, err)
	}
	if !isSuccess(resp.StatusCode) {
		err := common.StatusError(op, resp, body)
		logger.LogError("SHARE_COLLECTIVE", target, err)
		return fmt.Errorf("share with '%s': %w", target, err)
	}

	logger.Log("Nextcloud: Shared collective %d with %s", id, target)
	return nil
}
