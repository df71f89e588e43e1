package nextcloud

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/provider/common"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserLimit = 500

	collectivesFolder = "Collectives"
)

// NewHTTPClient returns a client whose every request is tagged as an API
// request, logged, and bounded by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: common.NewLoggingTransport(nil),
	}
}

// NewAuthenticatedClient is NewHTTPClient plus Basic credentials read from
// store on each request.
func NewAuthenticatedClient(store domain.CredentialStore, timeout time.Duration) *http.Client {
	client := NewHTTPClient(timeout)
	client.Transport = &authTransport{store: store, next: client.Transport}
	return client
}

type authTransport struct {
	store domain.CredentialStore
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" {
		return t.next.RoundTrip(req)
	}

	cred, err := t.store.Get(req.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	if cred == nil {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.SetBasicAuth(cred.Username, cred.AccessToken)
	return t.next.RoundTrip(req)
}

func tokenURL(server string) string {
	return server + "/ocs/v2.php/core/getapppassword"
}

func revokeURL(server string) string {
	return server + "/ocs/v2.php/core/apppassword"
}

func collectivesAPIURL(server string) string {
	return server + "/index.php/apps/collectives/_api"
}

func sharesURL(server string) string {
	return server + "/ocs/v2.php/apps/files_sharing/api/v1/shares"
}

func usersURL(server string, limit int) string {
	return ocsListURL(server, "users", limit)
}

func groupsURL(server string, limit int) string {
	return ocsListURL(server, "groups", limit)
}

func ocsListURL(server, resource string, limit int) string {
	q := url.Values{}
	q.Set("search", "")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", "0")
	q.Set("format", "json")
	return server + "/ocs/v1.php/cloud/" + resource + "?" + q.Encode()
}

// collectivesURL points at rel inside the account's Collectives folder. An
// empty rel addresses the folder itself; directories end with a slash.
func collectivesURL(cred *domain.Credential, rel string, dir bool) string {
	u := cred.Server + "/remote.php/dav/files/" + url.PathEscape(cred.Username) + "/" + collectivesFolder + "/"
	if rel != "" {
		u += common.EscapePath(rel)
		if dir {
			u += "/"
		}
	}
	return u
}
