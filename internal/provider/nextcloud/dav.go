package nextcloud

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/johanforsgren/mantella/internal/provider/common"
)

const propfindDisplayName = `<?xml version="1.0" encoding="utf-8" ?>
<d:propfind xmlns:d="DAV:">
  <d:prop><d:displayname/></d:prop>
</d:propfind>`

// DirectoryClient performs shallow WebDAV listings.
type DirectoryClient struct {
	http *http.Client
}

func NewDirectoryClient(client *http.Client) *DirectoryClient {
	return &DirectoryClient{http: client}
}

// ListDirectory returns the display names of dirURL's immediate children in
// server order. The entry describing dirURL itself is dropped.
func (c *DirectoryClient) ListDirectory(ctx context.Context, dirURL string) ([]string, error) {
	const op = "list directory"

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", dirURL, strings.NewReader(propfindDisplayName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Depth", "1")
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.TransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.TransportError(op, err)
	}

	if resp.StatusCode != http.StatusMultiStatus {
		return nil, common.StatusError(op, resp, body)
	}

	names, err := parseMultistatus(body)
	if err != nil {
		return nil, &common.Error{Kind: common.ErrProtocol, Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if len(names) == 0 {
		return []string{}, nil
	}
	return names[1:], nil
}

// Tags carry no namespace, so elements match by local name whatever prefix
// the server chose.
type multistatus struct {
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href      string        `xml:"href"`
	Propstats []davPropstat `xml:"propstat"`
}

type davPropstat struct {
	DisplayName string `xml:"prop>displayname"`
	Status      string `xml:"status"`
}

func parseMultistatus(body []byte) ([]string, error) {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("malformed multistatus response: %w", err)
	}

	names := make([]string, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		names = append(names, r.name())
	}
	return names, nil
}

func (r davResponse) name() string {
	for _, ps := range r.Propstats {
		if ps.DisplayName != "" && (ps.Status == "" || statusOK(ps.Status)) {
			return ps.DisplayName
		}
	}

	href := strings.TrimRight(r.Href, "/")
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	return path.Base(href)
}

// statusOK reports whether a propstat status line such as
// "HTTP/1.1 200 OK" carries code 200. The reason phrase is optional.
func statusOK(status string) bool {
	fields := strings.Fields(status)
	return len(fields) >= 2 && fields[1] == "200"
}
