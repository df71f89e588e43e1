package nextcloud

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/logger"
	"github.com/johanforsgren/mantella/internal/provider/common"
)

// AuthClient exchanges a login password for an app password and revokes it.
// It never reads the credential store; every call carries its own secret.
type AuthClient struct {
	http *http.Client
}

func NewAuthClient(client *http.Client) *AuthClient {
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &AuthClient{http: client}
}

// AcquireToken returns a long-lived app password for username. A 403 means
// password already is an app password, so it is handed back unchanged.
func (c *AuthClient) AcquireToken(ctx context.Context, server, username, password string) (string, error) {
	const op = "acquire token"

	server, err := common.NormalizeServer(server)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL(server), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.SetBasicAuth(username, password)

	logger.Log("Nextcloud: Requesting app password for %s on %s", username, server)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.LogError("ACQUIRE_TOKEN", server, err)
		return "", common.TransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", common.TransportError(op, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		token, err := parseAppPassword(body)
		if err != nil {
			logger.LogError("ACQUIRE_TOKEN", server, err)
			return "", &common.Error{Kind: common.ErrProtocol, Op: op, StatusCode: resp.StatusCode, Err: err}
		}
		logger.Log("Nextcloud: App password issued for %s", username)
		return token, nil
	case http.StatusForbidden:
		logger.Log("Nextcloud: %s already authenticated with an app password", username)
		return password, nil
	default:
		message := common.ExtractErrorMessage(body)
		if message == "" {
			message = resp.Status
		}
		err := &common.Error{Kind: common.ErrProtocol, Op: op, StatusCode: resp.StatusCode, Message: message}
		logger.LogError("ACQUIRE_TOKEN", server, err)
		return "", err
	}
}

// RevokeToken deletes cred's app password on the server. Failures are only
// logged: signing out locally must never depend on the server.
func (c *AuthClient) RevokeToken(ctx context.Context, cred domain.Credential) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, revokeURL(strings.TrimRight(cred.Server, "/")), nil)
	if err != nil {
		logger.LogError("REVOKE_TOKEN", cred.Server, err)
		return
	}
	req.SetBasicAuth(cred.Username, cred.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.LogError("REVOKE_TOKEN", cred.Server, common.TransportError("revoke token", err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		logger.LogError("REVOKE_TOKEN", cred.Server, fmt.Errorf("app password revoke failed: HTTP %d", resp.StatusCode))
		return
	}
	logger.Log("Nextcloud: App password revoked for %s", cred.Username)
}

var (
	errTokenMissing   = errors.New("token not present in response")
	errTokenDuplicate = errors.New("more than one token in response")
)

// parseAppPassword finds the single apppassword element, whatever its
// namespace prefix.
func parseAppPassword(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var token string
	found := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed token response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "apppassword" {
			continue
		}
		if found {
			return "", errTokenDuplicate
		}

		var value string
		if err := dec.DecodeElement(&value, &start); err != nil {
			return "", fmt.Errorf("malformed token response: %w", err)
		}
		token = strings.TrimSpace(value)
		found = true
	}

	if token == "" {
		return "", errTokenMissing
	}
	return token, nil
}
