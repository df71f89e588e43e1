package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"

	"github.com/johanforsgren/mantella/internal/domain"
)

const readme = "# Welcome\n\n- [ ] read this\n"

type stubCloud struct {
	mu      sync.Mutex
	files   map[string]string
	revoked atomic.Bool
}

func (s *stubCloud) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const dav = "/remote.php/dav/files/alice/Collectives/"
	switch {
	case r.URL.Path == "/ocs/v2.php/core/getapppassword":
		_, _ = w.Write([]byte(`<ocs><data><apppassword>app-token</apppassword></data></ocs>`))
	case r.URL.Path == "/ocs/v2.php/core/apppassword" && r.Method == http.MethodDelete:
		s.revoked.Store(true)
	case r.URL.Path == "/index.php/apps/collectives/_api":
		_, _ = w.Write([]byte(`{"data":[{"name":"Team Wiki","emoji":"📘"}]}`))
	case r.URL.Path == dav && r.Method == "PROPFIND":
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(multistatus("Collectives", "Team Wiki")))
	case r.URL.Path == dav+"Team Wiki/" && r.Method == "PROPFIND":
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(multistatus("Team Wiki", "Readme.md", "alpha.md", "image.png")))
	case strings.HasPrefix(r.URL.Path, dav) && r.Method == http.MethodGet:
		content, ok := s.files[strings.TrimPrefix(r.URL.Path, dav)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	case strings.HasPrefix(r.URL.Path, dav) && r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		s.files[strings.TrimPrefix(r.URL.Path, dav)] = string(body)
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func multistatus(names ...string) string {
	var b strings.Builder
	b.WriteString(`<d:multistatus xmlns:d="DAV:">`)
	for _, name := range names {
		fmt.Fprintf(&b, `<d:response><d:href>/x/%s</d:href><d:propstat><d:prop><d:displayname>%s</d:displayname></d:prop></d:propstat></d:response>`, name, name)
	}
	b.WriteString(`</d:multistatus>`)
	return b.String()
}

type env struct {
	server    *httptest.Server
	cloud     *stubCloud
	credsPath string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cloud := &stubCloud{files: map[string]string{"Team Wiki/Readme.md": readme}}
	server := httptest.NewServer(cloud)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("MANTELLA_CREDENTIALS_PATH", filepath.Join(dir, "credentials.json"))
	t.Setenv("MANTELLA_LOG_PATH", filepath.Join(dir, "mantella.log"))

	return &env{server: server, cloud: cloud, credsPath: filepath.Join(dir, "credentials.json")}
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func (e *env) login(t *testing.T) {
	t.Helper()
	if out, err := e.run(t, "", "login", "--server", e.server.URL, "--user", "alice", "--password", "pw"); err != nil {
		t.Fatalf("login error = %v, output %q", err, out)
	}
}

func TestLoginAndWhoami(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "pw\n", "login", "-s", e.server.URL, "-u", "alice")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "signed in as alice") {
		t.Errorf("login output = %q", out)
	}
	if _, err := os.Stat(e.credsPath); err != nil {
		t.Errorf("credential file missing: %v", err)
	}

	out, err = e.run(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if !strings.Contains(out, "alice on "+e.server.URL) {
		t.Errorf("whoami output = %q", out)
	}
}

func TestLoginRequiresFields(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "\n", "login", "--server", e.server.URL)
	if err == nil || !strings.Contains(err.Error(), "username") {
		t.Errorf("login error = %v, want missing username", err)
	}
}

func TestCollectivesCommand(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "collectives")
	if err != nil {
		t.Fatalf("collectives error = %v", err)
	}
	for _, want := range []string{"📘", "Team Wiki", "(2 pages)", "★ Readme", "• alpha"} {
		if !strings.Contains(out, want) {
			t.Errorf("collectives output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "image") {
		t.Error("non-markdown files should not be listed")
	}
	if strings.Index(out, "Readme") > strings.Index(out, "alpha") {
		t.Error("main page should be listed first")
	}
}

func TestPagesCommand(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "pages", "team wiki")
	if err != nil {
		t.Fatalf("pages error = %v", err)
	}
	if !strings.Contains(out, "Team Wiki/alpha.md") {
		t.Errorf("pages output = %q", out)
	}

	if _, err := e.run(t, "", "pages", "Nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("pages Nope error = %v, want not found", err)
	}
}

func TestCatCommand(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "cat", "--raw", "Team Wiki/Readme.md")
	if err != nil {
		t.Fatalf("cat --raw error = %v", err)
	}
	if out != readme {
		t.Errorf("cat --raw output = %q, want %q", out, readme)
	}

	out, err = e.run(t, "", "cat", "Team Wiki/Readme.md")
	if err != nil {
		t.Fatalf("cat error = %v", err)
	}
	if !strings.Contains(out, "Welcome") || strings.Contains(out, "# Welcome") {
		t.Errorf("cat output should render the heading, got %q", out)
	}

	if _, err := e.run(t, "", "cat", "Readme.md"); err == nil {
		t.Error("cat without a collective should fail")
	}
}

func TestPutCommand(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	updated := "# Welcome\n\nfresh line\n"
	out, err := e.run(t, updated, "put", "--dry-run", "Team Wiki/Readme.md")
	if err != nil {
		t.Fatalf("put --dry-run error = %v", err)
	}
	for _, want := range []string{"-- [ ] read this", "+fresh line", "+1 -1"} {
		if !strings.Contains(out, want) {
			t.Errorf("put --dry-run output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "saved") {
		t.Error("put --dry-run should not save")
	}
	e.cloud.mu.Lock()
	unchanged := e.cloud.files["Team Wiki/Readme.md"] == readme
	e.cloud.mu.Unlock()
	if !unchanged {
		t.Error("put --dry-run changed the stored page")
	}

	out, err = e.run(t, updated, "put", "--diff", "Team Wiki/Readme.md")
	if err != nil {
		t.Fatalf("put --diff error = %v", err)
	}
	if !strings.Contains(out, "+fresh line") || !strings.Contains(out, "saved Team Wiki/Readme.md") {
		t.Errorf("put --diff output = %q", out)
	}
	e.cloud.mu.Lock()
	defer e.cloud.mu.Unlock()
	if got := e.cloud.files["Team Wiki/Readme.md"]; got != updated {
		t.Errorf("stored page = %q, want %q", got, updated)
	}
}

func TestPutNewPageDiff(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "hello\n", "put", "--dry-run", "Team Wiki/new.md")
	if err != nil {
		t.Fatalf("put --dry-run error = %v", err)
	}
	if !strings.Contains(out, "+hello") || !strings.Contains(out, "+1 -0") {
		t.Errorf("put --dry-run output = %q", out)
	}
}

func TestNotSignedIn(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "collectives")
	if err == nil || !strings.Contains(err.Error(), "missing credentials") {
		t.Errorf("collectives error = %v, want missing credentials", err)
	}
}

func TestLogoutCommand(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	out, err := e.run(t, "", "logout")
	if err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if !strings.Contains(out, "signed out") {
		t.Errorf("logout output = %q", out)
	}
	if !e.cloud.revoked.Load() {
		t.Error("app password was not revoked")
	}
	if _, err := os.Stat(e.credsPath); !os.IsNotExist(err) {
		t.Errorf("credential file should be gone, stat error = %v", err)
	}

	out, _ = e.run(t, "", "whoami")
	if !strings.Contains(out, "not signed in") {
		t.Errorf("whoami after logout = %q", out)
	}
}

func TestFormatTree(t *testing.T) {
	if got := formatTree(nil, nil); !strings.Contains(got, "no collectives") {
		t.Errorf("formatTree(nil) = %q", got)
	}

	collectives := []domain.Collective{{Name: "A"}, {Name: "B", Emoji: "🚀"}}
	pages := map[string][]domain.Page{
		"A": {domain.NewPage("A", "Readme.md")},
	}
	got := formatTree(collectives, func(name string) []domain.Page { return pages[name] })

	for _, want := range []string{"A (1 page)", "★ Readme", "🚀 B (0 pages)"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatTree() missing %q:\n%s", want, got)
		}
	}
}

func TestFormatPeople(t *testing.T) {
	got := formatPeople(domain.UsersAndGroups{Users: []string{"alice", "bob"}, Groups: []string{}})

	for _, want := range []string{"Users (2)", "• alice", "• bob", "Groups (0)"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatPeople() missing %q:\n%s", want, got)
		}
	}
}

func TestLogLineStyle(t *testing.T) {
	line := "[ERROR] GET_FILE: A/x.md - boom"
	if got := logLineStyle(line).Render(line); !strings.Contains(got, "boom") {
		t.Errorf("logLineStyle() dropped text: %q", got)
	}
}
