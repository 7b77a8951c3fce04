package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagwatch/pkg/cli"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// fakeGitHub serves latest releases and issues from mutable tables
type fakeGitHub struct {
	mu       sync.Mutex
	releases map[string]string
}

func (f *fakeGitHub) setRelease(repo, tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[repo] = tag
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, string) {
	t.Helper()
	f := &fakeGitHub{releases: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		repo := r.PathValue("owner") + "/" + r.PathValue("repo")
		f.mu.Lock()
		tag, ok := f.releases[repo]
		f.mu.Unlock()
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"tag_name":%q,"name":%q,"html_url":"https://github.com/%s/releases/tag/%s"}`, tag, tag, repo, tag)
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("number") != "1" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"number":1,"state":"open","title":"Found a bug","html_url":"https://github.com/%s/%s/issues/1","comments_url":"http://%s/repos/%s/%s/issues/1/comments","created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-03T03:04:05Z"}`,
			r.PathValue("owner"), r.PathValue("repo"), r.Host, r.PathValue("owner"), r.PathValue("repo"))
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"body":"first"},{"body":"looking into it"}]`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return f, server.URL
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewCommand()
	cmd.Writer = &stdout
	cmd.ErrWriter = &stderr

	err := cmd.Run(context.Background(), append([]string{"tagwatch", "--log-level", "error"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestCheck(t *testing.T) {
	gh, apiURL := newFakeGitHub(t)
	gh.setRelease("octocat/Hello-World", "v1.0")
	gh.setRelease("octocat/Spoon-Knife", "v2.0")

	dir := t.TempDir()
	prefillPath := filepath.Join(dir, "prefill.txt")
	gt.NoError(t, os.WriteFile(prefillPath, []byte("- octocat/Hello-World\n- octocat/Spoon-Knife\n- octocat/gone\n"), 0o644))

	common := []string{"--github-api-url", apiURL, "--data-dir", dir}

	stdout, stderr, err := run(t, append([]string{"check", "--prefill", prefillPath}, common...)...)
	gt.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	gt.Array(t, lines).Length(3)
	gt.Value(t, strings.Fields(lines[1])[:4]).Equal([]string{"octocat/Hello-World", "v1.0", "N/A", "X"})
	gt.String(t, stderr).Contains("octocat/gone")

	gh.setRelease("octocat/Spoon-Knife", "v2.1")

	stdout, _, err = run(t, append([]string{"main", "--updated-only", "--format", "json"}, common...)...)
	gt.NoError(t, err)

	var result struct {
		PassID       string `json:"pass_id"`
		Repositories []struct {
			Repository  string `json:"repository"`
			Tag         string `json:"tag"`
			PreviousTag string `json:"previous_tag"`
			Changed     bool   `json:"changed"`
		} `json:"repositories"`
	}
	gt.NoError(t, json.Unmarshal([]byte(stdout), &result))
	gt.Value(t, result.PassID).NotEqual("")
	gt.Array(t, result.Repositories).Length(1)
	gt.Value(t, result.Repositories[0].Repository).Equal("octocat/Spoon-Knife")
	gt.Value(t, result.Repositories[0].Tag).Equal("v2.1")
	gt.Value(t, result.Repositories[0].PreviousTag).Equal("v2.0")

	history, err := os.ReadFile(filepath.Join(dir, "history.txt"))
	gt.NoError(t, err)
	gt.String(t, string(history)).Contains("octocat/Spoon-Knife:v2.1\tv2.0\t")

	stdout, _, err = run(t, append([]string{"history"}, "--data-dir", dir)...)
	gt.NoError(t, err)
	gt.String(t, stdout).Contains("octocat/Spoon-Knife")
	gt.String(t, stdout).Contains("v2.1")
}

func TestCheck_InvalidFormat(t *testing.T) {
	_, _, err := run(t, "check", "--format", "xml", "--store", "memory")
	gt.Error(t, err)
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := run(t, "add", "--data-dir", dir, "octocat/Hello-World", "octocat/Hello-World")
	gt.NoError(t, err)
	gt.String(t, stdout).Contains("added octocat/Hello-World")
	gt.String(t, stdout).Contains("octocat/Hello-World is already tracked")

	data, err := os.ReadFile(filepath.Join(dir, "repositories.txt"))
	gt.NoError(t, err)
	gt.Value(t, string(data)).Equal("octocat/Hello-World\n")

	_, _, err = run(t, "add", "--data-dir", dir, "broken")
	gt.Error(t, err)

	_, _, err = run(t, "add", "--data-dir", dir)
	gt.Error(t, err)
}

func TestIssues(t *testing.T) {
	_, apiURL := newFakeGitHub(t)

	path := filepath.Join(t.TempDir(), "issues.txt")
	gt.NoError(t, os.WriteFile(path, []byte(`# watched issues
https://github.com/octocat/Hello-World/issues/1

octocat/Hello-World/issues/2
`), 0o644))

	stdout, stderr, err := run(t, "issues", "--github-api-url", apiURL, path)
	gt.NoError(t, err)
	gt.String(t, stdout).Contains("Found a bug")
	gt.String(t, stdout).Contains("looking into it")
	gt.String(t, stderr).Contains("octocat/Hello-World/issues/2")

	_, _, err = run(t, "issues", "--github-api-url", apiURL)
	gt.Error(t, err)
}

func TestIssues_JSONIncludesWarnings(t *testing.T) {
	_, apiURL := newFakeGitHub(t)

	path := filepath.Join(t.TempDir(), "issues.txt")
	gt.NoError(t, os.WriteFile(path, []byte("octocat/Hello-World/issues/1\noctocat/Hello-World/issues/2\nnot an issue\n"), 0o644))

	stdout, _, err := run(t, "issues", "--github-api-url", apiURL, "--format", "json", path)
	gt.NoError(t, err)

	var report struct {
		Issues []struct {
			Issue  string `json:"issue"`
			Status string `json:"status"`
		} `json:"issues"`
		Warnings []struct {
			Target  string `json:"target"`
			Message string `json:"message"`
		} `json:"warnings"`
	}
	gt.NoError(t, json.Unmarshal([]byte(stdout), &report))
	gt.Array(t, report.Issues).Length(1)
	gt.Value(t, report.Issues[0].Status).Equal("open")
	gt.Array(t, report.Warnings).Length(2)
	gt.Value(t, report.Warnings[0].Target).Equal("octocat/Hello-World/issues/2")
	gt.Value(t, report.Warnings[1].Target).Equal("not an issue")
}

func TestGet(t *testing.T) {
	gh, apiURL := newFakeGitHub(t)
	gh.setRelease("octocat/Hello-World", "v1.0")

	stdout, _, err := run(t, "get", "--github-api-url", apiURL, "octocat/Hello-World")
	gt.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	gt.Array(t, lines).Length(2)
	gt.Value(t, strings.Fields(lines[1])[:2]).Equal([]string{"octocat/Hello-World", "v1.0"})

	stdout, _, err = run(t, "get", "--github-api-url", apiURL, "--format", "json", "octocat/Hello-World")
	gt.NoError(t, err)
	var release struct {
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
		URL        string `json:"url"`
	}
	gt.NoError(t, json.Unmarshal([]byte(stdout), &release))
	gt.Value(t, release.Tag).Equal("v1.0")
	gt.Value(t, release.URL).Equal("https://github.com/octocat/Hello-World/releases/tag/v1.0")

	_, _, err = run(t, "get", "--github-api-url", apiURL, "octocat/gone")
	gt.Error(t, err)

	_, _, err = run(t, "get", "--github-api-url", apiURL)
	gt.Error(t, err)
}

func TestBulkGet(t *testing.T) {
	gh, apiURL := newFakeGitHub(t)
	gh.setRelease("octocat/Hello-World", "v1.0")
	gh.setRelease("octocat/Spoon-Knife", "v2.0")

	dir := t.TempDir()
	path := filepath.Join(dir, "repos.txt")
	gt.NoError(t, os.WriteFile(path, []byte("# watched\noctocat/Spoon-Knife\noctocat/gone\n\noctocat/Hello-World\n"), 0o644))

	stdout, stderr, err := run(t, "bulk-get", "--github-api-url", apiURL, path)
	gt.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	gt.Array(t, lines).Length(3)
	gt.Value(t, strings.Fields(lines[1])[0]).Equal("octocat/Spoon-Knife")
	gt.Value(t, strings.Fields(lines[2])[0]).Equal("octocat/Hello-World")
	gt.String(t, stderr).Contains("octocat/gone")

	stdout, _, err = run(t, "bulk-get", "--github-api-url", apiURL, "--format", "json", path)
	gt.NoError(t, err)
	var report struct {
		Releases []struct {
			Repository string `json:"repository"`
			Tag        string `json:"tag"`
		} `json:"releases"`
		Warnings []struct {
			Target string `json:"target"`
		} `json:"warnings"`
	}
	gt.NoError(t, json.Unmarshal([]byte(stdout), &report))
	gt.Array(t, report.Releases).Length(2)
	gt.Value(t, report.Releases[0].Tag).Equal("v2.0")
	gt.Array(t, report.Warnings).Length(1)
	gt.Value(t, report.Warnings[0].Target).Equal("octocat/gone")

	// nothing is recorded by lookups
	_, err = os.Stat(filepath.Join(dir, "history.txt"))
	gt.True(t, os.IsNotExist(err))

	emptyPath := filepath.Join(dir, "empty.txt")
	gt.NoError(t, os.WriteFile(emptyPath, []byte("# nothing\n"), 0o644))
	_, _, err = run(t, "bulk-get", "--github-api-url", apiURL, emptyPath)
	gt.Error(t, err)
}

func TestCompare(t *testing.T) {
	gh, apiURL := newFakeGitHub(t)
	gh.setRelease("octocat/Hello-World", "v1.1")
	gh.setRelease("octocat/Spoon-Knife", "v2.0")

	path := filepath.Join(t.TempDir(), "versions.txt")
	gt.NoError(t, os.WriteFile(path, []byte("octocat/Hello-World:v1.0\noctocat/Spoon-Knife:v2.0\noctocat/Hello-World\n"), 0o644))

	stdout, stderr, err := run(t, "compare", "--github-api-url", apiURL, path)
	gt.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	gt.Array(t, lines).Length(3)
	gt.Value(t, strings.Fields(lines[1])[:4]).Equal([]string{"octocat/Hello-World", "v1.1", "v1.0", "X"})
	gt.Value(t, strings.Fields(lines[2])[:4]).Equal([]string{"octocat/Spoon-Knife", "v2.0", "v2.0", "-"})
	gt.String(t, stderr).Contains("version is empty")

	stdout, _, err = run(t, "compare", "--github-api-url", apiURL, "--updated-only", "--format", "json", path)
	gt.NoError(t, err)
	var report struct {
		Repositories []struct {
			Repository  string `json:"repository"`
			Tag         string `json:"tag"`
			PreviousTag string `json:"previous_tag"`
			Changed     bool   `json:"changed"`
		} `json:"repositories"`
		Warnings []struct {
			Target string `json:"target"`
		} `json:"warnings"`
	}
	gt.NoError(t, json.Unmarshal([]byte(stdout), &report))
	gt.Array(t, report.Repositories).Length(1)
	gt.Value(t, report.Repositories[0].Repository).Equal("octocat/Hello-World")
	gt.True(t, report.Repositories[0].Changed)
	gt.Array(t, report.Warnings).Length(1)
}

func TestInvalidLogLevel(t *testing.T) {
	var stdout bytes.Buffer
	cmd := cli.NewCommand()
	cmd.Writer = &stdout
	err := cmd.Run(context.Background(), []string{"tagwatch", "--log-level", "loud", "history", "--store", "memory"})
	gt.Error(t, err)
}
