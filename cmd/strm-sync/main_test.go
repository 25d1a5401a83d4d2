package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var fakeBodies = map[string]string{
	"":                      `{"user_info":{"auth":1,"status":"Active","exp_date":"1893456000","max_connections":"2"}}`,
	"get_live_categories":   `[{"category_id":"1","category_name":"News"},{"category_id":"2","category_name":"Sports"}]`,
	"get_vod_categories":    `[{"category_id":"10","category_name":"Action"}]`,
	"get_series_categories": `[{"category_id":"20","category_name":"Drama"}]`,
	"get_live_streams": `[
		{"name":"News One","category_id":"1","stream_id":101,"stream_icon":"http://img/n1.png","epg_channel_id":"news1.uk"},
		{"name":"Sport One","category_id":"2","stream_id":102}
	]`,
	"get_vod_streams":    `[{"name":"Film (2020)","category_id":"10","stream_id":201,"container_extension":"mkv"}]`,
	"get_series":         `[{"name":"Show","category_id":"20","series_id":301,"cover":"http://img/s.jpg","plot":"A show"}]`,
	"get_series_info:301": `{"info":{"plot":"Provider plot","genre":"Drama"},"episodes":{"1":[{"id":"9001","episode_num":1,"title":"Pilot","container_extension":"mp4"},{"id":"9002","episode_num":2,"title":"Second"}]}}`,
}

func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/player_api.php" || q.Get("username") != "u" || q.Get("password") != "secret" {
			http.NotFound(w, r)
			return
		}
		key := q.Get("action")
		if id := q.Get("series_id"); id != "" {
			key += ":" + id
		}
		body, ok := fakeBodies[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type cliEnv struct {
	base       string
	configPath string
	outputDir  string
	statePath  string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "STRMSYNC_") {
			key, _, _ := strings.Cut(kv, "=")
			t.Setenv(key, "")
		}
	}
	base := t.TempDir()
	env := &cliEnv{
		base:       base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "library"),
		statePath:  filepath.Join(base, "state", "state.json"),
	}
	body := strings.Join([]string{
		`state_path = "` + filepath.ToSlash(env.statePath) + `"`,
		`catalog_cache_path = "` + filepath.ToSlash(filepath.Join(base, "cache", "catalog.json")) + `"`,
		`history_db = "` + filepath.ToSlash(filepath.Join(base, "state", "history.db")) + `"`,
		`vault_dir = "` + filepath.ToSlash(filepath.Join(base, "state")) + `"`,
		`output_dir = "` + filepath.ToSlash(env.outputDir) + `"`,
		`metrics_textfile = "` + filepath.ToSlash(filepath.Join(base, "strmsync.prom")) + `"`,
		`requests_per_second = 0.0`,
		`log_format = "json"`,
		`log_level = "warn"`,
		"",
	}, "\n")
	if err := os.WriteFile(env.configPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--env-file", ""}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\nstdout:\n%s\nstderr:\n%s", args, err, out, errOut)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q in output:\n%s", substr, output)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCLIFetchSelectExport(t *testing.T) {
	env := setupCLIEnv(t)
	srv := fakeProvider(t)

	out := env.mustRun(t, "provider", "add", "main", "--server", srv.URL+"/", "--username", "u", "--password", "secret")
	requireContains(t, out, `Added provider "main"`)
	if state := readFile(t, env.statePath); strings.Contains(state, `"secret"`) {
		t.Errorf("state file holds the plaintext secret:\n%s", state)
	}

	out = env.mustRun(t, "provider", "check")
	requireContains(t, out, "ok")
	requireContains(t, out, "Active")

	out = env.mustRun(t, "fetch")
	requireContains(t, out, "Live: 2 | Movies: 1 | Series: 1")

	out = env.mustRun(t, "groups", "live")
	requireContains(t, out, "News")
	requireContains(t, out, "0 of 2 live groups selected")

	env.mustRun(t, "select", "add", "live", "News")
	env.mustRun(t, "select", "add", "movies", "--all")
	env.mustRun(t, "select", "add", "series", "Drama")
	out = env.mustRun(t, "select", "list")
	requireContains(t, out, "live (1)")
	requireContains(t, out, "movie (1)")

	out = env.mustRun(t, "export", "live")
	requireContains(t, out, "1 channels written to playlist")
	playlist := readFile(t, filepath.Join(env.outputDir, "live.m3u"))
	requireContains(t, playlist, "#EXTM3U url-tvg=")
	requireContains(t, playlist, `tvg-id="news1.uk" tvg-name="News One" tvg-logo="http://img/n1.png" group-title="News",News One`)
	if strings.Contains(playlist, "Sport One") {
		t.Errorf("unselected channel exported:\n%s", playlist)
	}

	out = env.mustRun(t, "export", "movies")
	requireContains(t, out, "1 movies exported")
	link := readFile(t, filepath.Join(env.outputDir, "Movies", "Action", "Film (2020)", "Film (2020).strm"))
	if link != srv.URL+"/movie/u/secret/201.mkv" {
		t.Errorf("movie link = %q", link)
	}

	out = env.mustRun(t, "export", "series")
	requireContains(t, out, "Series 1/1: Show")
	requireContains(t, out, "2 episodes exported from 1 series")
	showDir := filepath.Join(env.outputDir, "Series", "Drama", "Show")
	requireContains(t, readFile(t, filepath.Join(showDir, "tvshow.nfo")), "<genre>Drama</genre>")
	ep := readFile(t, filepath.Join(showDir, "Season 01", "Show - S01E02.strm"))
	if ep != srv.URL+"/series/u/secret/9002.mp4" {
		t.Errorf("episode link = %q", ep)
	}

	out = env.mustRun(t, "history")
	for _, kind := range []string{"live", "movie", "series"} {
		requireContains(t, out, kind)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, readFile(t, filepath.Join(env.base, "strmsync.prom")), "strmsync_export_batches_total")
}

func TestCLIExportRejections(t *testing.T) {
	env := setupCLIEnv(t)

	if _, _, err := env.run(t, "export", "live"); err == nil || !strings.Contains(err.Error(), "fetch") {
		t.Fatalf("export without catalog err = %v", err)
	}

	srv := fakeProvider(t)
	env.mustRun(t, "provider", "add", "main", "--server", srv.URL, "--username", "u", "--password", "secret")
	env.mustRun(t, "fetch")

	_, _, err := env.run(t, "export", "movies")
	if err == nil || !strings.Contains(err.Error(), "no groups selected") {
		t.Fatalf("empty selection err = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.outputDir, "Movies")); !os.IsNotExist(statErr) {
		t.Errorf("rejected export touched the output tree: %v", statErr)
	}

	env.mustRun(t, "select", "add", "live", "News")
	env.mustRun(t, "provider", "remove", "main")
	_, _, err = env.run(t, "export", "live")
	if err == nil || !strings.Contains(err.Error(), "no provider") {
		t.Fatalf("no provider err = %v", err)
	}
}

func TestCLISelectPrune(t *testing.T) {
	env := setupCLIEnv(t)
	srv := fakeProvider(t)
	env.mustRun(t, "provider", "add", "main", "--server", srv.URL, "--username", "u", "--password", "secret")
	env.mustRun(t, "select", "add", "live", "News", "Gone")

	out := env.mustRun(t, "fetch")
	requireContains(t, out, "1 selected live groups are not in this catalog")

	out = env.mustRun(t, "groups", "live", "--selected")
	requireContains(t, out, "Gone")

	out = env.mustRun(t, "select", "prune", "live")
	requireContains(t, out, `Dropped live group "Gone"`)
	out = env.mustRun(t, "select", "list", "live")
	requireContains(t, out, "live (1)")
	if strings.Contains(out, "Gone") {
		t.Errorf("pruned group still listed:\n%s", out)
	}
}

func TestCLIPrefsAndConfig(t *testing.T) {
	env := setupCLIEnv(t)

	env.mustRun(t, "prefs", "language", "nl-nl")
	env.mustRun(t, "prefs", "tmdb-key", "k123")
	out := env.mustRun(t, "prefs")
	requireContains(t, out, "TMDB API key: set")
	requireContains(t, out, "Language:     nl-NL")
	if _, _, err := env.run(t, "prefs", "language", "not a tag!"); err == nil {
		t.Error("expected invalid language error")
	}

	out = env.mustRun(t, "config", "show")
	requireContains(t, out, "# loaded from "+env.configPath)
	requireContains(t, out, "output_dir")

	target := filepath.Join(env.base, "new", "config.toml")
	env.mustRun(t, "config", "init", "--path", target)
	if _, _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Error("expected error for existing config")
	}
}
