package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testLayout = `{{ define "layout" }}<html><body>{{ template "nav" . }}{{ template "content" . }}</body></html>{{ end }}`

// setupSite writes a minimal site mirroring the starter views and returns
// a config pointing at it.
func setupSite(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()

	writeTempFile(t, root, "views/layout.html", testLayout)
	writeTempFile(t, root, "views/components/nav.html", `{{ define "nav" }}<nav>menu</nav>{{ end }}`)
	writeTempFile(t, root, "views/index.html", `{{ define "content" }}<p>Server time: {{ .serverTime }}</p>{{ end }}`)
	writeTempFile(t, root, "views/advice.html", `{{ define "content" }}{{ with .data }}{{ with .slip }}<blockquote>{{ .advice }}</blockquote>{{ end }}{{ end }}{{ end }}`)
	writeTempFile(t, root, "views/apod.html", `{{ define "content" }}{{ with .error }}<p class="error">{{ . }}</p>{{ end }}{{ with .apod_data }}<h2>{{ .title }}</h2>{{ end }}{{ end }}`)
	writeTempFile(t, root, "views/params.html", `{{ define "content" }}<h1>Hello {{ .name }}</h1>{{ end }}`)

	return Config{
		OutputDir: filepath.Join(root, "cache"),
		ViewsDir:  filepath.Join(root, "views"),
		PublicDir: filepath.Join(root, "public"),
		EnvFile:   filepath.Join(root, ".env"),
	}
}

func mustRemove(t *testing.T, path string) {
	t.Helper()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
}
