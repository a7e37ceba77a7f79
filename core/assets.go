package core

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

var sanitizer = bluemonday.UGCPolicy()

// MinifyAsset returns the URL to use for a /static/ css or js file. In prod
// the file is minified into the cache directory and a versioned URL is
// returned; anything else gets the original path back.
func MinifyAsset(env, publicDir, cacheDir, path string) string {
	if env != "prod" {
		return path
	}

	ext := filepath.Ext(path)
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, ext)

	if ext != ".css" && ext != ".js" {
		return path
	}

	if strings.Contains(name, ".min") {
		return path
	}

	rel := strings.TrimPrefix(path, "/static/")
	original, err := os.ReadFile(filepath.Join(publicDir, rel))
	if err != nil {
		return path
	}

	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)

	var buf bytes.Buffer
	var minifyErr error

	switch ext {
	case ".css":
		minifyErr = m.Minify("text/css", &buf, bytes.NewReader(original))
	case ".js":
		minifyErr = m.Minify("application/javascript", &buf, bytes.NewReader(original))
	}

	if minifyErr != nil {
		return path
	}

	minified := buf.Bytes()
	minRel := filepath.ToSlash(filepath.Join(filepath.Dir(rel), fmt.Sprintf("%s.min%s", name, ext)))

	if !cachedAssetMatches(cacheDir, minRel, minified) {
		if _, err := WriteAsset(cacheDir, minRel, minified); err != nil {
			return path
		}
	}

	return fmt.Sprintf("/static/%s?v=%s", minRel, shortHash(minified))
}

// cachedAssetMatches lets repeat renders skip rewriting files the static
// handler may be serving.
func cachedAssetMatches(cacheDir, name string, content []byte) bool {
	outPath := filepath.Join(cacheDir, "static", name)
	existing, err := os.ReadFile(outPath)
	if err != nil || !bytes.Equal(existing, content) {
		return false
	}
	_, err = os.Stat(outPath + ".gz")
	return err == nil
}

func shortHash(content []byte) string {
	h := md5.Sum(content)
	return hex.EncodeToString(h[:])[:6]
}

// TemplateFuncs is sprig's HTML-safe set plus the site helpers.
func TemplateFuncs(env string, cfg Config) template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	funcs["minify"] = func(path string) string {
		return MinifyAsset(env, cfg.PublicDir, cfg.OutputDir, path)
	}

	funcs["props"] = func(values ...interface{}) map[string]interface{} {
		if len(values)%2 != 0 {
			panic("props must be called with even number of arguments")
		}
		m := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				panic("props keys must be strings")
			}
			m[key] = values[i+1]
		}
		return m
	}

	// Upstream APIs occasionally return markup in text fields.
	funcs["sanitize"] = func(s interface{}) template.HTML {
		switch val := s.(type) {
		case string:
			return template.HTML(sanitizer.Sanitize(val))
		case template.HTML:
			return template.HTML(sanitizer.Sanitize(string(val)))
		default:
			return ""
		}
	}

	funcs["versioned"] = func(path string) string {
		if !strings.HasPrefix(path, "/static/") {
			return path
		}

		rel := strings.TrimPrefix(path, "/static/")
		locations := []string{
			filepath.Join(cfg.PublicDir, rel),
			filepath.Join(cfg.OutputDir, "static", rel),
		}

		for _, file := range locations {
			if content, err := os.ReadFile(file); err == nil {
				return fmt.Sprintf("/static/%s?v=%s", rel, shortHash(content))
			}
		}

		return path
	}

	funcs["liveReload"] = func() template.HTML {
		if env != "dev" {
			return ""
		}
		return template.HTML(reloadScript)
	}

	return funcs
}

const reloadScript = `<script>(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+"` + ReloadPath + `");` +
	`ws.onmessage=function(){location.reload()};})();</script>`
