package core

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	TimeLayout    = "02/01/2006 15:04:05"
	APODErrorText = "Failed to fetch APOD data"
)

// HandlerFunc is a page handler. A returned error becomes a generic 500 (or
// 404 for ErrNotFound); its detail goes to the log, never to the client.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Pages holds everything the page handlers share. The outbound client is
// owned by the server lifecycle and only borrowed here.
type Pages struct {
	Client   *Client
	Settings *Settings
	Renderer *Renderer
	Logger   *slog.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

func (p *Pages) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", p.Handle("index", p.Index))
	mux.Handle("GET /advice", p.Handle("advice", p.Advice))
	mux.Handle("GET /apod", p.Handle("apod", p.APOD))
	mux.Handle("GET /params", p.Handle("params", p.Params))
	mux.Handle("GET /", p.Handle("not_found", p.NotFound))
}

func (p *Pages) Handle(route string, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			p.Metrics.observeRequest(route, rec.Status())
		}()

		err := h(rec, r)
		if err == nil {
			return
		}

		status := http.StatusInternalServerError
		if IsNotFoundError(err) {
			status = http.StatusNotFound
		}

		attrs := []any{"route", route, "path", r.URL.Path, "id", RequestID(r.Context()), "err", err}
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			attrs = append(attrs, "api", upstream.API, "upstream_status", upstream.Status)
		}
		p.logger().Error("request failed", attrs...)

		if rec.status != 0 {
			return
		}
		http.Error(rec, http.StatusText(status), status)
	})
}

func (p *Pages) Index(w http.ResponseWriter, r *http.Request) error {
	return p.render(w, r, "index", Context{
		"serverTime": p.now().Format(TimeLayout),
	})
}

// Advice has no fallback path: any upstream or decode failure is a 500.
func (p *Pages) Advice(w http.ResponseWriter, r *http.Request) error {
	url, err := p.Settings.Lookup(SettingAdviceURL)
	if err != nil {
		return err
	}

	resp, err := p.Client.Fetch(r.Context(), "advice", url)
	if err != nil {
		return err
	}

	data, err := resp.JSON()
	if err != nil {
		return &UpstreamError{API: "advice", Status: resp.Status, Err: err}
	}

	return p.render(w, r, "advice", Context{"data": data})
}

func (p *Pages) APOD(w http.ResponseWriter, r *http.Request) error {
	base, err := p.Settings.Lookup(SettingAPODURL)
	if err != nil {
		return err
	}
	key, err := p.Settings.Lookup(SettingNASAAPIKey)
	if err != nil {
		return err
	}

	resp, err := p.Client.Fetch(r.Context(), "apod", base+key)
	if err != nil {
		return err
	}

	if resp.Status != http.StatusOK {
		fallback := &UpstreamError{API: "apod", Status: resp.Status, Err: ErrUpstreamStatus}
		p.logger().Warn("apod fallback", "id", RequestID(r.Context()), "err", fallback)
		return p.render(w, r, "apod", Context{
			"apod_data": nil,
			"error":     APODErrorText,
		})
	}

	data, err := resp.JSON()
	if err != nil {
		return &UpstreamError{API: "apod", Status: resp.Status, Err: err}
	}

	return p.render(w, r, "apod", Context{"apod_data": data})
}

func (p *Pages) Params(w http.ResponseWriter, r *http.Request) error {
	return p.render(w, r, "params", Context{
		"name": r.URL.Query().Get("name"),
	})
}

// NotFound renders views/404.html when the site has one.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := p.Renderer.Execute(&buf, "404", p.base(r, Context{})); err != nil {
		http.NotFound(w, r)
		return nil
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write(buf.Bytes())
	return err
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, name string, ctx Context) error {
	return p.Renderer.Render(w, name, p.base(r, ctx))
}

// base adds the request details every view may use.
func (p *Pages) base(r *http.Request, ctx Context) Context {
	ctx["path"] = r.URL.Path
	ctx["query"] = r.URL.Query()
	return ctx
}

func (p *Pages) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pages) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
