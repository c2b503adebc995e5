package browser

import (
	"crypto/rand"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mattjoyce/webshell/internal/assets"
	"github.com/mattjoyce/webshell/internal/auth"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

//go:embed bootstrap.js
var bootstrapJS string

// maxIPCBody bounds a single invoke message.
const maxIPCBody = 4 << 20

func windowPath(label tag.Label) string {
	return "/w/" + url.PathEscape(label.String()) + "/"
}

func (r *Runtime) routes() *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(r.loggingMiddleware)
	mux.Use(middleware.Recoverer)
	if r.cfg.Metrics != nil {
		mux.Use(r.cfg.Metrics.Middleware)
	}
	if len(r.cfg.DevOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: r.cfg.DevOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "Last-Event-ID"},
			MaxAge:         300,
		}))
	}

	mux.Get("/", r.handleIndex)
	if r.cfg.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", r.cfg.Metrics.Handler())
	}

	mux.Route("/w/{label}", func(wr chi.Router) {
		wr.Group(func(wr chi.Router) {
			wr.Use(r.tokenMiddleware)
			wr.Get("/scripts", r.handleScripts)
			wr.Post("/ipc", r.handleIPC)
			wr.Post("/window-event", r.handleWindowEvent)
		})
		wr.Get("/proto/{scheme}/*", r.handleProtocol)
		wr.Get("/*", r.handleContent)
	})

	return mux
}

func (r *Runtime) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		r.logger.Debug("http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(req.Context()),
		)
	})
}

// tokenMiddleware requires the window's bearer token.
func (r *Runtime) tokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, err := auth.TokenFromRequest(req)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !r.tokens.Verify(labelParam(req), token) {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, req)
	})
}

// labelParam reads the window label from the route. Labels may contain
// '/', which arrives escaped.
func labelParam(req *http.Request) tag.Label {
	raw := chi.URLParam(req, "label")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return tag.Label(raw)
}

func (r *Runtime) lookup(w http.ResponseWriter, req *http.Request) (*Window, bool) {
	label := labelParam(req)
	win, ok := r.window(label)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("window %q not found", label))
		return nil, false
	}
	return win, true
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>webshell</title></head>
<body><h1>Windows</h1><ul>
{{range .}}<li><a href="{{.Path}}">{{.Title}}</a> <code>{{.Label}}</code></li>
{{end}}</ul></body></html>
`))

func (r *Runtime) handleIndex(w http.ResponseWriter, req *http.Request) {
	type entry struct {
		Label, Title, Path string
	}
	var entries []entry
	for _, l := range r.labels() {
		win, ok := r.window(l)
		if !ok {
			continue
		}
		win.mu.Lock()
		title := win.title
		win.mu.Unlock()
		if title == "" {
			title = l.String()
		}
		entries = append(entries, entry{Label: l.String(), Title: title, Path: windowPath(l)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, entries); err != nil {
		r.logger.Warn("render index failed", "error", err)
	}
}

// bootstrap returns the script injected at the top of every page of win.
func (r *Runtime) bootstrap(win *Window) string {
	token, _ := r.tokens.Token(win.label)
	lit := func(v any) string {
		b, _ := json.Marshal(v)
		return string(b)
	}
	shim := strings.NewReplacer(
		"__LABEL__", lit(win.label.String()),
		"__TOKEN__", lit(token),
		"__BASE__", lit(strings.TrimSuffix(windowPath(win.label), "/")),
		"__SINCE__", strconv.FormatInt(win.hub.nextID.Load(), 10),
	).Replace(bootstrapJS)

	var b strings.Builder
	b.WriteString(shim)
	for _, s := range win.pending.WebviewAttributes.InitializationScripts {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

// injectBootstrap puts the bridge into an HTML document under a fresh
// nonce. The page's policy is widened to admit it and the host scripts it
// evaluates.
func (r *Runtime) injectBootstrap(win *Window, document []byte) ([]byte, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	return assets.InjectScript(document, r.bootstrap(win), nonce)
}

func newNonce() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b[:]), nil
}

func (r *Runtime) handleContent(w http.ResponseWriter, req *http.Request) {
	win, ok := r.lookup(w, req)
	if !ok {
		return
	}
	rel := chi.URLParam(req, "*")
	if rel == "" && !strings.HasSuffix(req.URL.Path, "/") {
		http.Redirect(w, req, req.URL.Path+"/", http.StatusMovedPermanently)
		return
	}

	target, err := url.Parse(win.pending.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("invalid window url: %v", err))
		return
	}
	if target.Scheme == "http" || target.Scheme == "https" {
		r.proxy(win, target).ServeHTTP(w, req)
		return
	}

	p := target.Path
	if rel != "" {
		p = "/" + rel
	}
	body, err := r.serveScheme(win, target.Scheme, target.Host, p)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if assets.IsHTML(p) {
		injected, err := r.injectBootstrap(win, body)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(injected)
		return
	}
	writeAsset(w, req, assets.MimeType(assets.Normalize(p)), body)
}

func (r *Runtime) serveScheme(win *Window, scheme, host, p string) ([]byte, error) {
	handler, ok := win.pending.WebviewAttributes.CustomProtocols[scheme]
	if !ok {
		return nil, fmt.Errorf("no handler for scheme %q", scheme)
	}
	if host == "" {
		host = "localhost"
	}
	return handler(scheme + "://" + host + "/" + strings.TrimPrefix(p, "/"))
}

// proxy forwards to a dev server and injects the bootstrap into HTML.
func (r *Runtime) proxy(win *Window, target *url.URL) http.Handler {
	prefix := strings.TrimSuffix(windowPath(win.label), "/")
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = strings.TrimSuffix(target.Path, "/") + "/" + strings.TrimPrefix(strings.TrimPrefix(pr.In.URL.Path, prefix), "/")
			pr.Out.URL.RawPath = ""
			pr.Out.Header.Del("Accept-Encoding")
			pr.Out.Header.Del("Authorization")
		},
		ModifyResponse: func(resp *http.Response) error {
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
				return nil
			}
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return err
			}
			injected, err := r.injectBootstrap(win, body)
			if err != nil {
				return err
			}
			resp.Body = io.NopCloser(strings.NewReader(string(injected)))
			resp.ContentLength = int64(len(injected))
			resp.Header.Set("Content-Length", strconv.Itoa(len(injected)))
			resp.Header.Del("Content-Security-Policy")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
			r.logger.Warn("dev server proxy failed", "window", win.label, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
		},
	}
}

func (r *Runtime) handleProtocol(w http.ResponseWriter, req *http.Request) {
	win, ok := r.lookup(w, req)
	if !ok {
		return
	}
	scheme := chi.URLParam(req, "scheme")
	p := "/" + chi.URLParam(req, "*")
	body, err := r.serveScheme(win, scheme, "localhost", p)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeAsset(w, req, assets.MimeType(assets.Normalize(p)), body)
}

func writeAsset(w http.ResponseWriter, req *http.Request, contentType string, body []byte) {
	etag := assets.ETag(body)
	w.Header().Set("ETag", etag)
	if match := req.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

func (r *Runtime) handleScripts(w http.ResponseWriter, req *http.Request) {
	win, ok := r.lookup(w, req)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	lastID := parseLastEventID(req.Header.Get("Last-Event-ID"))
	if lastID == 0 {
		lastID = parseLastEventID(req.URL.Query().Get("since"))
	}

	ch, cancel := win.hub.Subscribe()
	defer cancel()

	// Replay what the page missed, then skip duplicates from the live feed.
	for _, s := range win.hub.SnapshotSince(lastID) {
		if err := writeSSE(w, s); err != nil {
			return
		}
		lastID = s.ID
	}
	flusher.Flush()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-req.Context().Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if s.ID <= lastID {
				continue
			}
			if err := writeSSE(w, s); err != nil {
				return
			}
			lastID = s.ID
			flusher.Flush()
		case <-keepAlive.C:
			// SSE comment line as keep-alive.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func parseLastEventID(v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// writeSSE frames a script as one event. Every source line gets its own
// data: line; the browser joins them with newlines.
func writeSSE(w io.Writer, s Script) error {
	if _, err := fmt.Fprintf(w, "id: %d\n", s.ID); err != nil {
		return err
	}
	for _, line := range strings.Split(s.Source, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", strings.TrimSuffix(line, "\r")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}

func (r *Runtime) handleIPC(w http.ResponseWriter, req *http.Request) {
	win, ok := r.lookup(w, req)
	if !ok {
		return
	}
	if win.pending.RPCHandler == nil {
		writeError(w, http.StatusNotImplemented, "window does not accept invoke messages")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxIPCBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	win.pending.RPCHandler(win.detached(), body)
	w.WriteHeader(http.StatusNoContent)
}

// pageEvent is a window event reported by the page.
type pageEvent struct {
	Kind        string  `json:"kind"`
	Width       uint32  `json:"width"`
	Height      uint32  `json:"height"`
	X           int32   `json:"x"`
	Y           int32   `json:"y"`
	Focused     bool    `json:"focused"`
	ScaleFactor float64 `json:"scaleFactor"`
}

func (e pageEvent) windowEvent() (runtime.WindowEvent, error) {
	switch e.Kind {
	case "resized":
		return runtime.WindowEvent{Kind: runtime.WindowResized, Size: runtime.PhysicalSize{Width: e.Width, Height: e.Height}}, nil
	case "moved":
		return runtime.WindowEvent{Kind: runtime.WindowMoved, Position: runtime.PhysicalPosition{X: e.X, Y: e.Y}}, nil
	case "focused":
		return runtime.WindowEvent{Kind: runtime.WindowFocused, Focused: e.Focused}, nil
	case "scale-factor-changed":
		if e.ScaleFactor <= 0 {
			return runtime.WindowEvent{}, fmt.Errorf("scaleFactor must be positive")
		}
		return runtime.WindowEvent{
			Kind:        runtime.WindowScaleFactorChanged,
			ScaleFactor: e.ScaleFactor,
			Size:        runtime.PhysicalSize{Width: e.Width, Height: e.Height},
		}, nil
	case "close-requested":
		return runtime.WindowEvent{Kind: runtime.WindowCloseRequested}, nil
	}
	return runtime.WindowEvent{}, fmt.Errorf("unknown window event kind %q", e.Kind)
}

func (r *Runtime) handleWindowEvent(w http.ResponseWriter, req *http.Request) {
	win, ok := r.lookup(w, req)
	if !ok {
		return
	}
	var pe pageEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 64<<10)).Decode(&pe); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid window event: %v", err))
		return
	}
	ev, err := pe.windowEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	win.fire(ev)
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
