// Package web serves the task form and timeline as a server-rendered HTML page with
// live updates over Datastar SSE.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"taskline/internal/form"
	"taskline/internal/store"
	"taskline/internal/timeline"

	"github.com/charmbracelet/log"
	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

type ServerConfig struct {
	Store  *store.TaskStore
	Title  string
	Logger *log.Logger

	// PollInterval is how often the backing store fingerprint is checked.
	PollInterval time.Duration
	// NoWatch disables the on-disk change watcher (tests).
	NoWatch bool
}

type Server struct {
	mu   sync.RWMutex
	cfg  ServerConfig
	tmpl *template.Template

	hub     *changeHub
	watcher *storeWatcher
	flashes *flashStore
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("web: store is nil")
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Title == "" {
		cfg.Title = timeline.DefaultTitle
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:     cfg,
		tmpl:    tmpl,
		hub:     newChangeHub(),
		flashes: newFlashStore(),
	}
	srv.watcher = newStoreWatcher(cfg.Store, srv.hub, cfg.Logger, cfg.PollInterval)
	if !cfg.NoWatch {
		go srv.watcher.loop()
	}
	return srv, nil
}

// Close stops the background watcher.
func (s *Server) Close() {
	s.watcher.Stop()
}

func (s *Server) store() *store.TaskStore {
	s.mu.RLock()
	st := s.cfg.Store
	s.mu.RUnlock()
	return st
}

func (s *Server) logger() *log.Logger {
	s.mu.RLock()
	l := s.cfg.Logger
	s.mu.RUnlock()
	return l
}

// Handler returns the routes wrapped with request logging and compression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /chart.json", s.handleChartJSON)
	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("POST /tasks", s.handleTaskSubmit)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return withRequestLog(s.logger(), withCompression(s.logger(), mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(name)
		if err != nil || len(b) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

type rowVM struct {
	timeline.Row
	Days      int
	Color     string
	NotesHTML template.HTML
}

type pageVM struct {
	Title    string
	Backend  string
	Seeded   bool
	Names    []string
	Selected string
	Fields   form.Fields
	Errors   map[string]string
	Flash    string
	Rows     []rowVM
	Figure   template.JS
}

func (s *Server) buildPageVM(sess *form.Session, errs []form.FieldError, flash string) (pageVM, error) {
	st := s.store()
	main, err := s.buildMainVM()
	if err != nil {
		return pageVM{}, err
	}
	vm := pageVM{
		Title:    s.cfg.Title,
		Backend:  st.Describe(),
		Seeded:   st.Seeded(),
		Names:    st.Names(),
		Selected: sess.Selected,
		Fields:   sess.Fields,
		Errors:   map[string]string{},
		Flash:    flash,
		Rows:     main.Rows,
		Figure:   main.Figure,
	}
	for _, fe := range errs {
		if _, ok := vm.Errors[fe.Field]; !ok {
			vm.Errors[fe.Field] = fe.Message
		}
	}
	return vm, nil
}

type mainVM struct {
	Rows   []rowVM
	Figure template.JS
}

func (s *Server) buildMainVM() (mainVM, error) {
	rows := timeline.Project(s.store().Tasks())
	pal := timeline.NewPalette(rows)
	fig, err := timeline.BuildFigure(rows, timeline.FigureOptions{Title: s.cfg.Title}).JSON()
	if err != nil {
		return mainVM{}, err
	}
	vm := mainVM{Rows: make([]rowVM, 0, len(rows)), Figure: template.JS(fig)}
	for _, r := range rows {
		vm.Rows = append(vm.Rows, rowVM{
			Row:       r,
			Days:      r.Start.Days(r.Finish) + 1,
			Color:     pal.Color(r.Resource),
			NotesHTML: renderNotesHTML(r.Notes),
		})
	}
	return vm, nil
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	sess := form.NewSession()
	sess.Select(s.store(), r.URL.Query().Get("task"))

	vm, err := s.buildPageVM(sess, nil, s.flashes.take(sid))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTMLTemplate(w, http.StatusOK, "page", vm)
}

func (s *Server) handleTaskSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sid := sessionID(w, r)

	sess := &form.Session{
		Selected: strings.TrimSpace(r.PostFormValue("selected")),
		Fields: form.Fields{
			Name:     r.PostFormValue("name"),
			Start:    r.PostFormValue("start"),
			End:      r.PostFormValue("end"),
			Category: r.PostFormValue("category"),
			Notes:    r.PostFormValue("notes"),
			Users:    r.PostFormValue("users"),
		},
	}
	if sess.Selected != "" && !s.store().Has(sess.Selected) {
		sess.Selected = ""
	}

	oldName := sess.Selected
	res, err := sess.Submit(r.Context(), s.store())
	if err != nil {
		s.logger().Error("save task failed", "name", sess.Fields.Name, "err", err)
		http.Error(w, fmt.Sprintf("save failed: %v", err), http.StatusInternalServerError)
		return
	}
	if !res.Saved {
		vm, err := s.buildPageVM(sess, res.Errors, "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeHTMLTemplate(w, http.StatusUnprocessableEntity, "page", vm)
		return
	}

	if oldName != "" && oldName != res.Task.Name {
		s.logger().Info("task renamed", "from", oldName, "to", res.Task.Name)
	} else {
		s.logger().Info("task saved", "name", res.Task.Name)
	}
	s.watcher.noteWrite()
	s.flashes.set(sid, res.Message)
	http.Redirect(w, r, "/?task="+url.QueryEscape(res.Task.Name), http.StatusSeeOther)
}

func (s *Server) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	fig, err := timeline.BuildFigure(timeline.Project(s.store().Tasks()), timeline.FigureOptions{Title: s.cfg.Title}).JSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fig)
	_, _ = w.Write([]byte("\n"))
}

// handleEvents streams the rows table and the chart whenever the tasks change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	_ = sse.MarshalAndPatchSignals(map[string]any{"version": s.watcher.fingerprint()})

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			vm, err := s.buildMainVM()
			if err != nil {
				_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
				continue
			}
			html, err := s.renderTemplate("rows", vm)
			if err != nil {
				_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
				continue
			}
			_ = sse.PatchElements(html, datastar.WithSelector("#task-rows"), datastar.WithMode(datastar.ElementPatchModeOuter))
			_ = sse.ExecuteScript("window.tasklineReplot && window.tasklineReplot(" + string(vm.Figure) + ")")
			_ = sse.MarshalAndPatchSignals(map[string]any{"version": s.watcher.fingerprint()})
		}
	}
}
