package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"newsdesk/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// ArticleService is what the page needs from the headlines layer.
type ArticleService interface {
	GetArticles(ctx context.Context, region, category string, page int) []model.Article
}

type Server struct {
	articles ArticleService
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
	tmpl     *template.Template
}

func NewServer(articles ArticleService, logger *zap.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		articles: articles,
		logger:   logger,
		router:   mux.NewRouter(),
		tmpl:     tmpl,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.requestLogger)

	// App Routes
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/news", s.handleNews).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/news", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true}`))
}

// newsPage is the data handed to the news template.
type newsPage struct {
	Articles         []model.Article
	Regions          []Option
	Categories       []Option
	SelectedLocale   string
	SelectedCategory string
	CurrentPage      int
	PreviousPage     int
	NextPage         int
}

// HasPrevious hides the previous link on the first page.
func (p newsPage) HasPrevious() bool {
	return p.CurrentPage > model.FirstPage
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	locale := q.Get("locale")
	category := q.Get("category")

	page := model.FirstPage
	if raw := q.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid page", http.StatusBadRequest)
			return
		}
		page = p
	}

	// Canonical values are for display only; GetArticles normalizes the raw input itself.
	sel := model.Normalize(locale, category, page)
	data := newsPage{
		Articles:         s.articles.GetArticles(r.Context(), locale, category, page),
		Regions:          Regions,
		Categories:       Categories,
		SelectedLocale:   sel.Region,
		SelectedCategory: sel.Category,
		CurrentPage:      sel.Page,
		PreviousPage:     sel.Page - 1,
		NextPage:         sel.Page + 1,
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("Request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
