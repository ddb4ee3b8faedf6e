// Package site serves the institutional pages, the program CRUD endpoints,
// the vision feedback form and the chat API.
package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/sisemasexp/portal/internal/assistant"
	"github.com/sisemasexp/portal/internal/content"
	"github.com/sisemasexp/portal/internal/logger"
	"github.com/sisemasexp/portal/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names, one template file each.
const (
	pageIndex    = "index"
	pageBase     = "base"
	pageMission  = "mision"
	pageVision   = "vision"
	pagePrograms = "programas"
)

// recentFeedbackLimit is how many feedback messages the vision page lists.
const recentFeedbackLimit = 10

// Responder answers chat messages. *assistant.Service implements it.
type Responder interface {
	Respond(ctx context.Context, message string) assistant.Response
}

// ChatLimiter throttles /api/chat per client. *ratelimit.KeyedLimiter implements it.
type ChatLimiter interface {
	Allow(key string) bool
	RetryAfter(key string) time.Duration
}

// Recorder receives CRUD and feedback observations. *metrics.Metrics implements it.
type Recorder interface {
	RecordProgramMutation(action, status string)
	SetPrograms(count int)
	RecordFeedback(status string)
}

// Config holds the dependencies of a Handler. ChatLimiter and Recorder are optional.
type Config struct {
	Catalog     *content.Catalog
	Programs    storage.ProgramRepository
	Feedback    storage.FeedbackRepository
	Assistant   Responder
	ChatLimiter ChatLimiter
	Recorder    Recorder
	Logger      *logger.Logger

	// ChatTimeout bounds one /api/chat request. Zero means no extra deadline.
	ChatTimeout time.Duration
	// QueryTimeout bounds the database work of page and CRUD handlers.
	QueryTimeout time.Duration
}

// Handler serves every route of the public site.
type Handler struct {
	catalog      *content.Catalog
	programs     storage.ProgramRepository
	feedback     storage.FeedbackRepository
	assistant    Responder
	chatLimiter  ChatLimiter
	recorder     Recorder
	logger       *logger.Logger
	chatTimeout  time.Duration
	queryTimeout time.Duration
	pages        map[string]*template.Template
	static       http.FileSystem
}

// New parses the embedded templates and returns a ready Handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Catalog == nil || cfg.Programs == nil || cfg.Feedback == nil || cfg.Assistant == nil {
		return nil, fmt.Errorf("site: catalog, programs, feedback and assistant are required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("site: static files: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}
	return &Handler{
		catalog:      cfg.Catalog,
		programs:     cfg.Programs,
		feedback:     cfg.Feedback,
		assistant:    cfg.Assistant,
		chatLimiter:  cfg.ChatLimiter,
		recorder:     cfg.Recorder,
		logger:       log.WithModule("site"),
		chatTimeout:  cfg.ChatTimeout,
		queryTimeout: cfg.QueryTimeout,
		pages:        pages,
		static:       http.FS(static),
	}, nil
}

// parsePages builds one template set per page: the shared layout plus the
// page's own blocks. The base page is the bare layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageIndex, pageBase, pageMission, pageVision, pagePrograms} {
		files := []string{"templates/layout.html"}
		if name != pageBase {
			files = append(files, "templates/"+name+".html")
		}
		tmpl, err := template.New(name).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("site: parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Register mounts the site routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.index)
	r.GET("/base", h.base)
	r.GET("/mision", h.mission)
	r.GET("/vision", h.vision)
	r.POST("/vision", h.submitFeedback)
	r.GET("/programas", h.listPrograms)
	r.POST("/programas", h.mutateProgram)
	r.GET("/obtener_programa/:id", h.getProgram)
	r.POST("/eliminar/:id", h.deleteProgram)
	r.POST("/api/chat", h.chat)
	r.StaticFS("/static", h.static)
}

// pageData is the model shared by every template.
type pageData struct {
	Title       string
	Active      string
	Institution content.Institution
	Mission     string
	Vision      string
	Programs    []storage.Program
	Feedback    []storage.Feedback
	Error       string
	Year        int
}

func (h *Handler) newPage(active, title string) pageData {
	return pageData{
		Title:       title,
		Active:      active,
		Institution: h.catalog.Institution,
		Year:        time.Now().Year(),
	}
}

func (h *Handler) render(c *gin.Context, status int, page string, data pageData) {
	c.Render(status, render.HTML{
		Template: h.pages[page],
		Name:     "layout",
		Data:     data,
	})
}

// queryContext bounds handler database work by the configured timeout.
func (h *Handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.queryTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.queryTimeout)
	}
	return context.WithCancel(c.Request.Context())
}
