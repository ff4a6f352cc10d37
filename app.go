package main

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richardtsai/subnetcalc/db"
	. "github.com/richardtsai/subnetcalc/lib"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = time.Second * 5
	maxBodySize     = 64 * 1024
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SubnetApp is the HTTP service rendering and storing bookmarks.
type SubnetApp struct {
	log      *zap.SugaredLogger
	defaults DefaultsConfig
	linkBase string
	listen   string
	mux      *http.ServeMux

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	problems prometheus.Counter
}

type renderResponse struct {
	*Export
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

type bookmarkRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

type bookmarkResponse struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Query string `json:"query"`
	Link  string `json:"link"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewSubnetApp creates a SubnetApp object from the given configuration.
func NewSubnetApp(config Config) (app *SubnetApp, err error) {
	app = &SubnetApp{
		defaults: config.Defaults,
		linkBase: config.Server.Link(),
		listen:   config.Server.ListenAddr(),
		mux:      http.NewServeMux(),
		registry: prometheus.NewRegistry(),
	}

	// create logger
	app.log, err = CreateLogger(config.Logging)
	if err != nil {
		err = errors.WithMessage(err, "failed to create logger")
	}

	// check the default network
	if err == nil {
		if _, err = config.Defaults.State(); err != nil {
			err = errors.WithMessage(err, "invalid defaults")
		}
	}

	// init db
	if err == nil && config.DB != nil {
		err = db.InitDB(*config.DB)
	}

	if err == nil {
		factory := promauto.With(app.registry)
		app.requests = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "subnetcalc_requests_total",
			Help: "API requests by endpoint and status code.",
		}, []string{"endpoint", "code"})
		app.problems = factory.NewCounter(prometheus.CounterOpts{
			Name: "subnetcalc_bookmark_problems_total",
			Help: "Malformed bookmark fields replaced by defaults.",
		})
		app.routes()
	}
	return
}

func (a *SubnetApp) routes() {
	a.mux.HandleFunc("GET /api/render", a.handleRender)
	a.mux.HandleFunc("GET /api/locate", a.handleLocate)
	a.mux.HandleFunc("GET /api/bookmarks", a.withDAO("list", a.listBookmarks))
	a.mux.HandleFunc("POST /api/bookmarks", a.withDAO("save", a.saveBookmark))
	a.mux.HandleFunc("GET /api/bookmarks/{name}", a.withDAO("get", a.getBookmark))
	a.mux.HandleFunc(
		"DELETE /api/bookmarks/{name}", a.withDAO("delete", a.deleteBookmark))
	a.mux.HandleFunc("GET /s/{slug}", a.withDAO("share", a.followSlug))
	a.mux.Handle("GET /metrics",
		promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
}

// ServeHTTP implements http.Handler.
func (a *SubnetApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Run starts the HTTP service and blocks until the context is canceled.
func (a *SubnetApp) Run(ctx context.Context) error {
	server := &http.Server{Addr: a.listen, Handler: a}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	a.log.Infow("subnetcalc service started", "listen", a.listen)

	select {
	case err := <-errCh:
		a.log.Errorw("service stopped unexpectedly", "error", err)
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	a.log.Info("subnetcalc service stopped")
	return errors.WithStack(err)
}

// newCalculator starts a session from the configured defaults and loads the
// bookmark carried by args, if any.
func (a *SubnetApp) newCalculator(args url.Values) (*Calculator, error) {
	state, err := a.defaults.State()
	if err != nil {
		return nil, err
	}
	calc := NewCalculator(a.log.Named("calc"), state, a.linkBase, nil)
	if len(args) == 0 {
		return calc, nil
	}
	if err = calc.Load(args.Encode()); err != nil {
		return nil, err
	}
	a.problems.Add(float64(len(calc.State().Problems)))
	return calc, nil
}

func (a *SubnetApp) handleRender(w http.ResponseWriter, r *http.Request) {
	calc, err := a.newCalculator(r.URL.Query())
	if err != nil {
		a.fail(w, "render", http.StatusBadRequest, err)
		return
	}
	s := calc.State()
	resp := renderResponse{Export: calc.Export(), Name: s.Name, Columns: []string{}}
	for _, name := range ColumnNames {
		if s.Columns.Visible(name) {
			resp.Columns = append(resp.Columns, name)
		}
	}
	a.reply(w, "render", http.StatusOK, resp)
}

func (a *SubnetApp) handleLocate(w http.ResponseWriter, r *http.Request) {
	args := r.URL.Query()
	addrText := args.Get("addr")
	args.Del("addr")
	addr, err := ParseAddr(addrText)
	if err != nil {
		a.fail(w, "locate", http.StatusBadRequest, err)
		return
	}
	calc, err := a.newCalculator(args)
	if err != nil {
		a.fail(w, "locate", http.StatusBadRequest, err)
		return
	}
	row, ok := calc.Locate(addr)
	if !ok {
		a.fail(w, "locate", http.StatusNotFound, errors.Errorf(
			"%s is outside %s/%d", addr, calc.State().Network, calc.State().Mask))
		return
	}
	a.reply(w, "locate", http.StatusOK, row)
}

type daoHandler func(
	dao *db.BookmarkDAO, w http.ResponseWriter, r *http.Request) (int, interface{}, error)

// withDAO opens a BookmarkDAO for the duration of one request.
func (a *SubnetApp) withDAO(endpoint string, f daoHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !db.Inited {
			a.fail(w, endpoint, http.StatusNotImplemented,
				errors.New("bookmark storage is not configured"))
			return
		}
		dao, err := db.NewBookmarkDAO()
		if err != nil {
			a.fail(w, endpoint, http.StatusInternalServerError, err)
			return
		}
		defer dao.Close() // nolint: errcheck

		code, resp, err := f(dao, w, r)
		switch {
		case err != nil:
			a.fail(w, endpoint, code, err)
		case resp != nil:
			a.reply(w, endpoint, code, resp)
		default:
			a.requests.WithLabelValues(endpoint, codeLabel(code)).Inc()
		}
	}
}

func (a *SubnetApp) listBookmarks(
	dao *db.BookmarkDAO, _ http.ResponseWriter, _ *http.Request) (int, interface{}, error) {
	bookmarks, err := dao.List()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}
	resp := make([]bookmarkResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		resp = append(resp, a.bookmarkResponse(b))
	}
	return http.StatusOK, resp, nil
}

func (a *SubnetApp) saveBookmark(
	dao *db.BookmarkDAO, _ http.ResponseWriter, r *http.Request) (int, interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return http.StatusBadRequest, nil, errors.WithStack(err)
	}
	var req bookmarkRequest
	if err = json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, nil, errors.Wrap(err, "malformed request")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return http.StatusBadRequest, nil, errors.New("bookmark name is empty")
	}
	calc, err := a.newCalculator(nil)
	if err == nil {
		err = calc.Load(req.Query)
	}
	if err != nil {
		return http.StatusBadRequest, nil, err
	}
	if dao.CheckExists(req.Name) {
		return http.StatusConflict, nil, errors.Errorf(
			"bookmark '%s' already exists", req.Name)
	}

	b := &db.Bookmark{Name: req.Name, Query: calc.Export().Query}
	if err = dao.Add(b); err != nil {
		return http.StatusInternalServerError, nil, err
	}
	a.log.Infow("bookmark saved", "name", b.Name, "slug", b.Slug)
	return http.StatusCreated, a.bookmarkResponse(b), nil
}

func (a *SubnetApp) getBookmark(
	dao *db.BookmarkDAO, _ http.ResponseWriter, r *http.Request) (int, interface{}, error) {
	b, err := dao.Get(r.PathValue("name"))
	if err != nil {
		return http.StatusNotFound, nil, err
	}
	return http.StatusOK, a.bookmarkResponse(b), nil
}

func (a *SubnetApp) deleteBookmark(
	dao *db.BookmarkDAO, _ http.ResponseWriter, r *http.Request) (int, interface{}, error) {
	name := r.PathValue("name")
	if !dao.CheckExists(name) {
		return http.StatusNotFound, nil, errors.Errorf(
			"bookmark '%s' not found", name)
	}
	if err := dao.Delete(name); err != nil {
		return http.StatusInternalServerError, nil, err
	}
	a.log.Infow("bookmark deleted", "name", name)
	return http.StatusOK, bookmarkResponse{Name: name}, nil
}

func (a *SubnetApp) followSlug(
	dao *db.BookmarkDAO, w http.ResponseWriter, r *http.Request) (int, interface{}, error) {
	b, err := dao.GetBySlug(r.PathValue("slug"))
	if err != nil {
		return http.StatusNotFound, nil, err
	}
	http.Redirect(w, r, a.link(b.Query), http.StatusFound)
	return http.StatusFound, nil, nil
}

func (a *SubnetApp) bookmarkResponse(b *db.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		Slug: b.Slug, Name: b.Name, Query: b.Query, Link: a.link(b.Query)}
}

func (a *SubnetApp) link(query string) string {
	base := a.linkBase
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return base + "?" + query
}

func (a *SubnetApp) reply(
	w http.ResponseWriter, endpoint string, code int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		a.log.Errorw("failed to encode response", "endpoint", endpoint,
			"error", err)
		code = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
	a.requests.WithLabelValues(endpoint, codeLabel(code)).Inc()
}

func (a *SubnetApp) fail(
	w http.ResponseWriter, endpoint string, code int, err error) {
	if code >= http.StatusInternalServerError {
		a.log.Errorw("request failed", "endpoint", endpoint, "error", err)
	} else {
		a.log.Debugw("request rejected", "endpoint", endpoint, "error", err)
	}
	a.reply(w, endpoint, code, errorResponse{err.Error()})
}

func codeLabel(code int) string {
	return strconv.Itoa(code)
}
