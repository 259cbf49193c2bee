package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/9triver/multilang/internal/infra/repository/wordcount"
	"github.com/9triver/multilang/internal/transport/http/util/response"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 1000
)

// TopWordsSource 提供计数最高的单词，通常是 count bolt 使用的仓库
type TopWordsSource interface {
	Top(ctx context.Context, n int) ([]wordcount.WordCount, error)
}

type Options struct {
	Port      int
	Component string
	RunID     string
	// Gatherer 为空时 /metrics 返回 503
	Gatherer prometheus.Gatherer
	// Words 为空时不注册 /words/top
	Words TopWordsSource
}

// Server worker 状态接口。协议走 stdin/stdout，这里只暴露只读的运行状态
type Server struct {
	Server  *http.Server
	Router  *mux.Router
	opts    Options
	started time.Time
}

func NewServer(opts Options) *Server {
	router := mux.NewRouter()
	s := &Server{
		Server:  &http.Server{Addr: fmt.Sprintf("0.0.0.0:%d", opts.Port), Handler: router},
		Router:  router,
		opts:    opts,
		started: time.Now(),
	}
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	} else {
		router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			response.ServiceUnavailable("metrics not available").WriteJSON(w)
		}).Methods(http.MethodGet)
	}
	if opts.Words != nil {
		router.HandleFunc("/words/top", s.handleTopWords).Methods(http.MethodGet)
	}
	return s
}

// Start 在后台监听；端口被占用时返回错误而不是退出进程，状态接口不影响协议
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Server.Addr, err)
	}
	go func() {
		if err := s.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("Status server stopped: %v", err)
		}
	}()
	logrus.Infof("Status server started on %s", ln.Addr())
	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Failed to stop status server")
	}
	logrus.Info("Status server stopped")
}

type healthResponse struct {
	Component string `json:"component"`
	RunID     string `json:"run_id"`
	Uptime    string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, healthResponse{
		Component: s.opts.Component,
		RunID:     s.opts.RunID,
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
	})
}

type topWordItem struct {
	Word      string `json:"word"`
	Count     int64  `json:"count"`
	UpdatedAt string `json:"updated_at"`
}

type topWordsResponse struct {
	Words []topWordItem `json:"words"`
	Total int           `json:"total"`
}

func (s *Server) handleTopWords(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxTopLimit {
			response.BadRequest(fmt.Sprintf("limit must be between 1 and %d", maxTopLimit)).WriteJSON(w)
			return
		}
		limit = n
	}

	words, err := s.opts.Words.Top(r.Context(), limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to query top words")
		response.InternalError("failed to query top words").WriteJSON(w)
		return
	}

	items := make([]topWordItem, 0, len(words))
	for _, wc := range words {
		items = append(items, topWordItem{
			Word:      wc.Word,
			Count:     wc.Count,
			UpdatedAt: wc.UpdatedAt.Format(time.RFC3339),
		})
	}
	response.WriteSuccess(w, topWordsResponse{Words: items, Total: len(items)})
}
