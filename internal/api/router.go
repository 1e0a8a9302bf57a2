package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/RubberWatch/internal/dashboard"
	"github.com/LJTian/RubberWatch/internal/metrics"
	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/LJTian/RubberWatch/internal/storage"
	"github.com/gin-gonic/gin"
)

// BatchSource 提供当前窗口内的 Batch，一般是 *storage.BatchCache
type BatchSource interface {
	GetOrRefresh(ctx context.Context, now time.Time) processor.Batch
}

// SnapshotLister 一般是 *storage.Archive；为 nil 的 Archive 返回 ErrArchiveDisabled
type SnapshotLister interface {
	ListSnapshots(limit int) ([]storage.Snapshot, error)
}

type Server struct {
	source   BatchSource
	archive  SnapshotLister
	query    string
	cacheTTL time.Duration
	now      func() time.Time
}

func NewServer(source BatchSource, archive SnapshotLister, query string, cacheTTL time.Duration) *Server {
	return &Server{
		source:   source,
		archive:  archive,
		query:    query,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// NewEngine 组装带中间件和模板的 gin 引擎
func (s *Server) NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logging(), metrics.Middleware())
	r.SetHTMLTemplate(dashboardTemplate)
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", metrics.Handler())
	r.GET("/", s.dashboard)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/news", s.listNews)
		v1.GET("/stats", s.stats)
		v1.GET("/filters", s.filters)
		v1.GET("/snapshots", s.listSnapshots)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) view(c *gin.Context) dashboard.View {
	b := s.source.GetOrRefresh(c.Request.Context(), s.now())
	return dashboard.Build(b, dashboard.ParseFilter(c.Query("risk"), c.Query("country")))
}

func (s *Server) dashboard(c *gin.Context) {
	v := s.view(c)
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":    "Rubber Export Disruption Dashboard",
		"Query":    s.query,
		"CacheTTL": s.cacheTTL.String(),
		"View":     v,
	})
}

func (s *Server) listNews(c *gin.Context) {
	v := s.view(c)
	ok(c, gin.H{
		"filter":     v.Filter,
		"total":      len(v.Items),
		"items":      v.Items,
		"fetchedAt":  v.FetchedAt,
		"fetchError": v.FetchError,
	})
}

// stats 图表数据始终基于完整 Batch，忽略筛选参数
func (s *Server) stats(c *gin.Context) {
	b := s.source.GetOrRefresh(c.Request.Context(), s.now())
	ok(c, dashboard.Aggregate(b.Items))
}

func (s *Server) filters(c *gin.Context) {
	b := s.source.GetOrRefresh(c.Request.Context(), s.now())
	ok(c, dashboard.Options(b.Items))
}

func (s *Server) listSnapshots(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	list, err := s.archive.ListSnapshots(limit)
	if errors.Is(err, storage.ErrArchiveDisabled) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "archive_disabled",
			"message": "snapshot archive is not configured",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	ok(c, list)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}
