package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/reporter"
	"github.com/joshharrison/ganttloom/internal/session"
	"github.com/joshharrison/ganttloom/internal/timeline"
)

const (
	maxCommentSize = 4 << 10
	dateParam      = "2006-01-02"
	exportFilename = "tasks_export.json"
)

// taskView is a task with its derived status.
type taskView struct {
	graph.Task
	Status graph.Status `json:"status"`
}

func view(g *graph.Graph, t graph.Task) taskView {
	st, _ := g.Status(t.ID)
	return taskView{Task: t, Status: st}
}

func fail(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// requireSnapshot rejects requests made before the first successful load.
func (s *Server) requireSnapshot(c *gin.Context) {
	snap, err := s.store.Current()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   err.Error(),
			"retry":   "POST /api/refresh",
		})
		return
	}
	c.Set(snapshotKey, snap)
	c.Next()
}

func snapshot(c *gin.Context) session.Snapshot {
	return c.MustGet(snapshotKey).(session.Snapshot)
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "ok"
	if _, err := s.store.Current(); err != nil {
		status = "loading"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"load":   s.store.LastLoad(),
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if s.opts.Loader == nil {
		fail(c, http.StatusNotImplemented, errors.New("refresh is not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RefreshTimeout)
	defer cancel()

	err := s.store.Reload(ctx, s.opts.Loader)
	switch {
	case errors.Is(err, session.ErrStale):
		fail(c, http.StatusConflict, err)
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   err.Error(),
			"load":    s.store.LastLoad(),
			"retry":   "POST /api/refresh",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"load":    s.store.LastLoad(),
	})
}

func (s *Server) handleSections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshot(c).Sections,
	})
}

func (s *Server) handleTasks(c *gin.Context) {
	g := snapshot(c).Graph

	status, err := graph.ParseStatusFilter(c.Query("status"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	key, err := graph.ParseSortKey(c.Query("sort"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	tasks := g.Query(
		graph.Filter{
			Section: c.Query("section"),
			Search:  c.Query("q"),
			Status:  status,
			Group:   c.Query("group"),
		},
		graph.SortSpec{Key: key, Desc: c.Query("dir") == "desc"},
	)

	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, view(g, t))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
		"count":   len(out),
	})
}

func (s *Server) handleTask(c *gin.Context) {
	g := snapshot(c).Graph
	t, ok := g.FindByID(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, graph.ErrTaskNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view(g, t),
	})
}

func (s *Server) handleToggle(c *gin.Context) {
	g := snapshot(c).Graph

	t, err := g.Toggle(c.Param("id"))
	var blocked *graph.BlockedError
	switch {
	case errors.As(err, &blocked):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   blocked.Error(),
			"pending": blocked.Pending,
		})
		return
	case errors.Is(err, graph.ErrTaskNotFound):
		fail(c, http.StatusNotFound, err)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view(g, t),
	})
}

type commentRequest struct {
	Comment string `json:"comment" binding:"max=4096"`
}

func (s *Server) handleComment(c *gin.Context) {
	g := snapshot(c).Graph

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCommentSize*2)
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	t, err := g.UpdateComment(c.Param("id"), req.Comment)
	if errors.Is(err, graph.ErrTaskNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view(g, t),
	})
}

func (s *Server) handleGroups(c *gin.Context) {
	g := snapshot(c).Graph

	var groups []graph.EntityGroup
	switch by := c.DefaultQuery("by", "entity"); by {
	case "entity":
		groups = g.GroupByEntity()
	case "section":
		groups = g.GroupBySectionWithinEntity()
	default:
		fail(c, http.StatusBadRequest, errors.New("by must be entity or section"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    groups,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshot(c).Graph.Stats(),
	})
}

func (s *Server) handleConflicts(c *gin.Context) {
	conflicts := snapshot(c).Graph.DateConflicts()
	if conflicts == nil {
		conflicts = []graph.Conflict{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conflicts,
		"count":   len(conflicts),
	})
}

func (s *Server) handleLayout(c *gin.Context) {
	snap := snapshot(c)

	gran, err := timeline.ParseGranularity(c.Query("granularity"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	v := timeline.View{Granularity: gran}

	start, end := c.Query("start"), c.Query("end")
	if start != "" || end != "" {
		w, err := parseWindow(start, end)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		v.Window = w
	}

	width := s.opts.Width
	if ws := c.Query("width"); ws != "" {
		width, err = strconv.ParseFloat(ws, 64)
		left := timeline.DefaultMetrics().LeftColumn
		if err != nil || width <= left {
			fail(c, http.StatusBadRequest, fmt.Errorf("width must be a number greater than %g", left))
			return
		}
	}

	l := timeline.Compute(snap.Graph, snap.Sections, v, timeline.Options{Width: width, Today: s.opts.Now()})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    l,
	})
}

func parseWindow(start, end string) (timeline.Window, error) {
	s, err := time.Parse(dateParam, start)
	if err != nil {
		return timeline.Window{}, errors.New("start must be a YYYY-MM-DD date")
	}
	e, err := time.Parse(dateParam, end)
	if err != nil {
		return timeline.Window{}, errors.New("end must be a YYYY-MM-DD date")
	}
	if !e.After(s) {
		return timeline.Window{}, errors.New("end must be after start")
	}
	return timeline.Window{Start: s, End: e}, nil
}

// handleZoom applies one zoom step to the posted view. An empty body zooms
// the default window of the loaded tasks.
func (s *Server) handleZoom(c *gin.Context) {
	var v timeline.View
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&v); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}
	gran, err := timeline.ParseGranularity(string(v.Granularity))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	v.Granularity = gran
	if v.Window.Days() <= 0 {
		w, ok := timeline.DefaultWindow(snapshot(c).Graph.Tasks())
		if !ok {
			fail(c, http.StatusConflict, errors.New("no tasks to zoom"))
			return
		}
		v.Window = w
	}

	switch c.Query("dir") {
	case "in":
		v = v.ZoomIn()
	case "out":
		v = v.ZoomOut()
	default:
		fail(c, http.StatusBadRequest, errors.New("dir must be in or out"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    v,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	data, err := reporter.Export(snapshot(c).Graph.Tasks())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}
