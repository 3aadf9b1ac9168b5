package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"example/chess-history/app/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server holds what the HTTP handlers need. Store and Queue may be nil.
type Server struct {
	Client   *ChessClient
	Pipeline *Pipeline
	Store    TableStore
	Queue    Enqueuer
	Now      func() time.Time
}

func NewServer(client *ChessClient, store TableStore, queue Enqueuer) *Server {
	return &Server{
		Client:   client,
		Pipeline: NewPipeline(client),
		Store:    store,
		Queue:    queue,
		Now:      time.Now,
	}
}

func (s *Server) GetProfile(c *gin.Context) {
	username := c.Param("username")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	profile, err := s.Client.FetchProfile(ctx, username)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, errUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	now := s.Now()
	years := SelectableYears(profile, now)
	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"profile":  profile,
		"years":    years,
		"months":   SelectableMonths(years[0], now),
	})
}

func (s *Server) GetArchives(c *gin.Context) {
	username := c.Param("username")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	archives := s.Client.ListArchives(ctx, username)
	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"count":    len(archives),
		"archives": archives,
	})
}

func (s *Server) GetYears(c *gin.Context) {
	username := c.Param("username")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"years":    s.Client.ListYears(ctx, username),
	})
}

// GetGames runs the pipeline for ?year=&month= or ?url=. An empty table is
// a 200 with count 0.
func (s *Server) GetGames(c *gin.Context) {
	username := c.Param("username")
	tbl, ok := s.ingestFromQuery(c, username)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"count":    tbl.Len(),
		"excluded": tbl.Excluded,
		"columns":  tbl.Columns(),
		"rows":     tbl.Rows(),
	})
}

func (s *Server) GetSummary(c *gin.Context) {
	username := c.Param("username")
	tbl, ok := s.ingestFromQuery(c, username)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tbl.Summarize())
}

func (s *Server) GetStored(c *gin.Context) {
	username := c.Param("username")
	if s.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tbl, err := s.Store.LoadTable(ctx, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Optional: ?limit=N keeps only the newest N stored rows
	if q := c.Query("limit"); q != "" {
		limit, err := parsePositiveInt(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if limit < tbl.Len() {
			tbl.Games = tbl.Games[tbl.Len()-limit:]
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"count":    tbl.Len(),
		"columns":  tbl.Columns(),
		"rows":     tbl.Rows(),
	})
}

// PostIngest queues (or runs, when no queue is configured) one ingest job.
func (s *Server) PostIngest(c *gin.Context) {
	username := c.Param("username")
	sel, ok := s.selectionFromQuery(c, username)
	if !ok {
		return
	}
	if s.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest queue not configured"})
		return
	}

	job := models.IngestJob{JobID: uuid.NewString(), Identity: username, Selection: sel}
	if err := s.Queue.Enqueue(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":    job.JobID,
		"username":  username,
		"selection": sel.String(),
	})
}

// selectionFromQuery writes a 400 and returns false when the query does not
// name a valid selection, or names a URL outside username's archives.
func (s *Server) selectionFromQuery(c *gin.Context, username string) (models.Selection, bool) {
	sel, err := parseSelection(c.Query("year"), c.Query("month"), c.Query("url"))
	if err == nil && sel.Kind() == models.SelectLocator {
		_, err = s.Client.ResolveLocator(username, sel.URL)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return sel, false
	}
	return sel, true
}

func (s *Server) ingestFromQuery(c *gin.Context, username string) (models.GameTable, bool) {
	sel, ok := s.selectionFromQuery(c, username)
	if !ok {
		return models.GameTable{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	return s.Pipeline.Ingest(ctx, username, sel), true
}
