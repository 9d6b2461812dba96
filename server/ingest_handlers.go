package server

import (
	"io"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"

	"github.com/tgportal/tgportal/collector"
)

type syncRequest struct {
	ChannelID int64  `json:"channelId" binding:"required"`
	FromDate  string `json:"fromDate"`
}

// SyncRecentPosts pulls pending channel posts from the feed and runs them
// through the ingest pipeline. Already-ingested messages count as skipped.
func (s *Server) SyncRecentPosts(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "channelId is required"})
		return
	}

	from := time.Time{}
	if req.FromDate != "" {
		parsed, err := dateparse.ParseAny(req.FromDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "unparseable fromDate"})
			return
		}
		from = parsed
	}

	msgs, err := s.feed.RecentMessages(c.Request.Context(), req.ChannelID, from)
	if err != nil {
		writeError(c, err)
		return
	}
	result := s.pipeline.IngestBatch(msgs)

	s.store.Record(currentAdmin(c).Id, "sync_recent_posts", "", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"processed":  result.Created,
		"totalFound": len(msgs),
	})
}

// ImportHistory ingests an uploaded Telegram channel export file. Per-message
// failures never abort the batch; they are logged and counted as skipped.
func (s *Server) ImportHistory(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "export file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(c, err)
		return
	}
	msgs, err := collector.ParseExport(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "unreadable export file"})
		return
	}
	result := s.pipeline.IngestBatch(msgs)

	s.store.Record(currentAdmin(c).Id, "import_history", "", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"processed": result.Created,
		"skipped":   result.Skipped,
	})
}
