package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/muraqib/backend/services"
)

var (
	liveFeed *services.LiveFeed
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for now
		},
	}
)

// SetLiveFeed sets the live feed for the handlers
func SetLiveFeed(feed *services.LiveFeed) {
	liveFeed = feed
}

// HandleFeedWebSocket handles WebSocket connections for the live violation feed
func HandleFeedWebSocket(c *gin.Context) {
	if liveFeed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed not initialized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket upgrade failed: %v", err)
		return
	}

	client := services.NewFeedClient(liveFeed, conn, c.ClientIP())

	liveFeed.Register(client)

	// Start goroutines for reading and writing
	go client.WritePump()
	go client.ReadPump()
}

// GetFeedStats returns live feed statistics
func GetFeedStats(c *gin.Context) {
	if liveFeed == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	feedStats := liveFeed.Stats()
	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"clients": feedStats.Clients,
	})
}
