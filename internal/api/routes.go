package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/privagg/internal/aggregator"
	"github.com/rawblock/privagg/internal/fingerprint"
	"github.com/rawblock/privagg/internal/store"
)

// APIHandler exposes read-only status and debugging endpoints over a
// running station: its current per-uuid states, its accumulated buckets,
// and a live feed of accept/reject decisions over the websocket Hub.
type APIHandler struct {
	station     *aggregator.Station
	dbStore     *store.PostgresStore
	wsHub       *Hub
	fingerprint fingerprint.Fingerprint
}

// SetupRouter builds the gin engine for one station's admin surface.
func SetupRouter(st *aggregator.Station, dbStore *store.PostgresStore, wsHub *Hub, fp fingerprint.Fingerprint) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://admin.example.internal
	// Development: leave empty for *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		station:     st,
		dbStore:     dbStore,
		wsHub:       wsHub,
		fingerprint: fp,
	}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	auth.Use(NewRateLimiter(60, 10).Middleware())
	{
		auth.GET("/requests/:uuid", handler.handleRequestState)
		auth.GET("/buckets", handler.handleAllBuckets)
		auth.GET("/buckets/:index", handler.handleBucket)
	}

	return r
}

// handleHealth reports station status and the field-parameter fingerprint
// this deployment expects its peers to share: a parameter mismatch between
// peers is otherwise silent, so make it visible at the admin surface
// instead.
func (h *APIHandler) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":      "operational",
		"fingerprint": h.fingerprint.String(),
		"dbConnected": h.dbStore != nil,
	}
	if h.dbStore != nil {
		if n, err := h.dbStore.CountAccepted(c.Request.Context()); err == nil {
			body["acceptedTotal"] = n
		}
	}
	c.JSON(http.StatusOK, body)
}

// handleRequestState reports one request's position in the per-uuid state
// machine: new, queried, accepted, or rejected, or 404 if never seen.
func (h *APIHandler) handleRequestState(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}
	state, ok := h.station.States.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown uuid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uuid": id, "state": state.String()})
}

// handleAllBuckets returns every bucket's current accumulated vector.
func (h *APIHandler) handleAllBuckets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buckets": h.station.Acc.SnapshotAll()})
}

// handleBucket returns one bucket's current accumulated vector.
func (h *APIHandler) handleBucket(c *gin.Context) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bucket index"})
		return
	}
	values, ok := h.station.Acc.Snapshot(uint32(index))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "bucket has no accepted input yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "values": values})
}

// BroadcastDecision pushes an accept/reject decision over the websocket
// hub. Called from the OnDecision observer cmd/aggregator and cmd/follower
// install on their Station, which fires once per uuid when it reaches a
// terminal state.
func BroadcastDecision(wsHub *Hub, id uuid.UUID, index uint32, accepted bool) {
	payload := gin.H{
		"type":     "decision",
		"uuid":     id,
		"index":    index,
		"accepted": accepted,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("api: failed to marshal decision broadcast: %v", err)
		return
	}
	wsHub.Broadcast(data)
}
