package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"

	"shopping-matrix/internal/docstore"
	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/recommend"
	"shopping-matrix/internal/service/catalog"
	"shopping-matrix/internal/session"
)

type sessionStore interface {
	Create() *session.Session
	Get(id string) (*session.Session, error)
	Each(fn func(*session.Session))
}

type storefrontLoader interface {
	LoadStorefront(ctx context.Context, sess *session.Session, category domain.Category, refresh bool) (catalog.Storefront, error)
	Find(ctx context.Context, category domain.Category, id string) (domain.Product, error)
}

type suggester interface {
	Suggest(ctx context.Context, productNames []string) string
}

type aiQuerier interface {
	Query(ctx context.Context, prompt string) (recommend.Reply, error)
}

type qrLookup interface {
	Lookup(ctx context.Context, code string) (domain.Order, error)
}

type documentStore interface {
	Create(ctx context.Context, coll string, doc bson.M) (string, error)
	List(ctx context.Context, coll string, limit int64) ([]bson.M, error)
	Cursor(ctx context.Context, coll, lastID string, limit int64) (docstore.Page, error)
	Update(ctx context.Context, coll, id string, set bson.M) (int64, error)
	Delete(ctx context.Context, coll, id string) (int64, error)
}

// Pinger is any dependency /readyz can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators behind the routes. Sessions and Catalog are
// required; the rest answer 503 when nil.
type Deps struct {
	Sessions    sessionStore
	Catalog     storefrontLoader
	Recommender suggester
	AI          aiQuerier
	QR          qrLookup
	Documents   documentStore
	CORSOrigins []string
	// ReadyChecks are pinged by /readyz next to the database.
	ReadyChecks map[string]Pinger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Catalog == nil {
		return nil, errors.New("httpserver: sessions and catalog are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(corsMiddleware(deps.CORSOrigins))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.ReadyChecks))

	router.POST("/sessions", h.createSession)
	s := router.Group("/sessions/:sid", sessionMiddleware(deps.Sessions))
	{
		s.GET("/cart", h.getCart)
		s.POST("/cart/lines", h.addCartLine)
		s.PUT("/cart/lines/:lineID", h.setCartLineQuantity)
		s.DELETE("/cart/lines/:lineID", h.removeCartLine)
		s.DELETE("/cart", h.clearCart)

		s.GET("/storefronts/:category", h.getStorefront)
		s.GET("/stock/:itemID", h.getStock)

		s.GET("/quote", h.getQuote)
		s.POST("/checkout", h.checkout)
		s.GET("/orders", h.listOrders)
		s.GET("/orders/:orderID", h.getOrder)
		s.POST("/orders/:orderID/status", h.advanceOrder)

		s.GET("/recommendations", h.getRecommendations)
	}

	router.POST("/ai/query", h.aiQuery)
	router.GET("/qr/:code", h.lookupQR)

	col := router.Group("/collections/:collection")
	{
		col.GET("", h.listDocuments)
		col.POST("", h.createDocument)
		col.GET("/cursor", h.cursorDocuments)
		col.PUT("/:id", h.updateDocument)
		col.DELETE("/:id", h.deleteDocument)
	}

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
