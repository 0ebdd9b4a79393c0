package server

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"coursefit-backend/internal/courses"
	"coursefit-backend/internal/extraction"
	"coursefit-backend/internal/llm"
	openaillm "coursefit-backend/internal/llm/openai"
	"coursefit-backend/internal/recommend"
	"coursefit-backend/internal/shared/config"
	"coursefit-backend/internal/shared/metrics"
	"coursefit-backend/internal/shared/server/middleware"
	"coursefit-backend/internal/shared/server/respond"
	"coursefit-backend/internal/shared/storage/db"
	"coursefit-backend/internal/shared/storage/object"
	localstore "coursefit-backend/internal/shared/storage/object/local"
	s3store "coursefit-backend/internal/shared/storage/object/s3"
	"coursefit-backend/internal/timetable"
	"coursefit-backend/internal/vector"
)

// Routes that call the model get a tighter rate-limit group than
// plain reads.
const modelGroup = "MODEL"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				modelGroup: {Rate: 0.5, Burst: 5},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == "POST" {
					return modelGroup
				}
				return ""
			},
		}),
	)

	// Dependencies
	store := buildStore(cfg)
	sqlDB := buildDB(cfg)

	var repo courses.Repo
	if sqlDB != nil {
		repo = &courses.PGRepo{DB: sqlDB}
	} else {
		repo = courses.NewMemoryRepo()
	}

	chatClient := buildChatClient(cfg)
	extractor := buildExtractor(cfg)
	gateway := buildGateway(cfg)
	cache := buildCache(cfg)

	courseSvc := &courses.Service{Repo: repo, Store: store, Extractor: extractor}
	recommendSvc := &recommend.Service{Repo: repo, LLM: chatClient, Vector: gateway, Cache: cache}
	timetableSvc := &timetable.Service{Store: store, Extractor: extractor}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	recommend.NewHandler(recommendSvc).RegisterRoutes(api)
	courses.NewHandler(courseSvc).RegisterRoutes(api)
	timetable.NewHandler(timetableSvc).RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	return r
}

func buildDB(cfg config.Config) *sql.DB {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("DATABASE_URL empty; using in-memory repositories")
		return nil
	}
	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	conn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		conn.Close()
		return nil
	}
	return conn
}

func buildStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("failed to build s3 store, falling back to local: %v", err)
		} else {
			return store
		}
	}
	return localstore.New(cfg.LocalStoreDir)
}

func buildChatClient(cfg config.Config) llm.Client {
	client, err := openaillm.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	if err != nil {
		log.Printf("chat model not configured: %v", err)
		return llm.PlaceholderClient{}
	}
	return client
}

func buildExtractor(cfg config.Config) extraction.Extractor {
	extractor, err := extraction.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.VisionModel, cfg.ChatModel)
	if err != nil {
		log.Printf("vision model not configured: %v", err)
		return unavailableExtractor{}
	}
	return extractor
}

func buildGateway(cfg config.Config) vector.Gateway {
	embedder, err := vector.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Printf("embedding model not configured: %v", err)
		return emptyGateway{}
	}
	return vector.NewChromaGateway(cfg.ChromaURL, cfg.ChromaCollection, embedder)
}

func buildCache(cfg config.Config) *recommend.Cache {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, running without cache: %v", err)
		return nil
	}
	ttl := 10 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("RECOMMEND_CACHE_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return recommend.NewCache(redis.NewClient(redisOpts), ttl)
}

type unavailableExtractor struct{}

func (unavailableExtractor) ExtractTranscript(context.Context, []byte, string) ([]extraction.Course, error) {
	return nil, errNotConfigured
}

func (unavailableExtractor) ExtractTranscriptText(context.Context, string) ([]extraction.Course, error) {
	return nil, errNotConfigured
}

func (unavailableExtractor) ExtractTimetable(context.Context, []byte, string) ([]extraction.Lecture, error) {
	return nil, errNotConfigured
}

type emptyGateway struct{}

func (emptyGateway) InitialSearch(context.Context, string) []vector.Document { return nil }

func (emptyGateway) FinalSearch(context.Context, string, string) []vector.Document { return nil }

func (emptyGateway) FindSimilarCourses(context.Context, string, vector.SimilarOptions) []vector.ScoredDocument {
	return nil
}

var errNotConfigured = errors.New("extraction model not configured")

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
