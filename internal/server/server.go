package server

import (
	"backend-territorio/internal/auth"
	"backend-territorio/internal/config"
	"backend-territorio/internal/conquest"
	"backend-territorio/internal/db"
	"backend-territorio/internal/outbox"
	"backend-territorio/internal/progression"
	"backend-territorio/internal/remote"
	"backend-territorio/internal/stream"
	"backend-territorio/internal/territory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Queue  *outbox.Queue
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	queue := outbox.NewQueue(redisClient, remote.NewStore(querierOrNil(db)), hub, cfg.QueueKey)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: hub,
		Queue:  queue,
	}

	registerRoutes(s)
	return s
}

// querierOrNil keeps a typed-nil pool out of the remote store so its nil
// check still works.
func querierOrNil(pool *pgxpool.Pool) db.Querier {
	if pool == nil {
		return nil
	}
	return pool
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	progressionSvc := progression.NewService(querierOrNil(s.DB))
	territorySvc := territory.NewService(querierOrNil(s.DB))
	conquestSvc := conquest.NewService(s.Queue, progressionSvc)

	conquest.RegisterRoutes(s.App.Group("/conquest"), conquestSvc, territorySvc, jwtMiddleware)
	territory.RegisterRoutes(s.App.Group("/territories"), territorySvc)
	progression.RegisterRoutes(s.App.Group("/progression"), progressionSvc, jwtMiddleware)
	outbox.RegisterRoutes(s.App.Group("/sync"), s.Queue)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
