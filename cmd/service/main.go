package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/swayam25/Aero/internal/playlist"
	"github.com/swayam25/Aero/internal/realtime"
	"github.com/swayam25/Aero/internal/room"
	"github.com/swayam25/Aero/internal/song"
)

func main() {
	ctx := context.Background()

	cfg, err := loadConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("aero: pg: %v", err)
	}
	defer pool.Close()

	if err := room.Migrate(ctx, pool); err != nil {
		log.Fatalf("aero: migrate rooms: %v", err)
	}
	if err := playlist.Migrate(ctx, pool); err != nil {
		log.Fatalf("aero: migrate playlists: %v", err)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("aero: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	songs := song.NewClient(cfg.ProviderURL)

	hub := realtime.NewHub()
	rtSrv := realtime.NewServer(hub, rdb, ctx)
	go hub.Run()
	go rtSrv.RunRedisSubscriber()

	roomSrv := room.NewServer(room.NewStore(pool), room.NewPublisher(rdb), songs)
	plSrv := playlist.NewServer(pool, rdb, songs)
	media := &mediaHandlers{songs: songs}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogMiddleware,
		corsMiddleware,
		bodySizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	auth := jwtAuthMiddleware(cfg.JWTSecret)

	// Static media routes take precedence over the mounted room subtree.
	r.Get("/api/search", media.handleSearch)
	r.Get("/api/lyrics", media.handleLyrics)
	r.Get("/api/thumbnail", media.handleThumbnail)

	r.Mount("/api", roomSrv.Router(auth))
	r.Mount("/api/library", plSrv.Router(auth))
	// Websocket subscriptions authenticate via the room password exchange,
	// not JWT; the gateway strips identity headers before proxying here.
	r.Mount("/realtime", rtSrv.Router())

	log.Printf("aero listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("aero: %v", err)
	}
}
