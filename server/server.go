package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	deepdive "github.com/Ashenafi-pixel/deepdive-fractions"
	"github.com/Ashenafi-pixel/deepdive-fractions/config"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/generator"
	"github.com/Ashenafi-pixel/deepdive-fractions/ledger"
	"github.com/Ashenafi-pixel/deepdive-fractions/notify"
)

type Server struct {
	cfg      *config.Config
	engine   *game.Engine
	tiers    *difficulty.Store
	sessions *SessionStore
	results  ledger.Store
	notifier *notify.Client
	now      func() time.Time
}

// New wires the engine and stores from cfg. With DATABASE_URL set, the tier
// table is synced from Postgres and results go to level_results; otherwise
// both live as JSON under DataDir.
func New(cfg *config.Config) (*Server, error) {
	tiers := difficulty.NewStore(cfg.DataDir)
	var results ledger.Store = ledger.NewFileStore(cfg.DataDir)

	db, err := deepdive.GetDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if n, err := tiers.SyncFromDB(ctx, db); err != nil {
			log.Printf("tiers: db sync failed, keeping %s/tiers.json: %v", cfg.DataDir, err)
		} else if n > 0 {
			log.Printf("tiers: loaded %d tiers from difficulty_tiers", n)
		}
		sqlResults := ledger.NewSQLStore(db)
		if err := sqlResults.Migrate(ctx); err != nil {
			return nil, err
		}
		results = sqlResults
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = generator.NewSeed(); err != nil {
			return nil, err
		}
	}
	engine := game.NewEngine(tiers, generator.NewLockedRNG(generator.NewRand(seed)),
		game.WithMaxAttempts(cfg.MaxAttempts),
		game.WithFailOnDeadEnd(cfg.FailOnDeadEnd),
	)
	s := newServer(cfg, engine, tiers, results)
	s.notifier = notify.NewClient(cfg.ResultWebhook, cfg.ResultSecret)
	return s, nil
}

func newServer(cfg *config.Config, engine *game.Engine, tiers *difficulty.Store, results ledger.Store) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		tiers:    tiers,
		sessions: NewSessionStore(),
		results:  results,
		now:      time.Now,
	}
}

// Handler returns the routed API with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /api/tiers", s.listTiers)
	mux.HandleFunc("POST /api/sessions", s.startSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.getSession)
	mux.HandleFunc("POST /api/sessions/{id}/play", s.playCard)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.deleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/detach", s.detachCard)
	mux.HandleFunc("POST /api/sessions/{id}/undo", s.undo)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.reset)
	mux.HandleFunc("POST /api/sessions/{id}/retry", s.retry)
	mux.HandleFunc("POST /api/sessions/{id}/next", s.nextLevel)
	mux.HandleFunc("GET /api/sessions/{id}/solvable", s.solvable)
	mux.HandleFunc("GET /api/sessions/{id}/hint", s.hint)
	mux.HandleFunc("GET /api/sessions/{id}/results", s.sessionResults)
	return cors(requestLogger(mux))
}

func (s *Server) Run() error {
	addr := s.cfg.Addr()
	log.Printf("deepdive listening on %s (data: %s)", addr, s.cfg.DataDir)
	return http.ListenAndServe(addr, s.Handler())
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// requestLogger logs method and path for each request (no body).
func requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("deepdive %s %s", r.Method, r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "service": "deepdive", "sessions": s.sessions.Len()})
}

func (s *Server) listTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tiers.Table())
}
