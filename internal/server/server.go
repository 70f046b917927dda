package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"famgrocer/internal/auth"
	"famgrocer/internal/backup"
	"famgrocer/internal/email"
	"famgrocer/internal/engine"
	"famgrocer/internal/handler"
	"famgrocer/internal/middleware"
	"famgrocer/internal/notify"
	"famgrocer/internal/push"
	"famgrocer/internal/snapshot"
	"famgrocer/internal/store"
	ws "famgrocer/internal/websocket"
)

// Config carries the optional integration settings the server wires up.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
	PostmarkToken   string
	EmailFrom       string
	S3              backup.S3Config
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH         *handler.AuthHandler
	familyH       *handler.FamilyHandler
	itemH         *handler.ItemHandler
	expenseH      *handler.ExpenseHandler
	settingsH     *handler.SettingsHandler
	notificationH *handler.NotificationHandler
	backupH       *handler.BackupHandler
	pushH         *handler.PushHandler

	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	familyStore := store.NewFamilyStore(db)
	itemStore := store.NewItemStore(db)
	expenseStore := store.NewExpenseStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	// Push fan-out is optional; without VAPID keys the dispatcher only
	// feeds the in-app notification rings.
	var pushSvc *push.Service
	var pusher notify.Pusher
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
		pusher = push.NewFanout(pushSvc, pushStore, logger)
	}
	dispatcher := notify.NewDispatcher(pusher, logger)

	manager := snapshot.NewManager()
	eng := engine.New(itemStore, userStore, manager, dispatcher, hub, logger)

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.EmailFrom)
	backupMgr := backup.NewManager(cfg.S3, userStore, itemStore, backupStore, logger)

	var pushH *handler.PushHandler
	if pushSvc != nil {
		pushH = handler.NewPushHandler(pushStore, pushSvc, userStore, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, itemStore, pushStore, dispatcher, eng, logger.With("component", "auth")),
		familyH:       handler.NewFamilyHandler(familyStore, userStore, eng, emailClient, logger.With("component", "family")),
		itemH:         handler.NewItemHandler(itemStore, eng, logger.With("component", "item")),
		expenseH:      handler.NewExpenseHandler(expenseStore, logger.With("component", "expense")),
		settingsH:     handler.NewSettingsHandler(userStore, backupMgr, logger.With("component", "settings")),
		notificationH: handler.NewNotificationHandler(dispatcher),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		pushH:         pushH,
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account routes
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)
	mux.HandleFunc("PUT /api/auth/profile", s.authH.UpdateProfile)
	mux.HandleFunc("POST /api/auth/delete-account", s.authH.DeleteAccount)

	// Family routes
	mux.HandleFunc("POST /api/family", s.familyH.Create)
	mux.HandleFunc("POST /api/family/join", s.familyH.Join)

	// Preference routes (no family required)
	mux.HandleFunc("GET /api/preferences", s.settingsH.GetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.settingsH.UpdatePreferences)
	mux.HandleFunc("PUT /api/preferences/notification-enabled", s.settingsH.SetNotificationEnabled)
	mux.HandleFunc("GET /api/export", s.settingsH.Export)

	// Notification feed
	mux.HandleFunc("GET /api/notifications", s.notificationH.Feed)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Dismiss)
	mux.HandleFunc("DELETE /api/notifications", s.notificationH.Clear)

	// Backup routes
	mux.HandleFunc("POST /api/backups", s.backupH.Run)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("DELETE /api/backups/{id}", s.backupH.Delete)

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}

	// Family-scoped routes
	familyMux := http.NewServeMux()
	familyMux.HandleFunc("GET /api/family", s.familyH.Current)
	familyMux.HandleFunc("POST /api/family/leave", s.familyH.Leave)
	familyMux.HandleFunc("POST /api/family/invite", s.familyH.Invite)

	familyMux.HandleFunc("POST /api/items", s.itemH.Create)
	familyMux.HandleFunc("GET /api/items", s.itemH.List)
	familyMux.HandleFunc("GET /api/items/unpriced", s.itemH.Unpriced)
	familyMux.HandleFunc("POST /api/items/clear-completed", s.itemH.ClearCompleted)
	familyMux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	familyMux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	familyMux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	familyMux.HandleFunc("POST /api/items/{id}/claim", s.itemH.Claim)
	familyMux.HandleFunc("POST /api/items/{id}/unclaim", s.itemH.Unclaim)
	familyMux.HandleFunc("POST /api/items/{id}/complete", s.itemH.Complete)
	familyMux.HandleFunc("POST /api/items/{id}/uncomplete", s.itemH.Uncomplete)
	familyMux.HandleFunc("PUT /api/items/{id}/price", s.itemH.SetPrice)

	familyMux.HandleFunc("POST /api/expenses", s.expenseH.Create)
	familyMux.HandleFunc("GET /api/expenses", s.expenseH.List)
	familyMux.HandleFunc("PUT /api/expenses/{id}", s.expenseH.Update)
	familyMux.HandleFunc("POST /api/expenses/{id}/paid", s.expenseH.MarkPaid)
	familyMux.HandleFunc("DELETE /api/expenses/{id}", s.expenseH.Delete)

	familyMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, func(r *http.Request) (string, string, bool) {
		ac, ok := auth.FromContext(r.Context())
		if !ok || ac.FamilyCode == "" {
			return "", "", false
		}
		return ac.FamilyCode, ac.UserUID, true
	}))

	mux.Handle("/api/items", middleware.RequireFamily(familyMux))
	mux.Handle("/api/items/", middleware.RequireFamily(familyMux))
	mux.Handle("/api/expenses", middleware.RequireFamily(familyMux))
	mux.Handle("/api/expenses/", middleware.RequireFamily(familyMux))
	mux.Handle("GET /api/family", middleware.RequireFamily(familyMux))
	mux.Handle("POST /api/family/leave", middleware.RequireFamily(familyMux))
	mux.Handle("POST /api/family/invite", middleware.RequireFamily(familyMux))
	mux.Handle("/ws", middleware.RequireFamily(familyMux))
}
