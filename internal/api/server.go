package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/usecase"
	"github.com/neztrixTON/app/internal/logx"
)

// Config contains HTTP binding configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	UploadDir      string
	FilesURLPrefix string
	MaxUploadBytes int64
}

// Server is the HTTP binding of the chat engine
type Server struct {
	presenceUC  *usecase.PresenceUsecase
	registryUC  *usecase.RegistryUsecase
	ledgerUC    *usecase.LedgerUsecase
	directoryUC *usecase.DirectoryUsecase
	hub         *Hub

	config Config
	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a new API server
func NewServer(
	config Config,
	presenceUC *usecase.PresenceUsecase,
	registryUC *usecase.RegistryUsecase,
	ledgerUC *usecase.LedgerUsecase,
	directoryUC *usecase.DirectoryUsecase,
	hub *Hub,
) *Server {
	return &Server{
		presenceUC:  presenceUC,
		registryUC:  registryUC,
		ledgerUC:    ledgerUC,
		directoryUC: directoryUC,
		hub:         hub,
		config:      config,
		log:         logx.Component("api"),
	}
}

// Router configures and returns the HTTP router
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Chat directory
	api.HandleFunc("/chats", s.handleListChats).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.handleGetMessages).Methods(http.MethodGet)

	// Participant registry
	api.HandleFunc("/create-chat", s.handleCreateChat).Methods(http.MethodPost)
	api.HandleFunc("/chat/{chatId}/participants", s.handleAddParticipant).Methods(http.MethodPost)
	api.HandleFunc("/chat/{chatId}/participants/{userId}", s.handleRemoveParticipant).Methods(http.MethodDelete)
	api.HandleFunc("/chat/{chatId}/add-master", s.handleAddMaster).Methods(http.MethodPost)

	// Message ledger
	api.HandleFunc("/messages/send", s.handleSendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/send-file", s.handleSendFile).Methods(http.MethodPost)

	// Presence
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)

	// Permission set
	api.HandleFunc("/admins", s.handleListAdmins).Methods(http.MethodGet)
	api.HandleFunc("/admins", s.handleGrantAdmin).Methods(http.MethodPost)
	api.HandleFunc("/admins/{userId}", s.handleRevokeAdmin).Methods(http.MethodDelete)

	// Live events
	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	}

	// Uploaded attachments
	if s.config.UploadDir != "" && s.config.FilesURLPrefix != "" {
		prefix := "/" + strings.Trim(s.config.FilesURLPrefix, "/") + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(s.config.UploadDir))))).Methods(http.MethodGet)
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return r
}

// Handler returns the router wrapped with CORS
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: !containsWildcard(s.config.AllowedOrigins),
	})
	return c.Handler(s.Router())
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps a domain error kind to an HTTP status
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindMissingParameter, domain.KindInvalidPayload, domain.KindInvalidParticipants:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidOperation:
		return http.StatusConflict
	case domain.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log := logx.Component("api")
		log.Error().Err(err).Msg("Request failed")
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.InvalidPayload("invalid JSON body")
	}
	return nil
}
