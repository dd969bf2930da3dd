package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/usecase"
)

// ============ Directory Handlers ============

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.directoryUC.ListChats(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.directoryUC.GetMessages(r.Context(), q.Get("chatId"), q.Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ============ Registry Handlers ============

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string                 `json:"from"`
		To   string                 `json:"to"`
		Role string                 `json:"role"`
		Meta map[string]interface{} `json:"meta"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	chatID, created, err := s.registryUC.CreateChat(r.Context(), usecase.CreateChatRequest{
		CreatorID:     req.From,
		CounterpartID: req.To,
		CreatorRole:   domain.Role(req.Role),
		Meta:          req.Meta,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{"chatId": chatID, "created": created})
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActorID string `json:"actorId"`
		UserID  string `json:"userId"`
		Role    string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	chatID := mux.Vars(r)["chatId"]
	if err := s.registryUC.AddParticipant(r.Context(), chatID, req.ActorID, req.UserID, domain.Role(req.Role)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleAddMaster is the manager-invites-master shortcut
func (s *Server) handleAddMaster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"managerId"`
		MasterID  string `json:"masterId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.MasterID == "" {
		writeError(w, domain.MissingParameter("masterId"))
		return
	}

	chatID := mux.Vars(r)["chatId"]
	if err := s.registryUC.AddParticipant(r.Context(), chatID, req.ManagerID, req.MasterID, domain.RoleMaster); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	actorID := r.URL.Query().Get("actorId")
	if err := s.registryUC.RemoveParticipant(r.Context(), vars["chatId"], actorID, vars["userId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ============ Ledger Handlers ============

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID  string `json:"chatId"`
		From    string `json:"from"`
		To      string `json:"to"`
		Text    string `json:"text"`
		ReplyTo string `json:"replyTo"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := s.ledgerUC.SendText(r.Context(), usecase.SendRequest{
		ChatID:  req.ChatID,
		From:    req.From,
		To:      req.To,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleSendFile(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxUploadBytes > 0 {
		// Leave room for the other form fields
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, domain.InvalidPayload("attachment too large"))
			return
		}
		writeError(w, domain.InvalidPayload("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, domain.InvalidPayload("file is required"))
		return
	}
	defer file.Close()

	msg, err := s.ledgerUC.SendAttachment(r.Context(), usecase.SendRequest{
		ChatID:  r.FormValue("chatId"),
		From:    r.FormValue("from"),
		To:      r.FormValue("to"),
		Text:    r.FormValue("text"),
		ReplyTo: r.FormValue("replyTo"),
	}, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ============ Presence Handlers ============

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.presenceUC.Status(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.presenceUC.Heartbeat(r.Context(), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ============ Permission Handlers ============

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	ids, err := s.registryUC.ListAdmins(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"admins": ids})
}

func (s *Server) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActorID string `json:"actorId"`
		UserID  string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.registryUC.GrantAdmin(r.Context(), req.ActorID, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRevokeAdmin(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	actorID := r.URL.Query().Get("actorId")
	if err := s.registryUC.RevokeAdmin(r.Context(), actorID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
