package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/gorilla/mux"
)

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.chat.GetUserChats(r.Context(), current(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (s *Server) createPrivateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.chat.CreatePrivateChat(r.Context(), current(r), req.PhoneNumber)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string          `json:"name"`
		MemberHandles []string        `json:"memberHandles"`
		Type          models.ChatType `json:"type"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.chat.CreateGroup(r.Context(), current(r), req.Name, req.MemberHandles, req.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.chat.AddMemberToChat(r.Context(), current(r), pathVar(r, "id"), req.PhoneNumber)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	c, err := s.chat.RemoveMemberFromChat(r.Context(), current(r), pathVar(r, "id"), pathVar(r, "userId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) toggleRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unread bool `json:"unread"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.chat.ToggleChatReadStatus(r.Context(), current(r), pathVar(r, "id"), req.Unread)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.chat.GetMessages(r.Context(), current(r), pathVar(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string                  `json:"id"`
		Text     string                  `json:"text"`
		Priority models.Priority         `json:"priority"`
		Metadata *models.MessageMetadata `json:"metadata"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	m, err := s.chat.SendMessage(r.Context(), current(r), models.Message{
		ID:       req.ID,
		ChatID:   pathVar(r, "id"),
		Text:     req.Text,
		Priority: req.Priority,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) react(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.chat.AddReaction(r.Context(), current(r), pathVar(r, "id"), pathVar(r, "msgId"), req.Emoji)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if m == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
