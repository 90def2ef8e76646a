package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/sigmax/internal/ai"
	"github.com/dmitrijs2005/sigmax/internal/common"
)

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.chat.GetMessages(r.Context(), current(r), pathVar(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	a := s.assistant.Analyze(r.Context(), msgs)
	if a == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// suggest proposes replies to the latest message of the chat.
func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Context string `json:"context"`
	}
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	msgs, err := s.chat.GetMessages(r.Context(), current(r), pathVar(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(msgs) == 0 {
		writeJSON(w, http.StatusOK, []ai.Suggestion{})
		return
	}
	last := msgs[len(msgs)-1]
	writeJSON(w, http.StatusOK, s.assistant.SmartReplies(r.Context(), last.Text, req.Context))
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Text == "" {
		s.fail(w, r, common.ErrorIncorrectArgument)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": s.assistant.Translate(r.Context(), req.Text)})
}
