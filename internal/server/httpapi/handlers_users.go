package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/sigmax/internal/chat"
	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/session"
)

type signupRequest struct {
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phoneNumber"`
	Password    string         `json:"password"`
	Country     models.Country `json:"country"`
	Avatar      string         `json:"avatar"`
	Bio         string         `json:"bio"`
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type verifyRequest struct {
	Image string `json:"image"`
}

type verifyResponse struct {
	User       *models.User      `json:"user"`
	ReportID   string            `json:"reportId"`
	Identified bool              `json:"identified"`
	Credential models.Credential `json:"credential,omitempty"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, u *models.User, sess session.Session) {
	token, err := s.sessions.Issue(sess)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.sessions.Validity()),
	})
	writeJSON(w, status, authResponse{User: u, Token: token})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	u, sess, err := s.chat.Signup(r.Context(), chat.Profile{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Country:     req.Country,
		Avatar:      req.Avatar,
		Bio:         req.Bio,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user", u.ID)
	s.startSession(w, r, http.StatusCreated, u, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	u, sess, err := s.chat.Login(r.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.startSession(w, r, http.StatusOK, u, sess)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.chat.GetUser(r.Context(), current(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateCountry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country models.Country `json:"country"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.chat.UpdateUserCountry(r.Context(), current(r).UserID, req.Country)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// verify archives the scan, asks the classifier who is in it and marks
// the caller verified. Only allow-listed credentials grant anything.
func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Image == "" {
		s.fail(w, r, common.ErrorIncorrectArgument)
		return
	}
	userID := current(r).UserID

	reportID, err := s.archive.Store(r.Context(), userID, req.Image)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id := s.assistant.IdentifyFromImage(r.Context(), req.Image)
	var cred models.Credential
	if id.Identified {
		cred = id.Credential
	}

	u, err := s.chat.VerifyUser(r.Context(), userID, reportID, cred)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{User: u, ReportID: reportID, Identified: cred != "", Credential: cred})
}

// scanLink returns a short-lived download link for one of the caller's
// archived scans.
func (s *Server) scanLink(w http.ResponseWriter, r *http.Request) {
	url, err := s.archive.PresignGet(r.Context(), current(r).UserID, pathVar(r, "reportId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	users, err := s.chat.GetUserMap(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) block(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		u   *models.User
		err error
	)
	switch {
	case req.UserID != "":
		u, err = s.chat.BlockUser(r.Context(), current(r), req.UserID)
	case req.PhoneNumber != "":
		u, err = s.chat.BlockUserByPhone(r.Context(), current(r), req.PhoneNumber)
	default:
		err = common.ErrorIncorrectArgument
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) unblock(w http.ResponseWriter, r *http.Request) {
	u, err := s.chat.UnblockUser(r.Context(), current(r), pathVar(r, "userId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
