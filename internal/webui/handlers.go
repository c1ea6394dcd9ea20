package webui

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
)

// pageData is what the template renders.
type pageData struct {
	URL       string
	Loading   bool
	Error     string
	Thumbnail string
	Claims    []string
}

type submitRequest struct {
	URL string `json:"url"`
}

// form resolves the caller's session, creating one if needed, and refreshes
// the cookie.
func (s *Server) form(c *gin.Context) (*factcheck.Form, error) {
	id, _ := c.Cookie(cookieName)
	id, f, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}
	s.setCookie(c, id)
	return f, nil
}

// snapshot is the caller's current state. Reads never create a session.
func (s *Server) snapshot(c *gin.Context) factcheck.State {
	id, _ := c.Cookie(cookieName)
	f := s.sessions.lookup(id)
	if f == nil {
		return factcheck.State{Claims: []string{}}
	}
	s.setCookie(c, id)
	return f.Snapshot()
}

func (s *Server) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, id, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)
}

// page copies st for the template. html/template escapes every claim, so
// the text shows exactly as the backend returned it.
func page(st factcheck.State) pageData {
	return pageData{
		URL:       st.URL,
		Loading:   st.Loading,
		Error:     st.ErrorText(),
		Thumbnail: st.Thumbnail(),
		Claims:    st.Claims,
	}
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page(s.snapshot(c)))
}

// Submissions run to completion even if the client goes away.
func (s *Server) submitForm(c *gin.Context) {
	f, err := s.form(c)
	if err != nil {
		c.Header("Retry-After", "60")
		c.HTML(http.StatusServiceUnavailable, "index.html", page(factcheck.State{Claims: []string{}}))
		return
	}
	st, err := f.Submit(context.WithoutCancel(c.Request.Context()), c.PostForm("url"))
	switch {
	case errors.Is(err, factcheck.ErrSubmissionInFlight):
		c.HTML(http.StatusConflict, "index.html", page(st))
	case err != nil:
		c.HTML(http.StatusGone, "index.html", page(f.Snapshot()))
	default:
		c.HTML(http.StatusOK, "index.html", page(st))
	}
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot(c))
}

func (s *Server) submitJSON(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	f, err := s.form(c)
	if err != nil {
		c.Header("Retry-After", "60")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	st, err := f.Submit(context.WithoutCancel(c.Request.Context()), req.URL)
	switch {
	case errors.Is(err, factcheck.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, st)
	case err != nil:
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, st)
	}
}
