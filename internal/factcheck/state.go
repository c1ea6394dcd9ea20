package factcheck

import (
	"slices"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
)

// State is the form's view model. Nil pointers mean "not shown".
type State struct {
	URL          string   `json:"url"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	Claims       []string `json:"claims"`
	Loading      bool     `json:"loading"`
	Error        *string  `json:"error"`
}

func newState() State {
	return State{Claims: []string{}}
}

// Thumbnail returns the thumbnail URL or "".
func (s State) Thumbnail() string {
	if s.ThumbnailURL == nil {
		return ""
	}
	return *s.ThumbnailURL
}

// ErrorText returns the user-visible error or "".
func (s State) ErrorText() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

func (s *State) invalid(msg string) {
	s.Error = &msg
}

func (s *State) start(url string) {
	s.URL = url
	s.Loading = true
	s.Error = nil
	s.ThumbnailURL = nil
	s.Claims = []string{}
}

func (s *State) infoReceived(info backend.VideoInfo) {
	if info.ThumbnailURL == "" {
		s.ThumbnailURL = nil
		return
	}
	thumb := info.ThumbnailURL
	s.ThumbnailURL = &thumb
}

func (s *State) claimsReceived(res backend.ClaimsResult) {
	s.Claims = slices.Clone(res.Claims)
	if s.Claims == nil {
		s.Claims = []string{}
	}
}

func (s *State) fail() {
	msg := MsgLoadFailed
	s.Error = &msg
}

func (s *State) settle() {
	s.Loading = false
}

func (s State) clone() State {
	out := s
	if s.ThumbnailURL != nil {
		v := *s.ThumbnailURL
		out.ThumbnailURL = &v
	}
	if s.Error != nil {
		v := *s.Error
		out.Error = &v
	}
	out.Claims = slices.Clone(s.Claims)
	if out.Claims == nil {
		out.Claims = []string{}
	}
	return out
}
