// Package testutil serves fake versions of remote sites for scraper tests.
package testutil

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Request is a request the fake site received, with its body read.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Form decodes an urlencoded body.
func (r Request) Form() (url.Values, error) {
	return url.ParseQuery(string(r.Body))
}

// Part is one part of a multipart body.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	Value       string
}

// Parts decodes a multipart body, keeping the order of the parts.
func (r Request) Parts() ([]Part, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("content-type"))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, errors.New("not a multipart body: " + mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(r.Body), params["boundary"])
	var parts []Part
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			return parts, nil
		}
		if err != nil {
			return nil, err
		}
		value, err := io.ReadAll(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{
			Name:        p.FormName(),
			FileName:    p.FileName(),
			ContentType: p.Header.Get("content-type"),
			Value:       string(value),
		})
	}
}

// Site is an httptest server routed with a ServeMux that records every
// request it receives.
type Site struct {
	Server *httptest.Server
	mux    *http.ServeMux

	mutex    sync.Mutex
	requests []Request
}

// NewSite starts a fake site, it is closed when the test ends.
func NewSite(t testing.TB) *Site {
	site := &Site{mux: http.NewServeMux()}
	site.Server = httptest.NewServer(http.HandlerFunc(site.serve))
	t.Cleanup(site.Server.Close)
	return site
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mutex.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mutex.Unlock()

	s.mux.ServeHTTP(w, r)
}

// URL is the base url of the site.
func (s *Site) URL() string {
	return s.Server.URL
}

// Handle registers a handler, pattern follows http.ServeMux
// (ex. "POST /login").
func (s *Site) Handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// Page serves a fixed html body with status 200.
func (s *Site) Page(pattern, body string) {
	s.Respond(pattern, http.StatusOK, "text/html; charset=utf-8", body)
}

// Json serves a fixed json body with the given status.
func (s *Site) Json(pattern string, status int, body string) {
	s.Respond(pattern, status, "application/json", body)
}

func (s *Site) Respond(pattern string, status int, contentType, body string) {
	s.Handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Redirect answers with a 302 to location.
func (s *Site) Redirect(pattern, location string) {
	s.Handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, location, http.StatusFound)
	})
}

// Requests returns the requests received so far, in order.
func (s *Site) Requests() []Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Find returns the requests matching method and path.
func (s *Site) Find(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets the recorded requests.
func (s *Site) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = nil
}
