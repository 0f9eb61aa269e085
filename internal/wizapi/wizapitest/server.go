// Package wizapitest provides an in-process WizNote API server for tests.
package wizapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// ReturnCodeNotFound is answered for unknown documents.
const ReturnCodeNotFound = 404

// User is an account known to the server.
type User struct {
	UserID      string
	Password    string
	UserGUID    string
	DisplayName string
	KbGUID      string
}

// Recorded is a request as the server saw it.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Header   http.Header
	Body     []byte
}

// Server fakes the account and content servers on one listener.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]*User
	tokens    map[string]string // token -> user id
	versions  []*domain.KbValueVersions
	documents map[string]map[string]string // kb -> doc -> html
	requests  []Recorded
	seq       int
	throttled bool
	wrapDocs  bool
}

// NewServer starts a server with the given users.
func NewServer(users ...User) *Server {
	s := &Server{
		users:     make(map[string]*User),
		tokens:    make(map[string]string),
		documents: make(map[string]map[string]string),
	}
	for i := range users {
		u := users[i]
		if u.KbGUID == "" {
			u.KbGUID = "kb-" + u.UserID
		}
		if u.UserGUID == "" {
			u.UserGUID = "guid-" + u.UserID
		}
		s.users[u.UserID] = &u
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/as/user/login", s.handleLogin)
	mux.HandleFunc("/as/user/token", s.handleToken)
	mux.HandleFunc("/as/user/logout", s.handleLogout)
	mux.HandleFunc("/as/user/keep", s.handleKeep)
	mux.HandleFunc("/as/user/info", s.handleInfo)
	mux.HandleFunc("/as/user/kv/versions", s.handleVersions)
	mux.HandleFunc("/ks/note/download/", s.handleDownload)

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// AddVersions appends value version records served by the versions command.
func (s *Server) AddVersions(v ...*domain.KbValueVersions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions = append(s.versions, v...)
}

// AddDocument stores a document under kbGUID.
func (s *Server) AddDocument(kbGUID, docGUID, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.documents[kbGUID] == nil {
		s.documents[kbGUID] = make(map[string]string)
	}
	s.documents[kbGUID][docGUID] = html
}

// SetTooManyLogins makes every login and token request answer 31004.
func (s *Server) SetTooManyLogins(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttled = v
}

// WrapDocuments makes download answer with info, html and resources
// inside result instead of beside returnCode.
func (s *Server) WrapDocuments(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapDocs = v
}

// ExpireTokens invalidates every issued token.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// IssueToken returns a valid token for userID without a login request.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// TokenValid reports whether token is currently accepted.
func (s *Server) TokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the requests received for path.
func (s *Server) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) issueLocked(userID string) string {
	s.seq++
	token := "token-" + userID + "-" + strconv.Itoa(s.seq)
	s.tokens[token] = userID
	return token
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
			Header:   r.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()
		r.Body = newBody(body)
		next.ServeHTTP(w, r)
	})
}

func writeEnvelope(w http.ResponseWriter, code int, message string, result any) {
	w.Header().Set("Content-Type", "application/json")
	env := map[string]any{
		"returnCode":    code,
		"returnMessage": message,
		"externCode":    "",
	}
	if result != nil {
		env["result"] = result
	}
	_ = json.NewEncoder(w).Encode(env)
}

func writeOK(w http.ResponseWriter, result any) {
	writeEnvelope(w, domain.ReturnCodeOK, "OK", result)
}

type credentials struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (s *Server) checkCredentials(w http.ResponseWriter, r *http.Request) (*User, bool) {
	if r.Method != http.MethodPost {
		writeEnvelope(w, 405, "method not allowed", nil)
		return nil, false
	}
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeEnvelope(w, 400, "bad request", nil)
		return nil, false
	}
	s.mu.Lock()
	throttled := s.throttled
	s.mu.Unlock()
	if throttled {
		writeEnvelope(w, domain.ReturnCodeTooManyLogins, "too many login attempts", nil)
		return nil, false
	}

	s.mu.Lock()
	u, ok := s.users[c.UserID]
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, domain.ReturnCodeInvalidUser, "user not exists", nil)
		return nil, false
	}
	if u.Password != c.Password {
		writeEnvelope(w, domain.ReturnCodeInvalidPassword, "invalid password", nil)
		return nil, false
	}
	return u, true
}

func (s *Server) userObject(u *User) map[string]any {
	return map[string]any{
		"userGuid":    u.UserGUID,
		"userId":      u.UserID,
		"displayName": u.DisplayName,
		"email":       u.UserID,
		"created":     1609459200000,
		"vip":         false,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := s.checkCredentials(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	token := s.issueLocked(u.UserID)
	s.mu.Unlock()

	writeOK(w, map[string]any{
		"token":    token,
		"kbGuid":   u.KbGUID,
		"kbServer": s.URL,
		"kbType":   "person",
		"user":     s.userObject(u),
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	u, ok := s.checkCredentials(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	token := s.issueLocked(u.UserID)
	s.mu.Unlock()
	writeOK(w, map[string]any{"token": token})
}

// authorize resolves the token query parameter to a user.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (*User, string, bool) {
	token := r.URL.Query().Get("token")
	s.mu.Lock()
	userID, ok := s.tokens[token]
	u := s.users[userID]
	s.mu.Unlock()
	if token == "" || !ok || u == nil {
		writeEnvelope(w, domain.ReturnCodeInvalidToken, "invalid token", nil)
		return nil, "", false
	}
	return u, token, true
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, token, ok := s.authorize(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	writeOK(w, nil)
}

func (s *Server) handleKeep(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r); !ok {
		return
	}
	writeOK(w, map[string]any{"maxAge": 900})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.authorize(w, r)
	if !ok {
		return
	}
	obj := s.userObject(u)
	obj["kbGuid"] = u.KbGUID
	obj["kbServer"] = s.URL
	writeOK(w, obj)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r); !ok {
		return
	}
	q := r.URL.Query()
	cursor, _ := strconv.ParseInt(q.Get("version"), 10, 64)
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil || count <= 0 {
		count = domain.ValueVersionPageSize
	}

	s.mu.Lock()
	var page []*domain.KbValueVersions
	for _, v := range s.versions {
		if v.MaxVersion() > cursor {
			page = append(page, v)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(page, func(i, j int) bool { return page[i].MaxVersion() < page[j].MaxVersion() })
	if len(page) > count {
		page = page[:count]
	}

	out := make([]map[string]any, 0, len(page))
	for _, v := range page {
		list := make([]map[string]any, 0, len(v.Versions))
		for _, k := range v.Keys() {
			list = append(list, map[string]any{"key": k, "version": v.Versions[k]})
		}
		out = append(out, map[string]any{"kbGuid": v.KbGUID, "versions": list})
	}
	writeOK(w, out)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r); !ok {
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/ks/note/download/"), "/")
	if len(parts) != 2 {
		writeEnvelope(w, ReturnCodeNotFound, "not found", nil)
		return
	}
	kbGUID, docGUID := parts[0], parts[1]

	s.mu.Lock()
	html, ok := s.documents[kbGUID][docGUID]
	wrap := s.wrapDocs
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, ReturnCodeNotFound, "document not found", nil)
		return
	}

	q := r.URL.Query()
	result := map[string]any{}
	if q.Get("downloadInfo") == "1" {
		result["info"] = map[string]any{
			"docGuid":      docGUID,
			"kbGuid":       kbGUID,
			"title":        "Document " + docGUID,
			"category":     "/My Notes/",
			"created":      1609459200000,
			"dataModified": 1612137600000,
			"version":      7,
		}
	}
	if q.Get("downloadData") == "1" {
		result["html"] = html
		result["resources"] = []map[string]any{}
	}
	if wrap {
		writeOK(w, result)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	result["returnCode"] = domain.ReturnCodeOK
	result["returnMessage"] = "OK"
	_ = json.NewEncoder(w).Encode(result)
}
