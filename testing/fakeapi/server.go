// Package fakeapi is an in-memory stand-in for the Globetrotter backend, used by tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/globetrotter/internal/entity"
)

const (
	RouteRandomDestination = "GET /destinations/random/"
	RouteGuess             = "POST /guess/"
	RouteCreateUser        = "POST /users/"
	RouteFetchProfile      = "GET /users/{username}/"
)

var DefaultRound = entity.DestinationRound{
	Clues:       []string{"Home to a tower built for a world's fair.", "Its river is crossed by 37 bridges."},
	Options:     []string{"Rome", "Paris", "Tokyo", "Cairo"},
	CorrectCity: "Paris",
}

type city struct {
	Country string
	FunFact string
	Trivia  string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*entity.Profile
	rounds   []entity.DestinationRound
	cities   map[string]city
	failures map[string][]int
	calls    []string
	// OmitTotals drops new_score/total_attempts from guess responses.
	OmitTotals bool
}

// New - starts the fake backend; it is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	srv := &Server{
		users:    make(map[string]*entity.Profile),
		failures: make(map[string][]int),
		cities: map[string]city{
			"Paris": {Country: "France", FunFact: "The Eiffel Tower was meant to be temporary.", Trivia: "Paris has only one stop sign."},
			"Rome":  {Country: "Italy", FunFact: "Rome has a country inside it."},
			"Tokyo": {Country: "Japan", FunFact: "Tokyo was once called Edo."},
			"Cairo": {Country: "Egypt", FunFact: "Cairo is the largest city in Africa."},
		},
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/destinations/random/", srv.track(RouteRandomDestination, srv.randomDestination))
		r.Post("/guess/", srv.track(RouteGuess, srv.guess))
		r.Post("/users/", srv.track(RouteCreateUser, srv.createUser))
		r.Get("/users/{username}/", srv.track(RouteFetchProfile, srv.fetchProfile))
	})

	srv.Server = httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

// BaseURL - what the client should be configured with.
func (that *Server) BaseURL() string {
	return that.URL + "/api"
}

func (that *Server) AddUser(username string, score, attempts int, solved ...entity.SolvedDestination) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.users[username] = &entity.Profile{
		Username:           username,
		Score:              score,
		TotalAttempts:      attempts,
		DestinationsSolved: solved,
	}
}

func (that *Server) RemoveUser(username string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.users, username)
}

func (that *Server) User(username string) (entity.Profile, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	profile, ok := that.users[username]
	if !ok {
		return entity.Profile{}, false
	}

	return *profile, true
}

// QueueRound - served by the next random destination call instead of DefaultRound.
func (that *Server) QueueRound(round entity.DestinationRound) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rounds = append(that.rounds, round)
}

// FailNext - the next call to route answers with status instead of being handled.
func (that *Server) FailNext(route string, status int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.failures[route] = append(that.failures[route], status)
}

// Calls - routes hit so far, in order, with the username filled in for profile lookups.
func (that *Server) Calls() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.calls...)
}

func (that *Server) track(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		that.mu.Lock()
		that.calls = append(that.calls, r.Method+" "+r.URL.Path)

		var status int
		if pending := that.failures[route]; len(pending) > 0 {
			status = pending[0]
			that.failures[route] = pending[1:]
		}
		that.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}

		next(w, r)
	}
}

func (that *Server) randomDestination(w http.ResponseWriter, _ *http.Request) {
	that.mu.Lock()
	round := DefaultRound
	if len(that.rounds) > 0 {
		round = that.rounds[0]
		that.rounds = that.rounds[1:]
	}
	that.mu.Unlock()

	writeJSON(w, http.StatusOK, round)
}

type guessBody struct {
	City     string `json:"city"`
	Guess    string `json:"guess"`
	Username string `json:"username"`
}

func (that *Server) guess(w http.ResponseWriter, r *http.Request) {
	var body guessBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	correct := body.City == body.Guess
	info := that.cities[body.City]

	resp := map[string]any{
		"correct":  correct,
		"city":     body.City,
		"country":  info.Country,
		"fun_fact": info.FunFact,
	}

	if correct && info.Trivia != "" {
		resp["trivia"] = info.Trivia
	}

	if user, ok := that.users[body.Username]; ok {
		user.TotalAttempts++
		if correct {
			user.Score++
			user.DestinationsSolved = append(user.DestinationsSolved, entity.SolvedDestination{City: body.City, Country: info.Country})
		}

		if !that.OmitTotals {
			resp["new_score"] = user.Score
			resp["total_attempts"] = user.TotalAttempts
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type createUserBody struct {
	Username string `json:"username"`
}

func (that *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body createUserBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	if body.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"This field may not be blank."}})
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.users[body.Username]; ok {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"user with this username already exists."}})
		return
	}

	profile := &entity.Profile{Username: body.Username, DestinationsSolved: []entity.SolvedDestination{}}
	that.users[body.Username] = profile

	writeJSON(w, http.StatusCreated, profile)
}

func (that *Server) fetchProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	that.mu.Lock()
	defer that.mu.Unlock()

	profile, ok := that.users[username]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
