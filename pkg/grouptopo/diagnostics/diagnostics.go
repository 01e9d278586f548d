// Package diagnostics exposes a read-only HTTP introspection surface over
// a task's groups and operators, useful for debugging a stuck collective
// without instrumenting the job itself.
package diagnostics

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jabolina/grouptopo/pkg/grouptopo/client"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// Server is the diagnostics HTTP handler, backed by a single task's
// GroupCommClient.
type Server struct {
	client *client.GroupCommClient
	router *mux.Router
}

func New(c *client.GroupCommClient) *Server {
	s := &Server{client: c, router: mux.NewRouter()}
	s.router.HandleFunc("/groups", s.listGroups).Methods(http.MethodGet)
	s.router.HandleFunc("/groups/{group}/operators", s.listOperators).Methods(http.MethodGet)
	s.router.HandleFunc("/groups/{group}/operators/{operator}/channels", s.channelDepths).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type operatorSummary struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	HasChildren bool   `json:"has_children"`
	IsRoot      bool   `json:"is_root"`
}

func (s *Server) group(r *http.Request) (ids.GroupName, bool) {
	name := ids.GroupName(mux.Vars(r)["group"])
	_, ok := s.client.Group(name)
	return name, ok
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"self":   s.client.Self,
		"groups": s.client.GroupNames(),
	})
}

func (s *Server) listOperators(w http.ResponseWriter, r *http.Request) {
	name, ok := s.group(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	g, _ := s.client.Group(name)
	handles := g.Operators()
	out := make([]operatorSummary, 0, len(handles))
	for _, h := range handles {
		out = append(out, operatorSummary{
			Name:        string(h.Operator()),
			State:       h.State(),
			HasChildren: h.HasChildren(),
			IsRoot:      h.IsRoot(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) channelDepths(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := ids.GroupName(vars["group"])
	opName := ids.OperatorName(vars["operator"])

	g, ok := s.client.Group(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h, ok := g.Operator(opName)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.ChannelDepths())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
