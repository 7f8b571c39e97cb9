// Package web serves battles over HTTP and websocket.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/peterkuimelis/vale/internal/session"
	"github.com/peterkuimelis/vale/internal/view"
	"go.uber.org/zap"
)

// StartRequest is the body of POST /api/battles.
type StartRequest struct {
	Encounter string   `json:"encounter"`
	Party     []string `json:"party"`
	Level     int      `json:"level,omitempty"`
	Djinn     []string `json:"djinn,omitempty"`
	Seed      int64    `json:"seed,omitempty"`
}

// BattleResponse describes a battle and the events of its latest change.
type BattleResponse struct {
	ID      string           `json:"id"`
	Seed    int64            `json:"seed"`
	State   *view.StateView  `json:"state"`
	Events  []view.EventView `json:"events,omitempty"`
	Over    bool             `json:"over"`
	Outcome string           `json:"outcome,omitempty"`
	Digest  string           `json:"digest,omitempty"`
}

// ClientMessage is a command sent over the battle websocket.
type ClientMessage struct {
	Type string `json:"type"`

	// For "queue_action" and "clear_action"
	Unit    string   `json:"unit,omitempty"`
	Ability string   `json:"ability,omitempty"`
	Targets []string `json:"targets,omitempty"`

	// For "queue_djinn" and "unqueue_djinn"
	Djinn string `json:"djinn,omitempty"`
}

// ServerMessage is the reply to every websocket command.
type ServerMessage struct {
	Type   string          `json:"type"` // "state", "round" or "error"
	Error  string          `json:"error,omitempty"`
	Battle *BattleResponse `json:"battle,omitempty"`
}

// Server is the vale HTTP server.
type Server struct {
	manager *session.Manager
	logger  *zap.Logger
	mux     *http.ServeMux
}

// NewServer creates a server over the given session manager.
func NewServer(m *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		manager: m,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/content", s.handleContent)
	s.mux.HandleFunc("POST /api/battles", s.handleStart)
	s.mux.HandleFunc("GET /api/battles/{id}", s.handleGet)
	s.mux.HandleFunc("GET /ws/battles/{id}", s.handleWebSocket)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func battleResponse(sess *session.Session, events []view.EventView) *BattleResponse {
	st := sess.State()
	resp := &BattleResponse{
		ID:     sess.ID,
		Seed:   sess.Seed(),
		State:  view.BuildStateView(st),
		Events: events,
		Over:   st.IsOver(),
	}
	if resp.Over {
		resp.Outcome = st.Outcome.String()
		resp.Digest = sess.Journal().Digest
	}
	return resp
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildContentInfo(s.manager.Catalog()))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.manager.Start(session.Options{
		Encounter: req.Encounter,
		Party:     req.Party,
		Level:     req.Level,
		Djinn:     req.Djinn,
		Seed:      req.Seed,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, battleResponse(sess, nil))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, battleResponse(sess, view.BuildEventViews(sess.Events())))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	logger := s.logger.With(zap.String("battle", sess.ID))
	logger.Debug("websocket connected")

	if err := wsjson.Write(ctx, wsConn, ServerMessage{Type: "state", Battle: battleResponse(sess, nil)}); err != nil {
		return
	}

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, wsConn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, ctx.Err()) {
				logger.Debug("websocket read", zap.Error(err))
			}
			return
		}
		reply := s.dispatch(sess, msg)
		if err := wsjson.Write(ctx, wsConn, reply); err != nil {
			logger.Debug("websocket write", zap.Error(err))
			return
		}
	}
}

// dispatch applies one websocket command to sess.
func (s *Server) dispatch(sess *session.Session, msg ClientMessage) ServerMessage {
	var err error
	switch msg.Type {
	case "state":
	case "queue_action":
		err = sess.QueueAction(msg.Unit, msg.Ability, msg.Targets)
	case "clear_action":
		err = sess.ClearAction(msg.Unit)
	case "queue_djinn":
		err = sess.QueueDjinn(msg.Djinn)
	case "unqueue_djinn":
		err = sess.UnqueueDjinn(msg.Djinn)
	case "auto_queue":
		err = sess.AutoQueue()
	case "execute_round":
		events, execErr := sess.Execute()
		if execErr != nil {
			return ServerMessage{Type: "error", Error: execErr.Error()}
		}
		return ServerMessage{Type: "round", Battle: battleResponse(sess, view.BuildEventViews(events))}
	default:
		return ServerMessage{Type: "error", Error: "unknown command " + msg.Type}
	}
	if err != nil {
		return ServerMessage{Type: "error", Error: err.Error()}
	}
	return ServerMessage{Type: "state", Battle: battleResponse(sess, nil)}
}
