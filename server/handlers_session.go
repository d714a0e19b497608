package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/generator"
	"github.com/Ashenafi-pixel/deepdive-fractions/ledger"
)

type startRequest struct {
	Level int `json:"level"`
}

type playRequest struct {
	Index *int `json:"index"`
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// startSession implements POST /api/sessions {"level": n}. Level defaults to 1.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_BODY")
		return
	}
	if req.Level == 0 {
		req.Level = 1
	}
	sess, err := s.engine.StartLevel(req.Level)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.sessions.Put(sess)
	log.Printf("session %s: level %d dealt %d cards, target %s", sess.ID, sess.Level, len(sess.Hand), sess.Target)
	writeJSON(w, http.StatusCreated, toSessionView(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(sess))
}

// playCard implements POST /api/sessions/{id}/play {"index": i}. Stale or
// out-of-range indexes are ignored and the unchanged session is returned.
func (s *Server) playCard(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeBody(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required", "INVALID_BODY")
		return
	}
	s.apply(w, r, func(sess game.Session) (game.Session, error) {
		return game.Play(sess, *req.Index), nil
	})
}

// detachCard implements POST /api/sessions/{id}/detach {"index": i}, cutting
// the i-th attached card loose. Out-of-range indexes are ignored.
func (s *Server) detachCard(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeBody(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required", "INVALID_BODY")
		return
	}
	s.apply(w, r, func(sess game.Session) (game.Session, error) {
		return game.Detach(sess, *req.Index), nil
	})
}

// deleteSession implements DELETE /api/sessions/{id}; finished clients free their session.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.sessions.Get(id); !ok {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(sess game.Session) (game.Session, error) {
		return game.Undo(sess), nil
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(sess game.Session) (game.Session, error) {
		return game.Reset(sess), nil
	})
}

func (s *Server) retry(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.engine.Retry)
}

func (s *Server) nextLevel(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.engine.NextLevel)
}

// apply runs fn on the session named in the path, records a ledger entry when
// the level has just finished and responds with the new session.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(game.Session) (game.Session, error)) {
	prev, next, err := s.sessions.Update(r.PathValue("id"), fn)
	if errors.Is(err, ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), "SESSION_NOT_FOUND")
		return
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !prev.Over() && next.Over() && prev.Level == next.Level {
		res := ledger.FromSession(next, s.now())
		if err := s.results.Append(r.Context(), res); err != nil {
			log.Printf("session %s: ledger append failed: %v", next.ID, err)
		}
		if s.notifier != nil {
			go s.notifyResult(res)
		}
		log.Printf("session %s: level %d %s at %s", next.ID, next.Level, next.Status, next.Current)
	}
	writeJSON(w, http.StatusOK, toSessionView(next))
}

func (s *Server) notifyResult(res *ledger.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := s.notifier.LevelResult(ctx, res); err != nil {
		log.Printf("session %s: result notify failed: %v", res.SessionID, err)
	}
}

type solvableResponse struct {
	Solvable bool       `json:"solvable"`
	Subset   []int      `json:"subset,omitempty"`
	Cards    []cardView `json:"cards,omitempty"`
}

// solvable implements GET /api/sessions/{id}/solvable. It reveals a full witness subset.
func (s *Server) solvable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
		return
	}
	res, err := s.engine.IsSolvable(sess)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	out := solvableResponse{Solvable: res.Solvable, Subset: res.Subset}
	for _, i := range res.Subset {
		out.Cards = append(out.Cards, toCardView(i, sess.Hand[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type hintResponse struct {
	Available bool      `json:"available"`
	Card      *cardView `json:"card,omitempty"`
}

// hint implements GET /api/sessions/{id}/hint: one card from a winning subset.
func (s *Server) hint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
		return
	}
	c, ok, err := game.Hint(sess)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, hintResponse{})
		return
	}
	cv := toCardView(sess.Hand.IndexOf(c.ID), c)
	writeJSON(w, http.StatusOK, hintResponse{Available: true, Card: &cv})
}

func (s *Server) sessionResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.sessions.Get(id); !ok {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
		return
	}
	list, err := s.results.BySession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ledger unavailable", "LEDGER_UNAVAILABLE")
		return
	}
	if list == nil {
		list = []*ledger.Result{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, difficulty.ErrUnknownLevel):
		writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_LEVEL")
	case errors.Is(err, generator.ErrGenerationExhausted), errors.Is(err, difficulty.ErrInvalidTier):
		log.Printf("generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "GENERATION_EXHAUSTED")
	default:
		log.Printf("engine error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
