package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
	"github.com/fadedpez/blackjack/pkg/services/blackjack"
)

// TableCookie binds a browser to its table
const TableCookie = "table_id"

// tableID reads the table binding from ?table= or the cookie
func tableID(r *http.Request) string {
	if id := r.URL.Query().Get("table"); id != "" {
		return id
	}
	if c, err := r.Cookie(TableCookie); err == nil {
		return c.Value
	}
	return ""
}

func bindTable(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TableCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// intParam parses an optional integer query parameter
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.Errorf(types.ErrInvalidArgument, "%s must be an integer", name)
	}
	return v, nil
}

type newGameRequest struct {
	Name string `json:"name"`
}

// handleNewGame takes the player's name from ?name= or a JSON body; it only
// matters when a table is opened
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	req := newGameRequest{Name: r.URL.Query().Get("name")}
	if req.Name == "" && r.ContentLength != 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, types.WrapError(types.ErrInvalidArgument, "invalid JSON body", err))
			return
		}
	}

	snap, err := s.tables.NewGame(r.Context(), tableID(r), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bindTable(w, snap.TableID)
	writeJSON(w, http.StatusOK, snap)
}

// handleGameState returns the bound table, opening one for a browser that
// has none yet
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	id := tableID(r)
	if id != "" {
		snap, err := s.tables.State(id)
		if err == nil {
			writeJSON(w, http.StatusOK, snap)
			return
		}
		if !types.IsGameError(err, types.ErrTableNotFound) {
			s.writeError(w, r, err)
			return
		}
	}
	s.handleNewGame(w, r)
}

type betRequest struct {
	Amount int64 `json:"amount"`
	Seat   int   `json:"seat"`
}

// handleBet takes the amount from ?amount= or a JSON body
func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	req := betRequest{}
	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, types.NewGameError(types.ErrInvalidBetAmount, "amount must be a whole number of chips"))
			return
		}
		req.Amount = amount
		if req.Seat, err = intParam(r, "seat", 0); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, types.WrapError(types.ErrInvalidArgument, "invalid JSON body", err))
			return
		}
	}

	snap, err := s.tables.Bet(r.Context(), tableID(r), req.Seat, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// command adapts a seat command of the table manager into a handler
func (s *Server) command(fn func(ctx context.Context, tableID string, seat int) (blackjack.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seat, err := intParam(r, "seat", 0)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		snap, err := fn(r.Context(), tableID(r), seat)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	perPage, err := intParam(r, "per_page", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	board, err := s.stats.GetBlackjackLeaderboard(r.Context(), page, perPage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.GetPlayerStatistics(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleHistory lists a player's rounds with ?player=, otherwise the bound table's
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var rounds []*entities.RoundResult
	if player := r.URL.Query().Get("player"); player != "" {
		rounds, err = s.stats.GetPlayerHistory(r.Context(), player, limit)
	} else if id := tableID(r); id != "" {
		rounds, err = s.stats.GetTableHistory(r.Context(), id, limit)
	} else {
		err = types.NewGameError(types.ErrInvalidArgument, "player or table is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// handleLedger lists chip movements for ?player=, otherwise the bound table's
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.ledger == nil {
		writeJSON(w, http.StatusOK, []*entities.Transaction{})
		return
	}

	var txs []*entities.Transaction
	if player := r.URL.Query().Get("player"); player != "" {
		txs, err = s.ledger.GetPlayerTransactions(r.Context(), player, limit)
	} else if id := tableID(r); id != "" {
		txs, err = s.ledger.GetTableTransactions(r.Context(), id, limit)
	} else {
		err = types.NewGameError(types.ErrInvalidArgument, "player or table is required")
	}
	if err != nil {
		if _, ok := err.(*types.GameError); !ok {
			err = types.WrapError(types.ErrDatabaseError, "failed to load ledger", err)
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
