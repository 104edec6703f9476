// Package server exposes the engine over HTTP with JSON bodies. Every
// user-facing route authenticates a bearer token; the simulator route is
// an unauthenticated diagnostic.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/rewards-engine/internal/auth"
	"github.com/xtding233/rewards-engine/internal/engine"
)

// Server routes HTTP requests to the engine.
type Server struct {
	engine *engine.Engine
	tokens *auth.Tokens
	log    *log.Logger
	mux    *http.ServeMux
}

// New builds the HTTP surface over eng.
func New(eng *engine.Engine, tokens *auth.Tokens, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{engine: eng, tokens: tokens, log: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /draw", s.withUser(s.handleDraw))
	s.mux.HandleFunc("POST /purchase", s.withUser(s.handlePurchase))
	s.mux.HandleFunc("POST /equip", s.withUser(s.handleEquip))
	s.mux.HandleFunc("POST /exchange", s.withUser(s.handleExchange))
	s.mux.HandleFunc("GET /profile", s.withUser(s.handleProfile))
	s.mux.HandleFunc("GET /simulate", s.handleSimulate)
	s.mux.HandleFunc("GET /plan", s.handlePlan)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type errorResp struct {
	Error string `json:"error"`
}

// httpStatus maps the engine's error taxonomy onto HTTP.
func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	if st.Code() == codes.Internal || st.Code() == codes.Unknown {
		s.log.WithError(err).Error("request failed")
	}
	writeJSON(w, httpStatus(st.Code()), errorResp{Error: st.Message()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// withUser authenticates the bearer token and passes the user id on.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.tokens.UserID(r.Header.Get("Authorization"))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "expired token"
			}
			writeJSON(w, http.StatusUnauthorized, errorResp{Error: msg})
			return
		}
		next(w, r, userID)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "malformed request body"})
		return false
	}
	return true
}

type drawBody struct {
	BannerID string `json:"bannerId"`
	Count    int    `json:"count"`
	PayWith  string `json:"payWith"`
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request, userID string) {
	var body drawBody
	if !decodeBody(w, r, &body) {
		return
	}
	resp, err := s.engine.Draw(r.Context(), engine.DrawRequest{
		UserID:   userID,
		BannerID: body.BannerID,
		Count:    body.Count,
		PayWith:  body.PayWith,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type purchaseBody struct {
	ItemID   string `json:"itemId"`
	Currency string `json:"currency"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request, userID string) {
	var body purchaseBody
	if !decodeBody(w, r, &body) {
		return
	}
	resp, err := s.engine.Purchase(r.Context(), engine.PurchaseRequest{
		UserID:   userID,
		ItemID:   body.ItemID,
		Currency: body.Currency,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type equipBody struct {
	Avatar     *string `json:"avatar"`
	Background *string `json:"background"`
	Icon       *string `json:"icon"`
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request, userID string) {
	var body equipBody
	if !decodeBody(w, r, &body) {
		return
	}
	resp, err := s.engine.Equip(r.Context(), engine.EquipRequest{
		UserID:     userID,
		Avatar:     body.Avatar,
		Background: body.Background,
		Icon:       body.Icon,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type exchangeBody struct {
	Count float64 `json:"count"`
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request, userID string) {
	var body exchangeBody
	if !decodeBody(w, r, &body) {
		return
	}
	resp, err := s.engine.ExchangeForTickets(r.Context(), engine.ExchangeRequest{
		UserID: userID,
		Count:  body.Count,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, userID string) {
	resp, err := s.engine.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSimulate runs the banner rate simulator:
// GET /simulate?banner=standard&pulls=10000&seed=1
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	banner := q.Get("banner")
	pulls, err := strconv.Atoi(q.Get("pulls"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "missing/invalid param pulls"})
		return
	}
	var seed uint64
	if raw := q.Get("seed"); raw != "" {
		seed, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid param seed"})
			return
		}
	}
	report, err := s.engine.SimulateBanner(banner, pulls, seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handlePlan computes the cheapest coin-bundle combination:
// GET /plan?coins=6500&firstTime=true
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coins, err := strconv.ParseInt(q.Get("coins"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "missing/invalid param coins"})
		return
	}
	firstTime := q.Get("firstTime") == "true"
	plan, err := s.engine.PlanCoins(coins, firstTime)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
