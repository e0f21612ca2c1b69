package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rewardledger/core/state"
	"rewardledger/core/types"
	"rewardledger/crypto"
	"rewardledger/integrations/auditsink"
	"rewardledger/native/rewards"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

type userSummaryResponse struct {
	Epoch     uint64 `json:"epoch"`
	Address   string `json:"address"`
	Balance   uint64 `json:"balance"`
	Claimed   uint64 `json:"claimed"`
	Claimable uint64 `json:"claimable"`
}

type holdingsResponse struct {
	Address string `json:"address"`
	rewards.Holdings
}

type creditsResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Supply  uint64 `json:"supply"`
}

type amountRequest struct {
	User   string `json:"user"`
	Amount uint64 `json:"amount"`
}

type amountResponse struct {
	User   string `json:"user"`
	Amount uint64 `json:"amount"`
}

type claimRequest struct {
	Epoch uint64 `json:"epoch"`
}

type claimResponse struct {
	Epoch   uint64 `json:"epoch"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Points  uint64 `json:"points"`
	Route   string `json:"route"`
	Swept   uint64 `json:"swept,omitempty"`
}

type rewardRequest struct {
	Amount uint64 `json:"amount"`
}

type registerEpochRequest struct {
	EndTime uint64 `json:"endTime"`
}

type registerEpochResponse struct {
	Closed  uint64 `json:"closed"`
	Current uint64 `json:"current"`
}

type auditRecord struct {
	ID         string            `json:"id"`
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Epoch      uint64            `json:"epoch,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Attributes map[string]string `json:"attributes"`
	RecordedAt string            `json:"recordedAt"`
}

func (s *Server) handleCurrentEpoch(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.CurrentEpochSummary()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleEpoch(w http.ResponseWriter, r *http.Request) {
	epoch, err := epochParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.engine.EpochSummary(epoch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleUserEpoch(w http.ResponseWriter, r *http.Request) {
	epoch, err := epochParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := addressParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.engine.UserEpochSummary(user, epoch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userSummaryResponse{
		Epoch:     summary.Epoch,
		Address:   crypto.Format(user),
		Balance:   summary.Balance,
		Claimed:   summary.Claimed,
		Claimable: summary.Claimable,
	})
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	user, err := addressParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	holdings, err := s.engine.Holdings(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, holdingsResponse{Address: crypto.Format(user), Holdings: holdings})
}

func (s *Server) handleCreditsBalance(w http.ResponseWriter, r *http.Request) {
	user, err := addressParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := creditsResponse{Address: crypto.Format(user)}
	err = s.store.View(func(m *state.Manager) error {
		var err error
		if resp.Balance, err = s.credits.Balance(m, user); err != nil {
			return err
		}
		resp.Supply, err = s.credits.Supply(m)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccrue(w http.ResponseWriter, r *http.Request) {
	caller := mustCaller(r)
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := parseAddress(req.User)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.Accrue(r.Context(), caller, user, req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{User: crypto.Format(user), Amount: req.Amount})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	caller := mustCaller(r)
	var req claimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	receipt, err := s.engine.Claim(r.Context(), caller, req.Epoch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{
		Epoch:   receipt.Epoch,
		Address: crypto.Format(receipt.User),
		Amount:  receipt.Amount,
		Points:  receipt.Points,
		Route:   receipt.Route.String(),
		Swept:   receipt.Swept,
	})
}

func (s *Server) handleCreditsMint(w http.ResponseWriter, r *http.Request) {
	s.handleCredits(w, r, true)
}

func (s *Server) handleCreditsBurn(w http.ResponseWriter, r *http.Request) {
	s.handleCredits(w, r, false)
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request, mint bool) {
	caller := mustCaller(r)
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := parseAddress(req.User)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.store.Update(func(tx *state.Tx) error {
		if mint {
			return s.credits.Mint(tx, caller, user, req.Amount)
		}
		return s.credits.Burn(tx, caller, user, req.Amount)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{User: crypto.Format(user), Amount: req.Amount})
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Initialize(r.Context(), mustCaller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	initialized, err := s.engine.Initialized()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"initialized": initialized})
}

func (s *Server) handleSetReward(w http.ResponseWriter, r *http.Request) {
	epoch, err := epochParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req rewardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.SetReward(r.Context(), mustCaller(r), epoch, req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"epoch": epoch, "amount": req.Amount})
}

func (s *Server) handleRegisterEpoch(w http.ResponseWriter, r *http.Request) {
	var req registerEpochRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	closed, err := s.engine.RegisterEpoch(r.Context(), mustCaller(r), req.EndTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registerEpochResponse{Closed: closed, Current: closed + 1})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	s.setBlocked(w, r, true)
}

func (s *Server) handleUnblock(w http.ResponseWriter, r *http.Request) {
	s.setBlocked(w, r, false)
}

func (s *Server) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	addr, err := addressParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.SetBlocked(r.Context(), mustCaller(r), addr, blocked); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"address": crypto.Format(addr), "blocked": blocked})
}

func (s *Server) handleEventLog(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		writeProblem(w, http.StatusForbidden, "unauthorized", "admin only")
		return
	}
	from, err := uintQuery(r, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := limitQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var page []*types.Event
	err = s.store.View(func(m *state.Manager) error {
		var err error
		page, err = m.EventLogRange(from, limit)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page == nil {
		page = []*types.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": page})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		writeProblem(w, http.StatusForbidden, "unauthorized", "admin only")
		return
	}
	if s.audit == nil {
		writeProblem(w, http.StatusNotFound, "audit_disabled", "audit sink not configured")
		return
	}
	filter := auditsink.Filter{
		Type:    strings.TrimSpace(r.URL.Query().Get("type")),
		Subject: strings.TrimSpace(r.URL.Query().Get("subject")),
	}
	var err error
	if filter.Epoch, err = uintQuery(r, "epoch"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.After, err = uintQuery(r, "after"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.Limit, err = limitQuery(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	records, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]auditRecord, 0, len(records))
	for _, rec := range records {
		attrs, err := rec.Decoded()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, auditRecord{
			ID:         rec.ID.String(),
			Sequence:   rec.Sequence,
			Type:       rec.Type,
			Epoch:      rec.Epoch,
			Subject:    rec.Subject,
			Attributes: attrs,
			RecordedAt: rec.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

func (s *Server) isAdmin(r *http.Request) bool {
	caller, ok := CallerFrom(r.Context())
	return ok && caller == s.engine.Params().Admin
}

// mustCaller returns the authenticated caller. Routes using it sit behind
// the authenticator middleware.
func mustCaller(r *http.Request) [20]byte {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		panic("server: handler reached without authenticated caller")
	}
	return caller
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

func epochParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "epoch")
	epoch, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid epoch %q", errBadRequest, raw)
	}
	return epoch, nil
}

func addressParam(r *http.Request) ([20]byte, error) {
	return parseAddress(chi.URLParam(r, "address"))
}

func parseAddress(value string) ([20]byte, error) {
	addr, err := crypto.ParseAddress(value)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return addr, nil
}

func uintQuery(r *http.Request, key string) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, raw)
	}
	return value, nil
}

func limitQuery(r *http.Request) (int, error) {
	limit, err := uintQuery(r, "limit")
	if err != nil {
		return 0, err
	}
	switch {
	case limit == 0:
		return defaultPageSize, nil
	case limit > maxPageSize:
		return maxPageSize, nil
	}
	return int(limit), nil
}
