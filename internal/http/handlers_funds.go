package http

import (
	"net/http"

	"hisab/internal/core"
)

type fundBalancesResponse struct {
	Cash    int64 `json:"cash"`
	OnlineA int64 `json:"online_a"`
	OnlineY int64 `json:"online_y"`
	Total   int64 `json:"total"`
}

func (s *Server) handleGetFunds(w http.ResponseWriter, r *http.Request) {
	balances, err := s.svc.Balances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := fundBalancesResponse{
		Cash:    balances[core.FundCash],
		OnlineA: balances[core.FundOnlineA],
		OnlineY: balances[core.FundOnlineY],
	}
	resp.Total = resp.Cash + resp.OnlineA + resp.OnlineY
	writeJSON(w, http.StatusOK, resp)
}
