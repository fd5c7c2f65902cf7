package handlers

import (
	"net/http"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// GetListedUsers handles GET /api/v1/leaderboard/listed
// @Summary Listed Users
// @Description Raw user records that opted into the leaderboard, unordered
// @Tags Leaderboard
// @Produce json
// @Success 200 {array} models.UserRecord
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /leaderboard/listed [get]
func (h *Handler) GetListedUsers(w http.ResponseWriter, r *http.Request) {
	recs, err := h.users.ListListed(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list listed users", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	h.jsonResponse(w, http.StatusOK, recs)
}

// GetLeaderboard handles GET /api/v1/leaderboard
// @Summary Derived Leaderboard
// @Description Ranked traders split into the podium and the rest. Figures are synthetic.
// @Tags Leaderboard
// @Produce json
// @Param period query string false "daily, weekly or monthly (echoed, does not filter)"
// @Success 200 {object} models.LeaderboardResponse
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /leaderboard [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	period := models.ParsePeriod(r.URL.Query().Get("period"))

	resp, err := h.leaderboard.Derive(r.Context(), period)
	if err != nil {
		h.logger.Errorw("Failed to derive leaderboard", "period", period, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}
