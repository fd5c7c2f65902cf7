package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

// walletParam reads and validates the {wallet} path segment.
func (h *Handler) walletParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := chi.URLParam(r, "wallet")
	if !wallet.ValidAddress(address) {
		h.errorResponse(w, http.StatusBadRequest, "Invalid wallet address")
		return "", false
	}
	return address, true
}

// RegisterUser handles POST /api/v1/users
// @Summary Register or Fetch User
// @Description Creates the record for a wallet on first sight, otherwise returns the existing one
// @Tags Users
// @Accept json
// @Produce json
// @Param body body models.RegisterUserRequest true "Wallet"
// @Success 200 {object} models.UserRecord "Existing user"
// @Success 201 {object} models.UserRecord "Created user"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 429 {object} map[string]string "Rate limited"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /users [post]
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.allowWrite(w, r, req.WalletAddress) {
		return
	}

	rec, created, err := h.users.RegisterOrFetch(r.Context(), req.WalletAddress)
	if err != nil {
		h.storeError(w, err, "register user", req.WalletAddress)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.jsonResponse(w, status, rec)
}

// GetUser handles GET /api/v1/users/{wallet}
// @Summary Get User Profile
// @Tags Users
// @Produce json
// @Param wallet path string true "Wallet address"
// @Success 200 {object} models.UserRecord
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /users/{wallet} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	address, ok := h.walletParam(w, r)
	if !ok {
		return
	}

	rec, err := h.users.GetProfile(r.Context(), address)
	if err != nil {
		h.storeError(w, err, "fetch user", address)
		return
	}
	h.jsonResponse(w, http.StatusOK, rec)
}

// UpdateProfile handles PUT /api/v1/users/{wallet}/profile
// @Summary Update Profile
// @Description Partially updates nickname and social handles. Empty strings clear a field.
// @Tags Users
// @Accept json
// @Produce json
// @Param wallet path string true "Wallet address"
// @Param body body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.UserRecord
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 429 {object} map[string]string "Rate limited"
// @Router /users/{wallet}/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	address, ok := h.walletParam(w, r)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	upd, err := req.ToUpdate()
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.allowWrite(w, r, address) {
		return
	}

	var rec models.UserRecord
	if upd.IsEmpty() {
		rec, err = h.users.GetProfile(r.Context(), address)
	} else {
		rec, err = h.users.UpdateProfile(r.Context(), address, upd)
	}
	if err != nil {
		h.storeError(w, err, "update profile", address)
		return
	}
	h.jsonResponse(w, http.StatusOK, rec)
}

// SetListing handles PUT /api/v1/users/{wallet}/listing
// @Summary Set Listing Flag
// @Description Opts the wallet in or out of the public leaderboard
// @Tags Users
// @Accept json
// @Produce json
// @Param wallet path string true "Wallet address"
// @Param body body models.SetListingRequest true "Listing flag"
// @Success 200 {object} models.SetListingResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 429 {object} map[string]string "Rate limited"
// @Router /users/{wallet}/listing [put]
func (h *Handler) SetListing(w http.ResponseWriter, r *http.Request) {
	address, ok := h.walletParam(w, r)
	if !ok {
		return
	}
	var req models.SetListingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.allowWrite(w, r, address) {
		return
	}

	if err := h.users.SetListing(r.Context(), address, *req.Listed); err != nil {
		h.storeError(w, err, "update listing", address)
		return
	}
	h.jsonResponse(w, http.StatusOK, models.SetListingResponse{Success: true})
}
