package handler

import (
	"net/http"

	"visa_referral/internal/model"
	"visa_referral/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReferralHandler handles referral requests
type ReferralHandler struct {
	service service.ReferralService
	log     *zap.Logger
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(s service.ReferralService, log *zap.Logger) *ReferralHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReferralHandler{service: s, log: log}
}

func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	var req model.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	// referrals are always filed under the caller
	ref, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, h.log, err, "Failed to create referral")
		return
	}
	respond(c, http.StatusCreated, ref, "Referral created successfully")
}

// ListReferrals lists the caller's referrals, optionally filtered by status
func (h *ReferralHandler) ListReferrals(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	filters := model.ReferralFilters{ReferrerID: &userID}
	if s := c.Query("status"); s != "" {
		status := model.ReferralStatus(s)
		filters.Status = &status
	}

	refs, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		fail(c, h.log, err, "Failed to retrieve referrals")
		return
	}
	respond(c, http.StatusOK, refs, "Referrals retrieved successfully")
}

func (h *ReferralHandler) GetReferral(c *gin.Context) {
	ref, ok := h.owned(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, ref, "Referral retrieved successfully")
}

func (h *ReferralHandler) UpdateReferral(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}
	var req model.UpdateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ref, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.log, err, "Failed to update referral")
		return
	}
	respond(c, http.StatusOK, ref, "Referral updated successfully")
}

func (h *ReferralHandler) ListUserReferrals(c *gin.Context) {
	refs, err := h.service.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err, "Failed to retrieve referrals")
		return
	}
	respond(c, http.StatusOK, refs, "User referrals retrieved successfully")
}

func (h *ReferralHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err, "Failed to retrieve referral stats")
		return
	}
	respond(c, http.StatusOK, stats, "Referral stats retrieved successfully")
}

// owned loads the referral in :id; other users' referrals read as not found.
func (h *ReferralHandler) owned(c *gin.Context) (*model.Referral, bool) {
	userID, ok := authUserID(c)
	if !ok {
		return nil, false
	}
	ref, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err == nil && ref.ReferrerID != userID {
		err = service.ErrReferralNotFound
	}
	if err != nil {
		fail(c, h.log, err, "Failed to retrieve referral")
		return nil, false
	}
	return ref, true
}

// RegisterReferralRoutes registers referral routes
func (h *ReferralHandler) RegisterReferralRoutes(protected, users *gin.RouterGroup) {
	referralGroup := protected.Group("/referrals")
	{
		referralGroup.POST("", h.CreateReferral)
		referralGroup.GET("", h.ListReferrals)
		referralGroup.GET("/:id", h.GetReferral)
		referralGroup.PATCH("/:id", h.UpdateReferral)
	}
	users.GET("/referrals", h.ListUserReferrals)
	users.GET("/referral-stats", h.Stats)
}
