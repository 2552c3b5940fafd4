package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"orderdesk/internal/consent"
	"orderdesk/internal/session"
	"orderdesk/internal/validation"
)

type handlers struct {
	fallback string
}

type signInRequest struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type consentRequest struct {
	Status     consent.Status     `json:"status"`
	Categories consent.Categories `json:"categories"`
}

func (h *handlers) getSession(c *gin.Context) {
	ws := workspaceFrom(c)
	ctx := c.Request.Context()
	signedIn, err := ws.Session.SignedIn(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	role, err := ws.Session.Role(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signedIn": signedIn, "role": role, "loginRoute": role.LoginRoute()})
}

// signIn stores a token the client obtained from the backend login.
func (h *handlers) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	role, err := session.ParseRole(req.Role)
	if err != nil {
		h.writeError(c, validation.Field("role", "must be manager or agent"))
		return
	}
	if err := workspaceFrom(c).Session.SignIn(c.Request.Context(), req.Token, role); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signedIn": true, "role": role})
}

func (h *handlers) signOut(c *gin.Context) {
	redirect, err := workspaceFrom(c).Session.SignOut(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": redirect})
}

func (h *handlers) getConsent(c *gin.Context) {
	rec, err := workspaceFrom(c).Consent.Load(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"showBanner": rec == nil, "record": rec})
}

func (h *handlers) decideConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rec, err := workspaceFrom(c).Consent.Decide(c.Request.Context(), req.Status, req.Categories)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"showBanner": false, "record": rec})
}
