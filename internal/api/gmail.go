// internal/api/gmail.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net/http"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const defaultCookieName = "advisorai_session"

var (
	errNoAuthCode   = stderrors.New("No authorization code received")
	errSessionStore = stderrors.New("Failed to store session")
	errGmailAccess  = stderrors.New("Failed to access Gmail API")
)

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html><body>
<script>
  window.opener.postMessage({{.}}, '*');
  window.close();
</script>
</body></html>
`))

type authCompleteMessage struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) cookieName() string {
	if name := h.deps.Config.Server.Session.CookieName; name != "" {
		return name
	}
	return defaultCookieName
}

// sessionToken returns the Gmail token of the request's session cookie.
func (h *Handler) sessionToken(c *gin.Context) (*oauth2.Token, error) {
	id, err := c.Cookie(h.cookieName())
	if err != nil || id == "" {
		return nil, errors.NewNotAuthenticatedError("no session cookie")
	}
	tok, err := h.deps.Sessions.Get(c.Request.Context(), id)
	if stderrors.Is(err, session.ErrNotFound) {
		return nil, errors.NewNotAuthenticatedError("no tokens found")
	}
	if err != nil {
		return nil, errors.NewExternalServiceError("session store", err)
	}
	return tok, nil
}

func (h *Handler) AuthStatus(c *gin.Context) {
	_, err := h.sessionToken(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": err == nil})
}

func (h *Handler) InitializeAuth(c *gin.Context) {
	state, err := session.NewID()
	if err != nil {
		h.respondError(c, errors.NewExternalServiceError("oauth", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": h.deps.Gmail.AuthURL(state)})
}

func (h *Handler) GmailRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, h.deps.Gmail.AuthURL(""))
}

// GmailCallback finishes the OAuth flow in the popup and reports the outcome
// to the opener window.
func (h *Handler) GmailCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.renderCallback(c, errNoAuthCode)
		return
	}

	ctx := c.Request.Context()
	tok, err := h.deps.Gmail.Exchange(ctx, code)
	if err != nil {
		h.renderCallback(c, err)
		return
	}

	id, err := session.NewID()
	if err != nil {
		h.renderCallback(c, err)
		return
	}
	if err := h.deps.Sessions.Save(ctx, id, tok); err != nil {
		h.logger.Error("failed to store gmail token", map[string]interface{}{"error": err.Error()})
		h.renderCallback(c, errSessionStore)
		return
	}
	h.setSessionCookie(c, id, h.deps.Config.Server.Session)

	profile, err := h.deps.Gmail.Profile(ctx, tok)
	if err != nil {
		h.renderCallback(c, errGmailAccess)
		return
	}

	h.logger.Info("gmail authenticated", map[string]interface{}{"email": profile.EmailAddress})
	h.renderCallback(c, nil)
}

func (h *Handler) setSessionCookie(c *gin.Context, id string, cfg config.SessionConfig) {
	maxAge := int(config.GetDuration(cfg.TTL).Seconds())
	if maxAge <= 0 {
		maxAge = 24 * 60 * 60
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName(), id, maxAge, "/", "", cfg.Secure, true)
}

func (h *Handler) renderCallback(c *gin.Context, err error) {
	msg := authCompleteMessage{Type: "gmail-auth-complete", Success: err == nil}
	if err != nil {
		msg.Error = err.Error()
		if stdErr, ok := errors.As(err); ok {
			msg.Error = stdErr.Message
		}
		h.logger.Warn("gmail oauth callback failed", map[string]interface{}{"error": msg.Error})
	}

	payload, mErr := json.Marshal(msg)
	if mErr != nil {
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := callbackPage.Execute(c.Writer, template.JS(payload)); err != nil {
		h.logger.Error("failed to render callback page", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) Logout(c *gin.Context) {
	if id, err := c.Cookie(h.cookieName()); err == nil && id != "" {
		if err := h.deps.Sessions.Delete(c.Request.Context(), id); err != nil {
			h.logger.Warn("failed to delete session", map[string]interface{}{"error": err.Error()})
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName(), "", -1, "/", "", h.deps.Config.Server.Session.Secure, true)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

func (h *Handler) ListEmails(c *gin.Context) {
	tok, err := h.sessionToken(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.deps.Gmail.ListMessages(c.Request.Context(), tok)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type draftRequest struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

func (h *Handler) CreateDraft(c *gin.Context) {
	tok, err := h.sessionToken(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req draftRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.MessageID == "" {
		h.respondError(c, errors.NewValidationError("messageId is required"))
		return
	}

	draft, err := h.deps.Gmail.CreateReplyDraft(c.Request.Context(), tok, req.MessageID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
