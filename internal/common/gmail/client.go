// Package gmail holds the Google OAuth2 flow and the Gmail API calls used by
// the inbox endpoints.
package gmail

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/metrics"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	user           = "me"
	listMaxResults = 10
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{
	gmailapi.GmailComposeScope,
	gmailapi.GmailModifyScope,
	gmailapi.GmailReadonlyScope,
	gmailapi.GmailSettingsBasicScope,
}

// Client is safe for concurrent use; every call builds its API service from the
// caller's token.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	endpoint   string
	logger     logger.Logger
}

type Option func(*Client)

// WithEndpoint points API calls at a different base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient sets the base client for token exchange and API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithOAuthEndpoint overrides Google's auth and token URLs.
func WithOAuthEndpoint(ep oauth2.Endpoint) Option {
	return func(c *Client) { c.oauth.Endpoint = ep }
}

func NewClient(cfg config.GoogleConfig, log logger.Logger, opts ...Option) *Client {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		logger: log.With(map[string]interface{}{"component": "gmail"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthURL asks for offline access and always shows the consent screen so a
// refresh token is issued.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.clientContext(ctx), code)
	c.record("exchange", err)
	if err != nil {
		return nil, errors.NewGmailAPIError("exchange authorization code", err)
	}
	return tok, nil
}

// Profile verifies the token by reading the mailbox profile.
func (c *Client) Profile(ctx context.Context, tok *oauth2.Token) (*gmailapi.Profile, error) {
	srv, err := c.service(ctx, tok)
	if err != nil {
		return nil, err
	}

	profile, err := srv.Users.GetProfile(user).Context(ctx).Do()
	c.record("profile", err)
	if err != nil {
		return nil, errors.NewGmailAPIError("access Gmail API", err)
	}
	return profile, nil
}

// ListMessages returns the ten most recent message references.
func (c *Client) ListMessages(ctx context.Context, tok *oauth2.Token) (*gmailapi.ListMessagesResponse, error) {
	srv, err := c.service(ctx, tok)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Messages.List(user).MaxResults(listMaxResults).Context(ctx).Do()
	c.record("list_messages", err)
	if err != nil {
		return nil, errors.NewGmailAPIError("fetch emails", err)
	}
	return resp, nil
}

// CreateReplyDraft drafts content as a reply to messageID in the same thread.
func (c *Client) CreateReplyDraft(ctx context.Context, tok *oauth2.Token, messageID, content string) (*gmailapi.Draft, error) {
	srv, err := c.service(ctx, tok)
	if err != nil {
		return nil, err
	}

	original, err := srv.Users.Messages.Get(user, messageID).Format("full").Context(ctx).Do()
	c.record("get_message", err)
	if err != nil {
		return nil, errors.NewGmailAPIError("create draft", err)
	}

	var subject, from string
	if original.Payload != nil {
		subject = header(original.Payload.Headers, "Subject")
		from = header(original.Payload.Headers, "From")
	}

	draft, err := srv.Users.Drafts.Create(user, &gmailapi.Draft{
		Message: &gmailapi.Message{
			Raw:      EncodeRaw(ReplyMessage(from, subject, content)),
			ThreadId: original.ThreadId,
		},
	}).Context(ctx).Do()
	c.record("create_draft", err)
	if err != nil {
		return nil, errors.NewGmailAPIError("create draft", err)
	}

	c.logger.Info("reply draft created", map[string]interface{}{
		"messageId": messageID,
		"threadId":  original.ThreadId,
		"draftId":   draft.Id,
	})
	return draft, nil
}

// ReplyMessage builds the RFC 2822 text of a plain-text reply.
func ReplyMessage(to, subject, content string) string {
	return strings.Join([]string{
		`Content-Type: text/plain; charset="UTF-8"`,
		"MIME-Version: 1.0",
		"To: " + to,
		"Subject: Re: " + subject,
		"",
		content,
	}, "\r\n")
}

// EncodeRaw is base64url without padding, as the Gmail raw field expects.
func EncodeRaw(message string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(message))
}

func header(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func (c *Client) service(ctx context.Context, tok *oauth2.Token) (*gmailapi.Service, error) {
	ctx = c.clientContext(ctx)
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, c.oauth.TokenSource(ctx, tok))),
	}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	srv, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewGmailAPIError("initialize Gmail client", err)
	}
	return srv, nil
}

func (c *Client) clientContext(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *Client) record(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		c.logger.Error("gmail call failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
	}
	metrics.GmailRequestsTotal.WithLabelValues(operation, outcome).Inc()
}
