package middleware

import (
	"errors"
	"net/http"
	"time"

	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionKey        = "webSession"
	sessionOptionsKey = "webSessionOptions"
)

// SessionExpiredMessage is flashed when the backend token is no longer valid.
const SessionExpiredMessage = "Your session has expired. Please log in again."

type sessionOptions struct {
	store      *utils.SessionStore
	cookieName string
	secure     bool
}

func (o *sessionOptions) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(o.cookieName, id, int(o.store.TTL().Seconds()), "/", "", o.secure, true)
}

// SessionMiddleware loads the web session named by the cookie and saves it
// once the handler has run. A browser with nothing worth keeping yet (no
// login, no flash) gets a cookie but no Redis record.
func SessionMiddleware(store *utils.SessionStore, cookieName string, secure bool) gin.HandlerFunc {
	opts := &sessionOptions{store: store, cookieName: cookieName, secure: secure}
	return func(c *gin.Context) {
		logger := zap.L()
		ctx := c.Request.Context()

		var session *utils.WebSession
		var cookieID string
		stored := false
		if id, err := c.Cookie(cookieName); err == nil && id != "" {
			s, err := store.Get(ctx, id)
			switch {
			case err == nil:
				session = s
				stored = true
			case errors.Is(err, utils.ErrSessionNotFound):
				cookieID = id
			default:
				logger.Error("Failed to load web session", zap.Error(err))
			}
		}
		if session == nil {
			session = store.New()
			// Keep an unsaved id we issued earlier so the cookie stays put.
			if _, err := uuid.Parse(cookieID); err == nil {
				session.ID = cookieID
			}
		}

		// A token whose exp has passed is dropped before any handler sees it.
		if session.Authenticated() {
			if claims, err := utils.DecodeToken(session.Token); err == nil && claims.Expired(time.Now()) {
				session.Logout()
				session.Flash = SessionExpiredMessage
			}
		}

		opts.setCookie(c, session.ID)
		c.Set(sessionKey, session)
		c.Set(sessionOptionsKey, opts)

		c.Next()

		if !stored && !session.Authenticated() && !session.Admin && session.Flash == "" {
			return
		}
		if err := store.Save(ctx, session); err != nil {
			logger.Error("Failed to save web session", zap.String("sessionID", session.ID), zap.Error(err))
		}
	}
}

// RotateSession moves the current session to a new id and reissues the
// cookie. Call it before attaching a login so an id handed out earlier
// cannot be reused. Without SessionMiddleware it does nothing.
func RotateSession(c *gin.Context) {
	v, ok := c.Get(sessionOptionsKey)
	if !ok {
		return
	}
	opts, ok := v.(*sessionOptions)
	if !ok {
		return
	}
	session := CurrentSession(c)
	oldID := session.ID
	if err := opts.store.Rotate(c.Request.Context(), session); err != nil {
		zap.L().Warn("Failed to remove rotated web session", zap.String("sessionID", oldID), zap.Error(err))
	}
	opts.setCookie(c, session.ID)
}

// CurrentSession returns the session attached by SessionMiddleware. It never
// returns nil so handlers can be exercised without the middleware.
func CurrentSession(c *gin.Context) *utils.WebSession {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*utils.WebSession); ok {
			return s
		}
	}
	s := &utils.WebSession{}
	c.Set(sessionKey, s)
	return s
}

// SetSession attaches session to the request context.
func SetSession(c *gin.Context, session *utils.WebSession) {
	c.Set(sessionKey, session)
}
