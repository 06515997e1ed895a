package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pavelgs/walletpay/internal/config"
	"github.com/pavelgs/walletpay/internal/wallet/dto"
	walletErrors "github.com/pavelgs/walletpay/internal/wallet/errors"
	"github.com/pavelgs/walletpay/internal/wallet/model"
	"github.com/pavelgs/walletpay/internal/wallet/service"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	currentUserKey = "currentUser"
)

type Handler struct {
	auth    service.AuthService
	wallets service.WalletService
	cfg     *config.Config
	log     *zap.Logger
}

func NewHandler(auth service.AuthService, wallets service.WalletService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{auth: auth, wallets: wallets, cfg: cfg, log: log}
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserView{Name: user.Name, Email: user.Email})
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user_id":    pair.UserID,
		"expires_in": int(pair.AccessTTL.Seconds()),
	})
}

// Logout clears both session cookies. There is no server-side revocation:
// issued tokens stay valid until their natural expiry.
func (h *Handler) Logout(c *gin.Context) {
	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	user := mustCurrentUser(c)
	c.JSON(http.StatusOK, dto.UserView{Name: user.Name, Email: user.Email})
}

func (h *Handler) Wallet(c *gin.Context) {
	user := mustCurrentUser(c)

	wallet, err := h.wallets.WalletOf(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WalletView{
		ID:      wallet.ID.String(),
		Balance: wallet.Balance.StringFixed(2),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireSession resolves the access cookie to a user and aborts with 401
// when it is missing, invalid, expired, of the wrong type, or orphaned.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AccessCookie)

		user, err := h.auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func mustCurrentUser(c *gin.Context) model.User {
	return c.MustGet(currentUserKey).(model.User)
}

func (h *Handler) setSessionCookies(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		AccessCookie,
		pair.AccessToken,
		int(h.cfg.AccessCookieMaxAge.Seconds()),
		"/",
		h.cfg.CookieDomain,
		h.cfg.CookieSecure,
		true, // httpOnly
	)
	c.SetCookie(
		RefreshCookie,
		pair.RefreshToken,
		int(h.cfg.RefreshCookieMaxAge.Seconds()),
		"/",
		h.cfg.CookieDomain,
		h.cfg.CookieSecure,
		true,
	)
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case walletErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case walletErrors.IsEmailTaken(err):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case walletErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case walletErrors.IsUnauthenticated(err) || walletErrors.IsTokenFailure(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case walletErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
