package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medhelper/medhelper/internal/client/models"
	"github.com/medhelper/medhelper/internal/common"
)

const minPasswordLength = 8

// Handler serves the API endpoints the client uses.
type Handler struct {
	log       *zap.Logger
	store     *Store
	tokens    *Tokens
	mailer    Mailer
	limiter   Limiter
	publicURL string
}

func NewHandler(log *zap.Logger, store *Store, tokens *Tokens, mailer Mailer, limiter Limiter, publicURL string) *Handler {
	if limiter == nil {
		limiter = allowAll{}
	}
	return &Handler{
		log:       log,
		store:     store,
		tokens:    tokens,
		mailer:    mailer,
		limiter:   limiter,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Error bodies follow Django REST framework: a "detail" string, or lists
// of messages per field.
func detail(msg string) gin.H { return gin.H{"detail": msg} }

func fieldError(field, msg string) gin.H { return gin.H{field: []string{msg}} }

const msgRequired = "This field is required."

// bind decodes the JSON body into req, replying 400 on malformed input.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, detail("JSON parse error - "+err.Error()))
		return false
	}
	return true
}

// Login handles POST /api/auth/login/.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bind(c, &req) {
		return
	}
	switch {
	case req.Email == "":
		c.JSON(http.StatusBadRequest, fieldError("email", msgRequired))
		return
	case req.Password == "":
		c.JSON(http.StatusBadRequest, fieldError("password", msgRequired))
		return
	}

	id, email, err := h.store.Authenticate(req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, detail("No active account found with the given credentials"))
		return
	case errors.Is(err, ErrInactive):
		c.JSON(http.StatusForbidden, detail("Please verify your email before signing in."))
		return
	case err != nil:
		h.internal(c, "login failed", err)
		return
	}

	token, err := h.tokens.Issue(id, email)
	if err != nil {
		h.internal(c, "jwt issue failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// Register handles POST /api/auth/register/.
func (h *Handler) Register(c *gin.Context) {
	var req models.SignUp
	if !bind(c, &req) {
		return
	}
	switch {
	case req.Email == "":
		c.JSON(http.StatusBadRequest, fieldError("email", msgRequired))
		return
	case req.Password == "":
		c.JSON(http.StatusBadRequest, fieldError("password", msgRequired))
		return
	case req.FullName == "":
		c.JSON(http.StatusBadRequest, fieldError("fullname", msgRequired))
		return
	case len(req.Password) < minPasswordLength:
		c.JSON(http.StatusBadRequest, fieldError("password",
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength)))
		return
	case req.Password != req.Password2:
		c.JSON(http.StatusBadRequest, fieldError("non_field_errors", "Passwords do not match."))
		return
	}

	otp, err := h.store.Register(req.Email, req.FullName, req.Password)
	if errors.Is(err, ErrEmailTaken) {
		c.JSON(http.StatusBadRequest, fieldError("email", "user with this email already exists."))
		return
	}
	if err != nil {
		h.internal(c, "register failed", err)
		return
	}

	h.mailer.SendOTP(c.Request.Context(), normalizeEmail(req.Email), otp)
	c.JSON(http.StatusCreated, gin.H{
		"email":    normalizeEmail(req.Email),
		"fullname": req.FullName,
		"detail":   "Registration successful. Check your email for the verification code.",
	})
}

// VerifyEmail handles POST /api/auth/verify-email/.
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req struct {
		OTP string `json:"otp"`
	}
	if !bind(c, &req) {
		return
	}
	if req.OTP == "" {
		c.JSON(http.StatusBadRequest, fieldError("otp", msgRequired))
		return
	}

	email, err := h.store.VerifyOTP(req.OTP)
	if errors.Is(err, ErrInvalidOTP) {
		c.JSON(http.StatusBadRequest, detail("Invalid or expired OTP."))
		return
	}
	if err != nil {
		h.internal(c, "verify failed", err)
		return
	}
	h.log.Info("email verified", zap.String("email", email))
	c.JSON(http.StatusOK, detail("Email verified successfully."))
}

// ResendOTP handles POST /api/auth/resend-otp/.
func (h *Handler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !bind(c, &req) {
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, fieldError("email", msgRequired))
		return
	}
	if !h.limiter.Allow(c.Request.Context(), req.Email) {
		c.JSON(http.StatusTooManyRequests, detail("Too many requests. Try again later."))
		return
	}

	otp, err := h.store.ResendOTP(req.Email)
	switch {
	case errors.Is(err, ErrUnknownEmail):
		c.JSON(http.StatusBadRequest, fieldError("email", "User with this email does not exist."))
		return
	case errors.Is(err, ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, detail("Email is already verified."))
		return
	case err != nil:
		h.internal(c, "resend failed", err)
		return
	}

	h.mailer.SendOTP(c.Request.Context(), normalizeEmail(req.Email), otp)
	c.JSON(http.StatusOK, detail("A new verification code has been sent."))
}

// RequestPasswordReset handles POST /api/auth/request-password-reset/. The
// reply does not reveal whether the account exists.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !bind(c, &req) {
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, fieldError("email", msgRequired))
		return
	}

	uid, token, err := h.store.RequestReset(req.Email)
	switch {
	case errors.Is(err, ErrUnknownEmail):
		h.log.Info("reset requested for unknown email", zap.String("email", req.Email))
	case err != nil:
		h.internal(c, "reset request failed", err)
		return
	default:
		link := fmt.Sprintf("%s%s/%s/%s/", h.publicURL, common.ResetConfirmPath, uid, token)
		h.mailer.SendResetLink(c.Request.Context(), normalizeEmail(req.Email), link)
	}
	c.JSON(http.StatusOK, detail("If the account exists, a reset link has been sent."))
}

// SetNewPassword handles PATCH /api/auth/set-new-password/.
func (h *Handler) SetNewPassword(c *gin.Context) {
	var req models.PasswordReset
	if !bind(c, &req) {
		return
	}
	switch {
	case req.UIDB64 == "" || req.Token == "":
		c.JSON(http.StatusBadRequest, detail("The reset link is invalid or has expired."))
		return
	case req.Password == "":
		c.JSON(http.StatusBadRequest, fieldError("password", msgRequired))
		return
	case len(req.Password) < minPasswordLength:
		c.JSON(http.StatusBadRequest, fieldError("password",
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength)))
		return
	}

	err := h.store.ResetPassword(req.UIDB64, req.Token, req.Password)
	if errors.Is(err, ErrInvalidResetLink) {
		c.JSON(http.StatusBadRequest, detail("The reset link is invalid or has expired."))
		return
	}
	if err != nil {
		h.internal(c, "password reset failed", err)
		return
	}
	c.JSON(http.StatusOK, detail("Password reset successful."))
}

// Cart handles GET /api/cart/.
func (h *Handler) Cart(c *gin.Context) {
	items, err := h.store.Cart(userID(c))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddToCart handles POST /api/cart/add/.
func (h *Handler) AddToCart(c *gin.Context) {
	var req struct {
		TestName string `json:"test_name"`
		Quantity int    `json:"quantity"`
	}
	if !bind(c, &req) {
		return
	}
	if req.TestName == "" {
		c.JSON(http.StatusBadRequest, fieldError("test_name", msgRequired))
		return
	}
	item, err := h.store.AddToCart(userID(c), req.TestName, req.Quantity)
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Notifications handles GET /api/notifications/?page=&page_size=.
func (h *Handler) Notifications(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := min(queryInt(c, "page_size", 10), 100)

	results, total, err := h.store.Notifications(userID(c), page, size)
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}

	var next, prev *string
	if page < pageCount(total, size) {
		next = pageURL(c, page+1, size)
	}
	if page > 1 {
		prev = pageURL(c, page-1, size)
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "next": next, "previous": prev, "results": results})
}

// MarkRead handles PATCH /api/notifications/:id/mark-read/.
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, detail("Not found."))
		return
	}
	if err := h.store.MarkRead(userID(c), id); err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, detail("Notification marked as read."))
}

func (h *Handler) notFoundOr500(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, detail("Not found."))
		return
	}
	h.internal(c, "request failed", err)
}

func (h *Handler) internal(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, detail("A server error occurred."))
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func pageURL(c *gin.Context, page, size int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}
