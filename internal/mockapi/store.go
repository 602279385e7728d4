package mockapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medhelper/medhelper/internal/client/models"
	"github.com/medhelper/medhelper/internal/common"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("email not verified")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrUnknownEmail       = errors.New("unknown email")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidResetLink   = errors.New("invalid or expired reset link")
	ErrNotFound           = errors.New("not found")
)

type user struct {
	id       int64
	email    string
	fullName string
	hash     []byte
	active   bool

	cart          []models.CartItem
	notifications []models.Notification
}

type expiring struct {
	userID  int64
	expires time.Time
}

// Store keeps accounts, pending codes and reset tokens in memory.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	otpTTL   time.Duration
	resetTTL time.Duration

	nextUserID int64
	nextItemID int64
	users      map[int64]*user
	byEmail    map[string]int64
	otps       map[string]expiring // by hashOTP
	resets     map[string]expiring // by token
}

func NewStore(otpTTL, resetTTL time.Duration) *Store {
	return &Store{
		now:      time.Now,
		otpTTL:   otpTTL,
		resetTTL: resetTTL,
		users:    map[int64]*user{},
		byEmail:  map[string]int64{},
		otps:     map[string]expiring{},
		resets:   map[string]expiring{},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EncodeUID renders a user id the way reset links carry it.
func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uidb64 string) (int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uidb64, "="))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(b), 10, 64)
}

// Register creates an inactive account and returns its verification code.
func (s *Store) Register(email, fullName, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, ok := s.byEmail[key]; ok {
		return "", ErrEmailTaken
	}
	s.nextUserID++
	u := &user{id: s.nextUserID, email: key, fullName: fullName, hash: hash}
	s.users[u.id] = u
	s.byEmail[key] = u.id
	s.notifyLocked(u, "Welcome to MedHelper", "Thanks for registering, "+fullName+".")

	return s.issueOTPLocked(u.id)
}

func (s *Store) issueOTPLocked(userID int64) (string, error) {
	for k, e := range s.otps {
		if e.userID == userID {
			delete(s.otps, k)
		}
	}
	for {
		otp, err := generateOTP()
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		h := hashOTP(otp)
		if _, taken := s.otps[h]; taken {
			continue
		}
		s.otps[h] = expiring{userID: userID, expires: s.now().Add(s.otpTTL)}
		return otp, nil
	}
}

// Authenticate checks the password and returns the account's id and email.
func (s *Store) Authenticate(email, password string) (int64, string, error) {
	s.mu.Lock()
	id, ok := s.byEmail[normalizeEmail(email)]
	var u user
	if ok {
		u = *s.users[id]
	}
	s.mu.Unlock()

	if !ok {
		return 0, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return 0, "", ErrInvalidCredentials
	}
	if !u.active {
		return 0, "", ErrInactive
	}
	return u.id, u.email, nil
}

// VerifyOTP activates the account the code was issued to.
func (s *Store) VerifyOTP(otp string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := hashOTP(otp)
	e, ok := s.otps[h]
	if !ok {
		return "", ErrInvalidOTP
	}
	delete(s.otps, h)
	if s.now().After(e.expires) {
		return "", ErrInvalidOTP
	}
	u := s.users[e.userID]
	u.active = true
	return u.email, nil
}

// ResendOTP replaces the pending code of an unverified account.
func (s *Store) ResendOTP(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return "", ErrUnknownEmail
	}
	if s.users[id].active {
		return "", ErrAlreadyVerified
	}
	return s.issueOTPLocked(id)
}

// RequestReset issues a single-use reset token for email.
func (s *Store) RequestReset(email string) (uidb64, token string, err error) {
	token, err = common.MakeRandHexString(16)
	if err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return "", "", ErrUnknownEmail
	}
	s.resets[token] = expiring{userID: id, expires: s.now().Add(s.resetTTL)}
	return EncodeUID(id), token, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Store) ResetPassword(uidb64, token, password string) error {
	id, err := DecodeUID(uidb64)
	if err != nil {
		return ErrInvalidResetLink
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.resets[token]
	if !ok || e.userID != id {
		return ErrInvalidResetLink
	}
	delete(s.resets, token)
	if s.now().After(e.expires) {
		return ErrInvalidResetLink
	}
	s.users[id].hash = hash
	return nil
}

func (s *Store) Cart(userID int64) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]models.CartItem{}, u.cart...), nil
}

func (s *Store) AddToCart(userID int64, testName string, quantity int) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.CartItem{}, ErrNotFound
	}
	if quantity < 1 {
		quantity = 1
	}
	s.nextItemID++
	item := models.CartItem{ID: s.nextItemID, TestName: testName, Quantity: quantity}
	u.cart = append(u.cart, item)
	return item, nil
}

// Notifications returns one page of the feed, newest first, and the total
// count.
func (s *Store) Notifications(userID int64, page, pageSize int) ([]models.Notification, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, 0, ErrNotFound
	}
	total := len(u.notifications)
	if page < 1 || pageSize < 1 || page > pageCount(total, pageSize) {
		return []models.Notification{}, total, nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	out := make([]models.Notification, 0, end-start)
	for i := total - 1 - start; i >= total-end; i-- {
		out = append(out, u.notifications[i])
	}
	return out, total, nil
}

// pageCount is the number of pages of size pageSize needed for total items.
func pageCount(total, pageSize int) int {
	n := total / pageSize
	if total%pageSize != 0 {
		n++
	}
	return n
}

func (s *Store) MarkRead(userID, notificationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range u.notifications {
		if u.notifications[i].ID == notificationID {
			u.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

// Notify appends a notification to the user's feed.
func (s *Store) Notify(userID int64, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	s.notifyLocked(u, subject, body)
	return nil
}

func (s *Store) notifyLocked(u *user, subject, body string) {
	s.nextItemID++
	u.notifications = append(u.notifications, models.Notification{
		ID:        s.nextItemID,
		Subject:   subject,
		Body:      body,
		CreatedAt: s.now().UTC(),
	})
}
