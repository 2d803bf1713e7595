package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"mykitchen/internal/apperr"
	applog "mykitchen/internal/log"
	"mykitchen/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72
)

type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func projectUser(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      models.NormalizeRole(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Service owns accounts and token lifecycle.
type Service struct {
	db      *gorm.DB
	tokens  TokenService
	revoked *RevocationList
}

func NewService(db *gorm.DB, tokens TokenService, revoked *RevocationList) *Service {
	return &Service{db: db, tokens: tokens, revoked: revoked}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return apperr.Validationf("password must be %d-%d characters", minPasswordLength, maxPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(input RegisterInput) error {
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		return apperr.Validationf("invalid email")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperr.Validationf("name is required")
	}
	return validatePassword(input.Password)
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (UserResponse, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateRegistration(input); err != nil {
		return UserResponse{}, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("lower(email) = ?", input.Email).Count(&existing).Error; err != nil {
		return UserResponse{}, apperr.Internal(err, "check email")
	}
	if existing > 0 {
		return UserResponse{}, apperr.Conflictf("email already registered")
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return UserResponse{}, apperr.Internal(err, "hash password")
	}

	user := models.User{
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return UserResponse{}, apperr.Conflictf("email already registered")
		}
		return UserResponse{}, apperr.Internal(err, "create user")
	}

	applog.Info(ctx, "user registered", "user_id", user.ID)
	return projectUser(user), nil
}

func (s *Service) findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("lower(email) = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) findUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("user %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "find user")
	}
	return &user, nil
}

// Login checks credentials and issues a signed token. Unknown email and
// wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResponse{}, apperr.Unauthenticatedf("invalid email or password")
		}
		return LoginResponse{}, apperr.Internal(err, "load user during login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResponse{}, apperr.Unauthenticatedf("invalid email or password")
	}

	token, claims, err := s.tokens.Sign(user)
	if err != nil {
		return LoginResponse{}, apperr.Internal(err, "sign token")
	}

	applog.Info(ctx, "user logged in", "user_id", user.ID)
	return LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: projectUser(*user)}, nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticatedf("invalid token")
	}

	revoked, err := s.revoked.IsRevoked(claims.ID)
	if err != nil {
		return nil, apperr.Internal(err, "check token revocation")
	}
	if revoked {
		applog.Debug(ctx, "revoked token presented", "jti", claims.ID)
		return nil, apperr.Unauthenticatedf("token has been revoked")
	}
	return claims, nil
}

func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return apperr.Unauthenticatedf("authentication required")
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(claims.ID, expiry); err != nil {
		return apperr.Internal(err, "revoke token")
	}

	applog.Info(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.Validationf("current password is incorrect")
	}

	hashed, err := HashPassword(next)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hashed).Error; err != nil {
		return apperr.Internal(err, "update password")
	}

	applog.Info(ctx, "password changed", "user_id", userID)
	return nil
}

func (s *Service) Me(ctx context.Context, userID uint) (UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return UserResponse{}, err
	}
	return projectUser(*user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Internal(err, "list users")
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, projectUser(u))
	}
	return out, nil
}
