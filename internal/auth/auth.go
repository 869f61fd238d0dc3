package auth

import (
	"context"
	"strings"
	"time"

	"github.com/aoacon/portal-api/internal/config"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	GoogleAuthorizeEndpoint = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenEndpoint     = "https://oauth2.googleapis.com/token"
	GoogleUserInfoAPI       = "https://www.googleapis.com/oauth2/v2/userinfo"
)

const TokenDuration = 24 * time.Hour

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthInput is embedded by every protected huma operation input.
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  GoogleAuthorizeEndpoint,
				TokenURL: GoogleTokenEndpoint,
			},
		},
		db:  db,
		cfg: cfg,
	}
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize validates the Authorization header and returns the user id.
// Failures map to 401 so clients drop their session.
func (h *AuthHandler) Authorize(ctx context.Context, authorization string) (uint, error) {
	// Handlers invoked in-process may carry the user id on the context.
	if userID, ok := ctx.Value(UserIDKey).(uint); ok {
		return userID, nil
	}

	tokenString, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || tokenString == "" {
		return 0, huma.Error401Unauthorized("Unauthorized: no token found")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token claims")
	}
	return uint(userIDFloat), nil
}

// AuthorizeUser resolves the full user record for a valid token.
func (h *AuthHandler) AuthorizeUser(ctx context.Context, authorization string) (*models.User, error) {
	userID, err := h.Authorize(ctx, authorization)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized: user not found")
	}
	return &user, nil
}

// AuthorizeAdmin gates back-office operations.
func (h *AuthHandler) AuthorizeAdmin(ctx context.Context, authorization string) (*models.User, error) {
	user, err := h.AuthorizeUser(ctx, authorization)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, huma.Error403Forbidden("Access denied: admin only")
	}
	return user, nil
}

var attendeeRoles = map[string]bool{
	models.RoleAOA:    true,
	models.RoleNonAOA: true,
	models.RolePGS:    true,
}

type SignupRequest struct {
	Body struct {
		Name         string `json:"name" required:"true" doc:"Full name"`
		Email        string `json:"email" required:"true" format:"email"`
		Phone        string `json:"phone"`
		Role         string `json:"role" required:"true" enum:"AOA,NON_AOA,PGS" doc:"Attendee category"`
		MembershipID string `json:"membershipId" doc:"AOA membership number, if any"`
		Password     string `json:"password" required:"true" minLength:"8"`
	}
}

type SessionResponse struct {
	Body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
}

func (h *AuthHandler) HandleSignup(ctx context.Context, input *SignupRequest) (*SessionResponse, error) {
	if !attendeeRoles[input.Body.Role] {
		return nil, huma.Error400BadRequest("Invalid attendee category")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	user := models.User{
		Name:         input.Body.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Body.Email)),
		Phone:        input.Body.Phone,
		Role:         input.Body.Role,
		MembershipID: input.Body.MembershipID,
		PasswordHash: string(hash),
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, huma.Error400BadRequest("An account with this email already exists")
	}

	return h.sessionFor(&user)
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*SessionResponse, error) {
	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Body.Email))
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}
	if user.PasswordHash == "" {
		return nil, huma.Error401Unauthorized("This account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)); err != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}
	return h.sessionFor(&user)
}

func (h *AuthHandler) sessionFor(user *models.User) (*SessionResponse, error) {
	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}
	res := &SessionResponse{}
	res.Body.Token = token
	res.Body.User = *user
	return res, nil
}

type MeRequest struct {
	AuthInput
}

type MeResponse struct {
	Body models.User
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	user, err := h.AuthorizeUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return &MeResponse{Body: *user}, nil
}
