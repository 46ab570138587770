package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"surveyeditor/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ownerNamespace scopes owner ids derived from usernames
var ownerNamespace = uuid.MustParse("6f1c2a4e-3b7d-4c55-9a51-0d6a8f2e9b13")

// AuthService handles survey author authentication
type AuthService struct {
	username  string
	password  string
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(username, password, secret string) *AuthService {
	return &AuthService{
		username:  username,
		password:  password,
		jwtSecret: []byte(secret),
		tokenTTL:  7 * 24 * time.Hour,
	}
}

// OwnerID returns the stable user id for a username
func OwnerID(username string) string {
	return uuid.NewSHA1(ownerNamespace, []byte(username)).String()
}

// Login validates credentials and returns a signed owner token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.username || password != s.password {
		return nil, ErrInvalidCredentials
	}

	userID := OwnerID(username)
	token, err := s.IssueToken(model.User{ID: userID, Name: username})
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:  token,
		UserID: userID,
	}, nil
}

// IssueToken signs an owner token for user
func (s *AuthService) IssueToken(user model.User) (string, error) {
	now := time.Now()
	claims := &model.OwnerClaims{
		UserID:   user.ID,
		UserName: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates an owner JWT and returns the user it names
func (s *AuthService) ValidateToken(tokenString string) (model.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OwnerClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return model.User{}, ErrInvalidToken
	}

	return model.User{ID: claims.UserID, Name: claims.UserName}, nil
}
