package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-book/internal/domain"
	"contact-book/internal/repository"
)

const minPasswordLength = 6

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAvatarUpload       = errors.New("avatar upload failed")
)

// VerificationDispatcher entrega el link de verificacion sin bloquear al llamante.
type VerificationDispatcher interface {
	DispatchVerification(ctx context.Context, email, link string)
}

// AvatarStore sube la imagen bajo una clave derivada del id y devuelve su URL publica.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error)
}

// AuthService coordina registro, login, verificacion de email y perfil.
type AuthService struct {
	logger        *zap.Logger
	users         repository.UserRepository
	hasher        PasswordHasher
	tokens        *JWTService
	dispatcher    VerificationDispatcher
	avatars       AvatarStore
	verifyBaseURL string
	now           func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens *JWTService,
	dispatcher VerificationDispatcher,
	avatars AvatarStore,
	verifyBaseURL string,
) *AuthService {
	return &AuthService{
		logger:        logger,
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		dispatcher:    dispatcher,
		avatars:       avatars,
		verifyBaseURL: verifyBaseURL,
		now:           time.Now,
	}
}

// Signup crea el usuario sin verificar y despacha el link de verificacion.
// Un fallo al despachar no afecta la respuesta.
func (s *AuthService) Signup(ctx context.Context, email, password string) (domain.User, error) {
	if s.users == nil || s.hasher == nil || s.tokens == nil {
		return domain.User{}, errors.New("auth service not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, &ValidationError{Field: "email", Message: "field required"}
	}
	if !ValidEmail(email) {
		return domain.User{}, &ValidationError{Field: "email", Message: "value is not a valid email address"}
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return domain.User{}, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	s.sendVerification(ctx, email)
	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, email string) {
	if s.dispatcher == nil {
		return
	}
	token, err := s.tokens.IssueEmailToken(email, 0)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("issue email token failed", zap.Error(err))
		}
		return
	}
	s.dispatcher.DispatchVerification(ctx, email, s.verificationLink(token))
}

func (s *AuthService) verificationLink(token string) string {
	return strings.TrimRight(s.verifyBaseURL, "/") + "/" + url.PathEscape(token)
}

// Login devuelve un access token. Email desconocido y password incorrecta
// producen el mismo ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if s.users == nil || s.hasher == nil || s.tokens == nil {
		return "", errors.New("auth service not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.IssueAccess(user.ID, 0)
}

// VerifyEmail marca al usuario como verificado. Repetir la llamada con un
// token aun valido no cambia nada.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	email, err := s.tokens.DecodeEmailToken(token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.IsVerified {
		return user, nil
	}
	user, err = s.users.SetVerified(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// Authenticate resuelve el usuario detras de un access token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.User, error) {
	userID, err := s.tokens.DecodeAccess(accessToken)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) GetProfile(_ context.Context, caller domain.User) (domain.User, error) {
	if !caller.IsVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	return caller, nil
}

// UpdateAvatar sube la imagen de forma sincronica y guarda la URL devuelta.
func (s *AuthService) UpdateAvatar(ctx context.Context, caller domain.User, data []byte, contentType string) (domain.User, error) {
	if !caller.IsVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	if s.avatars == nil {
		return domain.User{}, ErrAvatarUpload
	}
	avatarURL, err := s.avatars.UploadAvatar(ctx, caller.ID, data, contentType)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("upload avatar failed", zap.Error(err), zap.String("user_id", caller.ID))
		}
		return domain.User{}, fmt.Errorf("%w: %v", ErrAvatarUpload, err)
	}
	user, err := s.users.SetAvatarURL(ctx, caller.ID, avatarURL)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}
