package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/pkg/logger"
	"hello-ai-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	googleConf *oauth2.Config
	logger     logger.ILogger
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory: uowFactory,
		googleConf: conf,
		logger:     log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "google" {
		return "", fiber.NewError(fiber.StatusBadRequest, "unsupported provider")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unsupported provider")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	googleUser, err := s.fetchGoogleUser(token.AccessToken)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByEmail(ctx, googleUser.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		now := time.Now()
		user = &entity.User{
			Id:              uuid.New(),
			Email:           googleUser.Email,
			FullName:        googleUser.Name,
			Status:          entity.UserStatusActive,
			EmailVerified:   googleUser.VerifiedEmail,
			EmailVerifiedAt: &now,
			AvatarURL:       &googleUser.Picture,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		defer uow.Rollback()

		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
		if err := uow.UserRepository().CreateProvider(ctx, &entity.UserProvider{
			Id:             uuid.New(),
			UserId:         user.Id,
			ProviderName:   provider,
			ProviderUserId: googleUser.ID,
			AvatarURL:      googleUser.Picture,
			CreatedAt:      now,
		}); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		s.logger.Info("OAuthService", "Provisioned user from Google", map[string]interface{}{
			"user_id": user.Id.String(),
			"email":   user.Email,
		})
	} else {
		// Returning user: make sure the provider link exists.
		existing, err := uow.UserRepository().FindProvider(ctx, provider, googleUser.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if err := uow.UserRepository().CreateProvider(ctx, &entity.UserProvider{
				Id:             uuid.New(),
				UserId:         user.Id,
				ProviderName:   provider,
				ProviderUserId: googleUser.ID,
				AvatarURL:      googleUser.Picture,
				CreatedAt:      time.Now(),
			}); err != nil {
				return nil, err
			}
		}
	}

	signedToken, err := signAccessToken(user.Id)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *oauthService) fetchGoogleUser(accessToken string) (*googleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response: %w", err)
	}

	var user googleUserInfo
	if err := json.Unmarshal(content, &user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, fmt.Errorf("google userinfo response missing email: %s", string(content))
	}
	return &user, nil
}
