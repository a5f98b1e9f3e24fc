package service

import (
	"context"
	"testing"
	"time"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/repository/contract"
	"hello-ai-be/internal/repository/specification"
	"hello-ai-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users         map[uuid.UUID]*entity.User
	otpTokens     map[uuid.UUID]*entity.EmailVerificationToken
	refreshTokens map[string]*entity.UserRefreshToken
	providers     []*entity.UserProvider
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         map[uuid.UUID]*entity.User{},
		otpTokens:     map[uuid.UUID]*entity.EmailVerificationToken{},
		refreshTokens: map[string]*entity.UserRefreshToken{},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	stored := *user
	r.users[user.Id] = &stored
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	stored := *user
	r.users[user.Id] = &stored
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if u, found := r.users[byID.ID]; found {
				copied := *u
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	stored := *token
	r.otpTokens[token.UserId] = &stored
	return nil
}

func (r *fakeUserRepo) FindEmailVerificationToken(ctx context.Context, userId uuid.UUID, token string) (*entity.EmailVerificationToken, error) {
	stored, found := r.otpTokens[userId]
	if !found || stored.Token != token {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeUserRepo) DeleteEmailVerificationToken(ctx context.Context, id uuid.UUID) error {
	for userId, token := range r.otpTokens {
		if token.Id == id {
			delete(r.otpTokens, userId)
		}
	}
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	stored := *token
	r.refreshTokens[token.TokenHash] = &stored
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	stored, found := r.refreshTokens[tokenHash]
	if !found || stored.Revoked {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeUserRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if stored, found := r.refreshTokens[tokenHash]; found {
		stored.Revoked = true
	}
	return nil
}

func (r *fakeUserRepo) CreateProvider(ctx context.Context, provider *entity.UserProvider) error {
	stored := *provider
	r.providers = append(r.providers, &stored)
	return nil
}

func (r *fakeUserRepo) FindProvider(ctx context.Context, providerName, providerUserId string) (*entity.UserProvider, error) {
	for _, p := range r.providers {
		if p.ProviderName == providerName && p.ProviderUserId == providerUserId {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeEmailService struct {
	sentTo   []string
	sentOTPs []string
}

func (f *fakeEmailService) SendOTP(to, otpCode string) error {
	f.sentTo = append(f.sentTo, to)
	f.sentOTPs = append(f.sentOTPs, otpCode)
	return nil
}

type authUnitOfWork struct {
	users *fakeUserRepo
}

func (u *authUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *authUnitOfWork) Commit() error                   { return nil }
func (u *authUnitOfWork) Rollback() error                 { return nil }

func (u *authUnitOfWork) UserRepository() contract.UserRepository { return u.users }
func (u *authUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return nil
}
func (u *authUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return nil
}
func (u *authUnitOfWork) StickyRepository() contract.StickyRepository { return nil }

func newAuthHarness(t *testing.T) (IAuthService, *fakeUserRepo, *fakeEmailService) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")

	users := newFakeUserRepo()
	emails := &fakeEmailService{}

	service := NewAuthService(authFactory{users: users}, emails, nil)
	return service, users, emails
}

type authFactory struct {
	users *fakeUserRepo
}

func (f authFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &authUnitOfWork{users: f.users}
}

func TestRegisterCreatesPendingUserAndSendsOTP(t *testing.T) {
	service, users, emails := newAuthHarness(t)

	res, err := service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Email)

	stored := users.users[res.Id]
	assert.Equal(t, entity.UserStatusPending, stored.Status)
	assert.False(t, stored.EmailVerified)
	assert.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("correct horse")))

	assert.Eventually(t, func() bool {
		return len(emails.sentTo) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ada@example.com", emails.sentTo[0])
	assert.Len(t, emails.sentOTPs[0], 6)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _, _ := newAuthHarness(t)

	_, err := service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	assert.NoError(t, err)

	_, err = service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Also Ada",
		Email:    "ada@example.com",
		Password: "another pass",
	})

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)
}

func TestVerifyEmailActivatesUser(t *testing.T) {
	service, users, emails := newAuthHarness(t)

	res, err := service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool { return len(emails.sentOTPs) == 1 }, time.Second, 5*time.Millisecond)

	err = service.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Token: emails.sentOTPs[0],
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.UserStatusActive, users.users[res.Id].Status)
	assert.True(t, users.users[res.Id].EmailVerified)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	service, _, emails := newAuthHarness(t)

	_, err := service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool { return len(emails.sentOTPs) == 1 }, time.Second, 5*time.Millisecond)

	err = service.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Token: "000000",
	})

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
}

func registerAndActivate(t *testing.T, service IAuthService, emails *fakeEmailService, email, password string) {
	t.Helper()
	_, err := service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Test User",
		Email:    email,
		Password: password,
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool { return len(emails.sentOTPs) > 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, service.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{
		Email: email,
		Token: emails.sentOTPs[len(emails.sentOTPs)-1],
	}))
}

func TestLoginHappyPath(t *testing.T) {
	service, _, emails := newAuthHarness(t)
	registerAndActivate(t, service, emails, "ada@example.com", "correct horse")

	res, err := service.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Empty(t, res.RefreshToken)
	assert.Equal(t, "ada@example.com", res.User.Email)
}

func TestLoginUnverifiedUserRejected(t *testing.T) {
	service, _, _ := newAuthHarness(t)

	_, err := service.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	assert.NoError(t, err)

	_, err = service.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusForbidden, fiberErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	service, _, emails := newAuthHarness(t)
	registerAndActivate(t, service, emails, "ada@example.com", "correct horse")

	_, err := service.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong horse",
	})

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	service, _, emails := newAuthHarness(t)
	registerAndActivate(t, service, emails, "ada@example.com", "correct horse")

	loginRes, err := service.Login(context.Background(), &dto.LoginRequest{
		Email:      "ada@example.com",
		Password:   "correct horse",
		RememberMe: true,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, loginRes.RefreshToken)

	refreshRes, err := service.Refresh(context.Background(), loginRes.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshRes.AccessToken)
	assert.Equal(t, loginRes.User.Id, refreshRes.User.Id)
}

func TestRefreshAfterLogoutRejected(t *testing.T) {
	service, _, emails := newAuthHarness(t)
	registerAndActivate(t, service, emails, "ada@example.com", "correct horse")

	loginRes, err := service.Login(context.Background(), &dto.LoginRequest{
		Email:      "ada@example.com",
		Password:   "correct horse",
		RememberMe: true,
	})
	assert.NoError(t, err)

	assert.NoError(t, service.Logout(context.Background(), loginRes.RefreshToken))

	_, err = service.Refresh(context.Background(), loginRes.RefreshToken)

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}
