package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"lexai-be/internal/dto"
	"lexai-be/internal/entity"
	"lexai-be/internal/repository/specification"
	"lexai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string, guestId string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory  unitofwork.RepositoryFactory
	gateService IGateService
	googleConf  *oauth2.Config
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, gateService IGateService, clientID, clientSecret, redirectURL string) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &oauthService{
		uowFactory:  uowFactory,
		gateService: gateService,
		googleConf:  conf,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "google" {
		return "", errors.New("unsupported provider")
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return s.googleConf.AuthCodeURL(state), nil
}

// HandleCallback exchanges the authorization code, resolves or creates the
// local user and issues a JWT. OAuth users arrive with a verified email so
// they skip the OTP flow entirely.
func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string, guestId string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, errors.New("unsupported provider")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %v", err)
	}

	userInfoURL := "https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken
	resp, err := http.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %v", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response: %v", err)
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(content, &googleUser); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	var user *entity.User

	existingProvider, err := uow.UserRepository().FindProvider(ctx, "google", googleUser.ID)
	if err != nil {
		return nil, err
	}

	if existingProvider != nil {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: existingProvider.UserId})
		if err != nil {
			return nil, err
		}
	}

	if user == nil {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if user == nil {
		avatar := googleUser.Picture
		user = &entity.User{
			Id:            uuid.New(),
			Email:         googleUser.Email,
			FullName:      googleUser.Name,
			PasswordHash:  nil,
			Status:        entity.UserStatusActive,
			EmailVerified: true,
			AvatarURL:     &avatar,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
	}

	if existingProvider == nil {
		userProvider := &entity.UserProvider{
			Id:             uuid.New(),
			UserId:         user.Id,
			ProviderName:   "google",
			ProviderUserId: googleUser.ID,
			AvatarURL:      googleUser.Picture,
			CreatedAt:      time.Now(),
		}
		if err := uow.UserRepository().CreateProvider(ctx, userProvider); err != nil {
			return nil, fmt.Errorf("failed to save provider info: %v", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if user.Status == entity.UserStatusBlocked {
		return nil, errors.New("user account is blocked")
	}

	signedToken, err := issueAccessToken(user.Id)
	if err != nil {
		log.Printf("[OAuth Service] Failed to sign JWT: %v", err)
		return nil, err
	}

	s.gateService.ResetForGuest(ctx, guestId)

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}
