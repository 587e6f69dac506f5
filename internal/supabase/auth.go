package supabase

import (
	"errors"
	"fmt"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthSession is what the browser needs after sign-in.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	// ConfirmationPending is set when sign-up needs email confirmation
	// before a session is issued.
	ConfirmationPending bool `json:"confirmation_pending,omitempty"`
}

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthClient wraps the GoTrue API.
type AuthClient struct {
	auth gotrue.Client
}

func NewAuthClient(auth gotrue.Client) *AuthClient {
	return &AuthClient{auth: auth}
}

func (a *AuthClient) SignUp(email, password string) (*AuthSession, error) {
	resp, err := a.auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	session := &AuthSession{
		UserID: resp.User.ID.String(),
		Email:  resp.User.Email,
	}
	if resp.Session.AccessToken == "" {
		session.ConfirmationPending = true
		return session, nil
	}
	session.AccessToken = resp.Session.AccessToken
	session.RefreshToken = resp.Session.RefreshToken
	session.ExpiresIn = resp.Session.ExpiresIn
	return session, nil
}

func (a *AuthClient) SignIn(email, password string) (*AuthSession, error) {
	resp, err := a.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	return &AuthSession{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		UserID:       resp.User.ID.String(),
		Email:        resp.User.Email,
	}, nil
}

func (a *AuthClient) SignOut(accessToken string) error {
	if err := a.auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (a *AuthClient) User(accessToken string) (*AuthUser, error) {
	resp, err := a.auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &AuthUser{
		ID:    resp.ID.String(),
		Email: resp.Email,
	}, nil
}
