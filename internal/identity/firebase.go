package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	verifyTimeout = 5 * time.Second
	initTimeout   = 10 * time.Second

	// The Admin SDK has no password sign-in; that goes through the
	// Identity Toolkit REST endpoint with the web API key.
	signInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
)

// Firebase implements Provider on the Firebase Admin SDK.
type Firebase struct {
	auth   *auth.Client
	apiKey string
	http   *http.Client
	log    *zap.Logger
}

// NewFirebase initializes the Firebase app from service account JSON.
func NewFirebase(ctx context.Context, serviceAccountJSON []byte, webAPIKey string, log *zap.Logger) (*Firebase, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(serviceAccountJSON))
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()
	client, err := app.Auth(initCtx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth init: %w", err)
	}

	log.Info("firebase initialized")
	return &Firebase{
		auth:   client,
		apiKey: webAPIKey,
		http:   &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}, nil
}

func (f *Firebase) CurrentUser(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrUnauthenticated
	}

	verifyCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	token, err := f.auth.VerifyIDToken(verifyCtx, idToken)
	if err != nil {
		f.log.Warn("token verification failed", zap.Error(err))
		return nil, ErrUnauthenticated
	}
	if token.UID == "" {
		return nil, ErrUnauthenticated
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	return &Identity{UID: token.UID, Email: email, DisplayName: name}, nil
}

func (f *Firebase) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	rec, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailInUse
		}
		if strings.Contains(err.Error(), "password") {
			return nil, ErrWeakPassword
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &Identity{UID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName}, nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	body, _ := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInURL+"?key="+f.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		switch {
		case strings.HasPrefix(apiErr.Error.Message, "EMAIL_NOT_FOUND"),
			strings.HasPrefix(apiErr.Error.Message, "INVALID_PASSWORD"),
			strings.HasPrefix(apiErr.Error.Message, "INVALID_LOGIN_CREDENTIALS"):
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %s", apiErr.Error.Message)
	}

	var ok struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		IDToken     string `json:"idToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return nil, fmt.Errorf("sign in: decode response: %w", err)
	}
	return &Identity{
		UID:         ok.LocalID,
		Email:       ok.Email,
		DisplayName: ok.DisplayName,
		IDToken:     ok.IDToken,
	}, nil
}

func (f *Firebase) SignOut(ctx context.Context, uid string) error {
	if err := f.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (f *Firebase) UpdateDisplayName(ctx context.Context, uid, name string) error {
	params := (&auth.UserToUpdate{}).DisplayName(name)
	if _, err := f.auth.UpdateUser(ctx, uid, params); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}
