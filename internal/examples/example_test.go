// Package examples shows the HTTP API end to end: registration, login and
// the protected profile endpoint, served from an in-memory store.
package examples

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/patric-chuzhbe/arrowflix/internal/auth"
	"github.com/patric-chuzhbe/arrowflix/internal/catalog"
	"github.com/patric-chuzhbe/arrowflix/internal/config"
	"github.com/patric-chuzhbe/arrowflix/internal/db/memorystorage"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/passwords"
	"github.com/patric-chuzhbe/arrowflix/internal/router"
	"github.com/patric-chuzhbe/arrowflix/internal/service"
	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

func setupTestServer() *httptest.Server {
	cfg, err := config.New(config.WithDisableFlagsParsing(true))
	if err != nil {
		panic(err)
	}

	db, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	hasher, err := passwords.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		panic(err)
	}

	theRouter := router.New(
		service.New(db, hasher),
		auth.New(db, hasher, []byte(cfg.JWTSecret), auth.WithTokenTTL(cfg.TokenTTL)),
		catalog.New(cfg.TMDBAPIKey, catalog.WithBaseURL(cfg.TMDBBaseURL)),
		router.WithAPIPrefix(cfg.APIPrefix),
	)

	return httptest.NewServer(theRouter)
}

func postJSON(url string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}

	return resp
}

func Example_register() {
	server := setupTestServer()
	defer server.Close()

	resp := postJSON(server.URL+"/api/auth/register", models.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "pw12345",
	})
	defer resp.Body.Close()

	var result models.RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Message:", result.Message)
	fmt.Println("Email:", result.User.Email)

	// Output:
	// Status Code: 200
	// Message: Registered
	// Email: alice@example.com
}

func Example_loginAndMe() {
	server := setupTestServer()
	defer server.Close()

	credentials := models.LoginRequest{Email: "a@x.com", Password: "pw12345"}

	resp := postJSON(server.URL+"/api/auth/register", credentials)
	resp.Body.Close()

	resp = postJSON(server.URL+"/api/auth/login", credentials)
	var login models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		panic(err)
	}
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/auth/me", nil)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Authorization", "Bearer "+login.Token)

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var me user.PublicView
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Same account:", me.ID == login.User.ID)
	fmt.Println("Email:", me.Email)

	// Output:
	// Status Code: 200
	// Same account: true
	// Email: a@x.com
}

func Example_invalidCredentials() {
	server := setupTestServer()
	defer server.Close()

	resp := postJSON(server.URL+"/api/auth/login", models.LoginRequest{Email: "ghost@x.com", Password: "pw"})
	defer resp.Body.Close()

	var result models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Message:", result.Message)

	// Output:
	// Status Code: 401
	// Message: Invalid credentials
}
