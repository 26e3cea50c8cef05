package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/arrowflix/internal/apperror"
	"github.com/patric-chuzhbe/arrowflix/internal/auth"
	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
)

// Client-facing messages produced by the transport layer itself.
const (
	MsgInvalidRequestBody  = "Invalid request body"
	MsgCredentialsRequired = "Email and password required"
	MsgRegistered          = "Registered"
)

// GetPing answers 200 when the storage is reachable.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.accounts.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.accounts.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// PostAuthregister creates an account and returns its public view.
func (router *Router) PostAuthregister(response http.ResponseWriter, request *http.Request) {
	var requestDTO models.RegisterRequest
	if !router.decodeJSON(response, request, &requestDTO) {
		return
	}

	usr, err := router.accounts.Register(
		request.Context(),
		requestDTO.Name,
		requestDTO.Email,
		requestDTO.Password,
	)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.accounts.Register()`: ", zap.Error(err))
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.RegisterResponse{
		Message: MsgRegistered,
		User:    usr.Public(),
	})
}

// PostAuthlogin exchanges credentials for a bearer token.
func (router *Router) PostAuthlogin(response http.ResponseWriter, request *http.Request) {
	var requestDTO models.LoginRequest
	if !router.decodeJSON(response, request, &requestDTO) {
		return
	}

	token, usr, err := router.auth.Login(request.Context(), requestDTO.Email, requestDTO.Password)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.auth.Login()`: ", zap.Error(err))
		writeError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  usr.Public(),
	})
}

// GetAuthme returns the account resolved by the auth middleware.
func (router *Router) GetAuthme(response http.ResponseWriter, request *http.Request) {
	usr, ok := auth.UserFromContext(request.Context())
	if !ok {
		writeError(response, apperror.NewAuth(auth.MsgMissingToken, nil))
		return
	}

	writeJSON(response, http.StatusOK, router.auth.Me(usr))
}

func (router *Router) GetMoviestrending(response http.ResponseWriter, request *http.Request) {
	page, err := router.catalog.Trending(request.Context())
	writeCatalogPage(response, page, err)
}

func (router *Router) GetMoviestoprated(response http.ResponseWriter, request *http.Request) {
	page, err := router.catalog.TopRated(request.Context())
	writeCatalogPage(response, page, err)
}

// GetMoviesgenre proxies the genre discovery query. The route pattern only
// admits digits; ids that do not fit an int are treated as unknown routes.
func (router *Router) GetMoviesgenre(response http.ResponseWriter, request *http.Request) {
	genreID, err := strconv.Atoi(chi.URLParam(request, "id"))
	if err != nil {
		http.NotFound(response, request)
		return
	}

	page, err := router.catalog.ByGenre(request.Context(), genreID)
	writeCatalogPage(response, page, err)
}

// decodeJSON fills requestDTO from the body. Syntax errors answer
// "Invalid request body"; an empty body or missing required fields answer
// "Email and password required".
func (router *Router) decodeJSON(response http.ResponseWriter, request *http.Request, requestDTO any) bool {
	request.Body = http.MaxBytesReader(response, request.Body, maxRequestBodyBytes)

	if err := json.NewDecoder(request.Body).Decode(requestDTO); err != nil {
		logger.Log.Debugln("Error calling the `json.NewDecoder().Decode()`: ", zap.Error(err))
		if errors.Is(err, io.EOF) {
			writeError(response, apperror.NewValidation(MsgCredentialsRequired))
			return false
		}
		writeError(response, apperror.NewValidation(MsgInvalidRequestBody))
		return false
	}

	if err := router.validate.Struct(requestDTO); err != nil {
		logger.Log.Debugln("Error calling the `router.validate.Struct()`: ", zap.Error(err))
		writeError(response, apperror.NewValidation(MsgCredentialsRequired))
		return false
	}

	return true
}

func writeCatalogPage(response http.ResponseWriter, page models.CatalogPage, err error) {
	if err != nil {
		logger.Log.Debugln("Error calling the catalog upstream: ", zap.Error(err))
		writeError(response, err)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusOK)
	if _, err := response.Write(page); err != nil {
		logger.Log.Debugln("Error calling the `response.Write()`: ", zap.Error(err))
	}
}

func writeJSON(response http.ResponseWriter, status int, body any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, err error) {
	code := apperror.SafeCode(err)
	if code == http.StatusInternalServerError {
		logger.Log.Errorw("request failed", zap.Error(err))
	}

	writeJSON(response, code, models.ErrorResponse{Message: apperror.SafeMessage(err)})
}
