package main

import (
	"net/http"

	"gryffintwin/models"
	"gryffintwin/pkg/api"
	"gryffintwin/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func (s *server) registerHandler(c *gin.Context) {
	var req api.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	user, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.respondWithToken(c, http.StatusCreated, user)
}

func (s *server) loginHandler(c *gin.Context) {
	var req api.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	user, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.respondWithToken(c, http.StatusOK, user)
}

func (s *server) respondWithToken(c *gin.Context, status int, user models.User) {
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		writeError(c, apperr.Internal(err))
		return
	}
	c.JSON(status, api.AuthResponse{
		AccessToken: tok.Value,
		TokenType:   api.TokenType,
		ExpiresAt:   tok.ExpiresAt,
		User:        toAPIUser(user),
	})
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, toAPIUser(currentUser(c)))
}
