package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/middleware"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
	jwt  *middleware.JWT
}

func NewAuthHandler(auth *service.AuthService, jwt *middleware.JWT) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt}
}

func (h *AuthHandler) Login(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.LoginRequest](data)
	if err != nil {
		return nil, err
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		logger.Warn("login.failed", "email", req.Email, "err", err)
		return nil, err
	}
	logger.Info("login.ok", "email", resp.Email, "role", resp.Role)

	resp.Token, err = h.jwt.Issue(resp.Email, resp.Role)
	if err != nil {
		return nil, err
	}
	return gateway.Success(resp)
}

func (h *AuthHandler) Register(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.RegisterRequest](data)
	if err != nil {
		return nil, err
	}
	msg, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		logger.Warn("register.failed", "email", req.Email, "err", err)
		return nil, err
	}
	logger.Info("register.ok", "email", req.Email, "role", req.Role, "club", req.Club)
	return &gateway.Response{Status: model.StatusSuccess, Message: msg}, nil
}
