package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"slumberpod/core/apperr"
	"slumberpod/core/auth"
	"slumberpod/logger"
	"slumberpod/model"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"` // 可以是用户名或邮箱
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterHandler handles user registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		writeError(w, apperr.Validation("username, password and email are required"))
		return
	}
	if len(req.Password) < 6 {
		writeError(w, apperr.Validation("password must be at least 6 characters"))
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
	}

	userID, err := h.userRepo.CreateUser(r.Context(), user)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate entry") {
			writeError(w, apperr.Conflict("username or email already exists"))
		} else {
			writeError(w, apperr.Dependency(err))
		}
		return
	}
	user.ID = userID

	token, err := h.tokens.GenerateToken(userID, user.Username)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	logger.Info("[Register] 注册成功", logger.String("username", user.Username))
	writeSuccess(w, http.StatusCreated, authResponse{Token: token, User: user}, "registered")
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] 解析请求体失败", logger.ErrorField(err))
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, apperr.Validation("username/email and password are required"))
		return
	}

	// 支持用户名或邮箱登录
	var user *model.User
	var err error
	if strings.Contains(req.Username, "@") {
		user, err = h.userRepo.GetUserByEmail(r.Context(), req.Username)
	} else {
		user, err = h.userRepo.GetUserByUsername(r.Context(), req.Username)
	}
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if user == nil {
		logger.Warn("[Login] 用户不存在", logger.String("username", req.Username))
		writeError(w, apperr.AuthRequired("invalid username/email or password"))
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("[Login] 密码验证失败", logger.String("username", req.Username))
		writeError(w, apperr.AuthRequired("invalid username/email or password"))
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", user.Username))
	writeSuccess(w, http.StatusOK, authResponse{Token: token, User: user}, "logged in")
}
