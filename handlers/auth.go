package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"mindbloom/middleware"
	"mindbloom/models"
	"mindbloom/services/booking"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthAPI is the backend surface used by the login and signup forms.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.SignupRequest) error
}

type AuthHandler struct {
	api   AuthAPI
	flows *booking.FlowStore
}

func NewAuthHandler(api AuthAPI, flows *booking.FlowStore) *AuthHandler {
	return &AuthHandler{api: api, flows: flows}
}

type loginInput struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type signupInput struct {
	Name            string `form:"name" json:"name" binding:"required"`
	Email           string `form:"email" json:"email" binding:"required,email"`
	Password        string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required,eqfield=Password"`
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated() {
		redirect(c, "/home")
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

// Login handles POST /login. The token is kept in the web session only.
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	fieldErrs, err := bind(c, &in)
	if err != nil {
		getLogger(c).Info("Unreadable login request", zap.Error(err))
		h.loginFailed(c, in, http.StatusBadRequest, badInputMessage)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if len(fieldErrs) > 0 || in.Email == "" {
		h.loginFailed(c, in, http.StatusBadRequest, "Please enter your email and password.")
		return
	}

	resp, err := h.api.Login(c.Request.Context(), models.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		getLogger(c).Info("Login failed", zap.String("email", in.Email), zap.Error(err))
		h.loginFailed(c, in, statusFor(err), booking.Message("log in", err))
		return
	}

	middleware.RotateSession(c)
	session := middleware.CurrentSession(c)
	session.Login(resp.Token)
	if session.Email == "" {
		session.Email = in.Email
	}
	getLogger(c).Info("User logged in", zap.String("email", session.Email))

	if utils.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": resp.Message, "redirect": "/home"})
		return
	}
	session.Flash = resp.Message
	redirect(c, "/home")
}

func (h *AuthHandler) loginFailed(c *gin.Context, in loginInput, status int, msg string) {
	if utils.WantsJSON(c) {
		c.JSON(status, utils.ErrorResponse{Message: msg})
		return
	}
	render(c, status, "login.html", gin.H{"Title": "Log in", "Error": msg, "Email": in.Email})
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	render(c, http.StatusOK, "signup.html", gin.H{"Title": "Sign up", "MinPassword": models.MinPasswordLength})
}

// Signup validates the form locally before anything is sent to the backend.
func (h *AuthHandler) Signup(c *gin.Context) {
	var in signupInput
	fieldErrs, err := bind(c, &in)
	if err != nil {
		getLogger(c).Info("Unreadable signup request", zap.Error(err))
		h.signupFailed(c, in, http.StatusBadRequest, badInputMessage)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	msg := signupMessage(fieldErrs)
	if in.Name == "" || in.Email == "" {
		msg = "Please fill in all fields."
	}
	if msg != "" {
		h.signupFailed(c, in, http.StatusBadRequest, msg)
		return
	}

	err = h.api.Register(c.Request.Context(), models.SignupRequest{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		getLogger(c).Info("Signup failed", zap.String("email", in.Email), zap.Error(err))
		h.signupFailed(c, in, statusFor(err), booking.Message("create your account", err))
		return
	}

	msg = "Account created successfully. Please log in."
	if utils.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": msg, "redirect": "/login"})
		return
	}
	middleware.CurrentSession(c).Flash = msg
	redirect(c, "/login")
}

func (h *AuthHandler) signupFailed(c *gin.Context, in signupInput, status int, msg string) {
	if utils.WantsJSON(c) {
		c.JSON(status, utils.ErrorResponse{Message: msg})
		return
	}
	render(c, status, "signup.html", gin.H{
		"Title":       "Sign up",
		"Error":       msg,
		"Name":        in.Name,
		"Email":       in.Email,
		"MinPassword": models.MinPasswordLength,
	})
}

// Logout clears the token and any booking state tied to it.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.CurrentSession(c)
	session.Logout()
	if h.flows != nil {
		if err := h.flows.Clear(c.Request.Context(), session.ID); err != nil {
			getLogger(c).Warn("Failed to clear booking flow", zap.Error(err))
		}
	}
	session.Flash = "You have been logged out."
	redirect(c, "/login")
}

// signupMessage picks the sentence for the first rule the form broke. Empty
// fields are reported before anything else.
func signupMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return ""
	}
	for _, fe := range errs {
		if fe.Tag() == "required" {
			return "Please fill in all fields."
		}
	}
	switch fe := errs[0]; fe.Tag() {
	case "email":
		return "Please enter a valid email address."
	case "min":
		return fmt.Sprintf("Password must be at least %s characters long.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	default:
		return fmt.Sprintf("Please check the %s field.", strings.ToLower(fe.Field()))
	}
}
