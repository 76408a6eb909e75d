package handler

import (
	"context"
	"fmt"
	"time"

	"payment-epayco/dto/model"
	"payment-epayco/pkg/response"
	"payment-epayco/repository"
	"payment-epayco/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	users    repository.UserRepository
	secret   string
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAuthHandler(users repository.UserRepository, secret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		secret:   secret,
		validate: service.NewValidator(),
		logger:   logger,
	}
}

// CheckPasswordHash compare password with hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (h *AuthHandler) generateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.secret))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Error on login request"})
	}

	user, err := h.users.FindByUsername(c.UserContext(), input.Username)
	if err != nil {
		h.logger.Error("Login lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Internal Server Error"})
	}
	if user == nil || !CheckPasswordHash(input.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid identity or password", "data": nil})
	}

	t, err := h.generateJWT(user)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	h.logger.Info("User logged in", zap.String("username", user.Username), zap.String("role", user.Role))
	return c.JSON(fiber.Map{"status": "success", "message": "Success login", "data": t})
}

func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var req model.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return response.ResponseError(c, validationError(err))
	}

	user, err := h.createUser(c.UserContext(), req)
	if err != nil {
		h.logger.Error("Create user failed", zap.String("username", req.Username), zap.Error(err))
		return response.Response(c, fiber.StatusInternalServerError, "Couldn't create user")
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) createUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("couldn't hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BootstrapAdmin creates the first superadmin when the user table is empty.
func (h *AuthHandler) BootstrapAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	n, err := h.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := h.createUser(ctx, model.CreateUserRequest{
		Username: username,
		Email:    username + "@localhost",
		Password: password,
		Role:     "superadmin",
	}); err != nil {
		return err
	}
	h.logger.Info("Bootstrap superadmin created", zap.String("username", username))
	return nil
}
