package handler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clepigdo/Simig-Webapps/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	uploadDir   string
}

func NewAuthHandler(authService service.AuthService, uploadDir string) *AuthHandler {
	return &AuthHandler{authService: authService, uploadDir: uploadDir}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles self-service signup
// POST /api/users/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(user.ToResponse())
}

// Login handles user authentication
// POST /api/users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are required"})
	}

	response, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(response)
}

// RefreshToken exchanges a refresh token for a fresh access token
// POST /api/users/token/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Refresh == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Refresh token is required"})
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"access": access})
}

// Me returns the authenticated caller's profile
// GET /api/users/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	profile, err := h.authService.GetProfile(userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(profile)
}

// GetProfile is an alias of Me under the profile path
// GET /api/users/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	return h.Me(c)
}

// UpdateProfile edits the caller's own account data (role excluded)
// PUT /api/users/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	// Role changes are rejected here outright; admins use /users/manage
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if _, hasRole := raw["role"]; hasRole {
		return c.Status(403).JSON(fiber.Map{"error": "Changing your own role is not allowed"})
	}

	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	profile, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(profile)
}

// ChangePassword verifies the old password before setting the new one
// PUT /api/users/profile/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.authService.ChangePassword(userID, &req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// UploadProfileImage stores the uploaded file and records its name
// PUT /api/users/profile/upload-image
func (h *AuthHandler) UploadProfileImage(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Image file is required"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return c.Status(400).JSON(fiber.Map{"error": "Only PNG and JPEG images are accepted"})
	}

	filename := fmt.Sprintf("%s%s", userID.String(), ext)
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to store image"})
	}

	if err := h.authService.UpdateProfileImage(userID, filename); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"image_url": "/uploads/" + filename})
}
