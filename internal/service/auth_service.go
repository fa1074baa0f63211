package service

import (
	"errors"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"
	"github.com/clepigdo/Simig-Webapps/pkg/jwt"
	"github.com/clepigdo/Simig-Webapps/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrUsernameExists     = errors.New("username already exists")
)

type AuthService interface {
	Register(req *RegisterRequest) (*model.User, error)
	Login(username, password string) (*LoginResponse, error)
	Refresh(refreshToken string) (string, error)
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error
	UpdateProfileImage(userID uuid.UUID, image string) error
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"required"`
}

// LoginResponse mirrors what the frontend stores after a successful login.
type LoginResponse struct {
	Refresh  string    `json:"refresh"`
	Access   string    `json:"access"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	ID       uuid.UUID `json:"id"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Register creates a self-service account. The role is always "user";
// assigning the default profile image is an explicit step of this workflow.
func (s *authService) Register(req *RegisterRequest) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	existing, _ := s.userRepo.FindByUsername(req.Username)
	if existing != nil {
		return nil, ErrUsernameExists
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     model.RoleUser,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	user.ProfileImage = model.DefaultProfileImage

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := jwt.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Refresh:  pair.Refresh,
		Access:   pair.Access,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		ID:       user.ID,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *authService) Refresh(refreshToken string) (string, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", ErrUserNotFound
	}
	if !user.IsActive {
		return "", ErrUserInactive
	}

	pair, err := jwt.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return "", errors.New("failed to generate token")
	}
	return pair.Access, nil
}

func (s *authService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}

// UpdateProfile lets users edit their own account data. The role field is
// never touched here.
func (s *authService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Username != user.Username {
		existing, _ := s.userRepo.FindByUsername(req.Username)
		if existing != nil {
			return nil, ErrUsernameExists
		}
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FullName = req.FullName

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	response := user.ToResponse()
	return &response, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}

	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

func (s *authService) UpdateProfileImage(userID uuid.UUID, image string) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return ErrUserNotFound
	}
	return s.userRepo.UpdateProfileImage(userID, image)
}
