package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tourbooking/auth-service/internal/core/domain"
	"github.com/tourbooking/auth-service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type registerRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
}

// RegisterBooker creates a customer account.
//
// @Summary      Register a booker
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /api/user/register-booker [post]
func (h *UserHandler) RegisterBooker(c echo.Context) error {
	return h.register(c, domain.RoleBooker)
}

// RegisterEmployee creates a staff account. Admin only.
//
// @Summary      Register an employee
// @Tags         user
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /api/user/register-employee [post]
func (h *UserHandler) RegisterEmployee(c echo.Context) error {
	return h.register(c, domain.RoleEmployee)
}

// RegisterAdmin creates an administrator account. Admin only.
//
// @Summary      Register an admin
// @Tags         user
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /api/user/register-admin [post]
func (h *UserHandler) RegisterAdmin(c echo.Context) error {
	return h.register(c, domain.RoleAdmin)
}

func (h *UserHandler) register(c echo.Context, role domain.RoleName) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.userService.Register(c.Request().Context(), ports.RegistrationInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	}, role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Success(account))
}
