package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/toolmarketplace/server/internal/hash"
	"github.com/toolmarketplace/server/internal/logging"
	"github.com/toolmarketplace/server/internal/models"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

type registerUserRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: pwHash,
		Address:      req.Address,
		Description:  req.Description,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	logging.FromContext(c.Request().Context()).Info("user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) LoginUser(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := CreateToken(h.JWTSecret, user.ID, roleUser)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Password    string `json:"password"`
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	user.Address = req.Address
	user.Description = req.Description
	if req.Password != "" {
		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		user.PasswordHash = pwHash
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, user)
}

type registerToolsellerRequest struct {
	CompanyName        string `json:"company_name"`
	ContactPerson      string `json:"contact_person"`
	RegistrationNumber string `json:"registration_number"`
	Phone              string `json:"phone"`
	Description        string `json:"description"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Address            string `json:"address"`
	EstablishedYear    *int   `json:"established_year"`
}

func (h *AuthHandler) RegisterToolseller(c echo.Context) error {
	var req registerToolsellerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" || req.CompanyName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "company name, email and password required")
	}

	var existing models.Toolseller
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "toolseller with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	seller := models.Toolseller{
		CompanyName:        req.CompanyName,
		ContactPerson:      req.ContactPerson,
		RegistrationNumber: req.RegistrationNumber,
		Phone:              req.Phone,
		Description:        req.Description,
		Email:              req.Email,
		PasswordHash:       pwHash,
		Address:            req.Address,
		EstablishedYear:    req.EstablishedYear,
	}
	if err := h.DB.Create(&seller).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	logging.FromContext(c.Request().Context()).Info("toolseller registered", "toolseller_id", seller.ID)
	return c.JSON(http.StatusCreated, seller)
}

func (h *AuthHandler) LoginToolseller(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var seller models.Toolseller
	if err := h.DB.Where("email = ?", req.Email).First(&seller).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !hash.CheckPassword(seller.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := CreateToken(h.JWTSecret, seller.ID, roleToolseller)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "toolseller": seller})
}
