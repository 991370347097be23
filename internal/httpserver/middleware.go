package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	roleUser       = "user"
	roleToolseller = "toolseller"

	tokenTTL = 24 * time.Hour
)

func CreateToken(secret []byte, id uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  float64(id),
		"role": role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(tokenString string, secret []byte) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", errors.New("invalid subject claim")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return 0, "", errors.New("invalid role claim")
	}
	return uint(sub), role, nil
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireRole authenticates the bearer token and stores the subject id in
// the echo context under "user_id" or "toolseller_id" depending on role.
func RequireRole(secret []byte, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c)
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			id, tokenRole, err := parseToken(tokenString, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			if tokenRole != role {
				return echo.NewHTTPError(http.StatusForbidden, "wrong role")
			}

			switch role {
			case roleUser:
				c.Set("user_id", id)
			case roleToolseller:
				c.Set("toolseller_id", id)
			}
			return next(c)
		}
	}
}

// RequireAny authenticates either party and stores whichever id applies.
func RequireAny(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c)
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			id, tokenRole, err := parseToken(tokenString, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			switch tokenRole {
			case roleUser:
				c.Set("user_id", id)
			case roleToolseller:
				c.Set("toolseller_id", id)
			default:
				return echo.NewHTTPError(http.StatusForbidden, "wrong role")
			}
			return next(c)
		}
	}
}

func userID(c echo.Context) (uint, error) {
	id, ok := c.Get("user_id").(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func toolsellerID(c echo.Context) (uint, error) {
	id, ok := c.Get("toolseller_id").(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
