package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenMemberID verified member id, set c.locals name
	TokenMemberID = "MemberID"
)

// Verifier turns a raw credential into a member id
type Verifier func(rawCredential string) (string, error)

// ExtractToken find the credential in query, cookie, then Authorization header
func ExtractToken(c *fiber.Ctx) string {
	if tokenStr := c.Query(QueryToken); tokenStr != "" {
		return tokenStr
	}
	if tokenStr := c.Cookies(CookieToken); tokenStr != "" {
		return tokenStr
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// JWTMiddleware rejects the request before any handler runs unless verify accepts its credential
func JWTMiddleware(verify Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		memberID, err := verify(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenMemberID, memberID)
		return c.Next()
	}
}

// MemberID read the member id stored by JWTMiddleware
func MemberID(c *fiber.Ctx) string {
	memberID, _ := c.Locals(TokenMemberID).(string)
	return memberID
}
