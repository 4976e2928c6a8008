package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// NewCORS builds the CORS middleware from a comma-separated origin list.
// Credentials are only allowed with an explicit origin list, never with "*".
func NewCORS(origins string) fiber.Handler {
	list := strings.Split(origins, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}

	allowCredentials := true
	for _, o := range list {
		if o == "*" {
			allowCredentials = false
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     list,
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: allowCredentials,
	})
}
