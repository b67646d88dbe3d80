package progression

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		playerID, _ := c.Locals("player_id").(string)
		if playerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "player identity required")
		}
		state, err := svc.State(c.Context(), playerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(state)
	})
}
