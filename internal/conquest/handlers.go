package conquest

import (
	"context"

	"backend-territorio/internal/activity"
	"backend-territorio/internal/shared/geo"
	"backend-territorio/internal/territory"

	"github.com/gofiber/fiber/v2"
)

// CandidateSource looks up the territories a path could be contesting.
// *territory.Service satisfies it.
type CandidateSource interface {
	CandidatesForPath(ctx context.Context, path []geo.Coordinate) ([]territory.Territory, error)
}

type evaluateRequest struct {
	Path []geo.Coordinate `json:"path"`
	Mode activity.Mode    `json:"mode"`
}

func RegisterRoutes(r fiber.Router, svc *Service, candidates CandidateSource, authMiddleware fiber.Handler) {
	r.Post("/evaluate", authMiddleware, func(c *fiber.Ctx) error {
		var req evaluateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(req.Path) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "path with at least 2 points required")
		}
		if !req.Mode.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "mode must be running or cycling")
		}

		playerID, _ := c.Locals("player_id").(string)
		if playerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "player identity required")
		}
		playerName, _ := c.Locals("player_name").(string)

		found, err := candidates.CandidatesForPath(c.Context(), req.Path)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		result := svc.EvaluateActivity(c.Context(), req.Path, req.Mode, playerID, playerName, found)
		return c.JSON(result)
	})
}
