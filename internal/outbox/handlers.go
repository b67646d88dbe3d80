package outbox

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, q *Queue) {
	r.Get("/status", func(c *fiber.Ctx) error {
		pending, err := q.PendingCount(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"online":  q.Online(),
			"pending": pending,
		})
	})

	r.Post("/online", func(c *fiber.Ctx) error {
		var req struct {
			Online bool `json:"online"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		q.SetOnline(req.Online)

		drained := 0
		if req.Online {
			var err error
			drained, err = q.Drain(c.Context())
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(fiber.Map{"online": q.Online(), "drained": drained})
	})

	r.Post("/drain", func(c *fiber.Ctx) error {
		drained, err := q.Drain(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		pending, err := q.PendingCount(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"drained": drained, "pending": pending})
	})
}
