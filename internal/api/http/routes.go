package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-board/internal/dashboard"
	"github.com/i474232898/weather-board/internal/dataset"
	"github.com/i474232898/weather-board/internal/ordering"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *dashboard.Service, ds *dataset.Dataset) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "cities": ds.Len()})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/countries", func(c *fiber.Ctx) error {
		return c.JSON(ds.Options())
	})

	board := v1.Group("/board")

	board.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(service.Board())
	})

	board.Delete("/", func(c *fiber.Ctx) error {
		service.Reset()
		return c.JSON(service.Board())
	})

	board.Put("/countries", func(c *fiber.Ctx) error {
		var req countriesRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		if err := service.ChangeCountries(req.Codes); err != nil {
			return mapError(err)
		}
		return c.JSON(service.Board())
	})

	board.Post("/pins/:id", func(c *fiber.Ctx) error {
		if err := service.Pin(c.Params("id")); err != nil {
			return mapError(err)
		}
		return c.JSON(service.Board())
	})

	board.Delete("/pins/:id", func(c *fiber.Ctx) error {
		service.Unpin(c.Params("id"))
		return c.JSON(service.Board())
	})

	board.Post("/pins/:id/toggle", func(c *fiber.Ctx) error {
		if _, err := service.TogglePin(c.Params("id")); err != nil {
			return mapError(err)
		}
		return c.JSON(service.Board())
	})

	board.Put("/current", func(c *fiber.Ctx) error {
		var req currentRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		if err := service.SelectCurrent(req.ID); err != nil {
			return mapError(err)
		}
		return c.JSON(service.Board())
	})

	board.Delete("/current", func(c *fiber.Ctx) error {
		service.DeselectCurrent()
		return c.JSON(service.Board())
	})

	board.Post("/current/:id/toggle", func(c *fiber.Ctx) error {
		if _, err := service.ToggleCurrent(c.Params("id")); err != nil {
			return mapError(err)
		}
		return c.JSON(service.Board())
	})

	board.Post("/sort", func(c *fiber.Ctx) error {
		var req sortRequest
		if len(c.Body()) > 0 {
			if err := bindBody(c, &req); err != nil {
				return err
			}
		}

		var key *ordering.Key
		if req.Key != nil {
			k, err := ordering.ParseKey(*req.Key)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			key = &k
		}
		service.Sort(key)
		return c.JSON(service.Board())
	})

	board.Post("/refresh", func(c *fiber.Ctx) error {
		res := service.RunBatch(c.UserContext())
		return c.JSON(fiber.Map{
			"result": res,
			"board":  service.Board(),
		})
	})

	board.Get("/weekly", func(c *fiber.Ctx) error {
		return c.JSON(service.Weekly())
	})

	board.Post("/weekly/refresh", func(c *fiber.Ctx) error {
		service.RefreshWeekly(c.UserContext())
		return c.JSON(service.Weekly())
	})
}

type countriesRequest struct {
	Codes []string `json:"codes" validate:"dive,required,len=2,alpha"`
}

type currentRequest struct {
	ID string `json:"id" validate:"required"`
}

type sortRequest struct {
	Key *string `json:"key" validate:"omitempty,min=1"`
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrUnknownCity):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, dashboard.ErrUnknownCountry):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update board")
	}
}
