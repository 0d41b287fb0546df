package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/importer"
)

type importApi struct {
	conf *core.Config
	svc  importer.ServiceInterface
}

func registerImportAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	svc importer.ServiceInterface,
) {
	api := importApi{
		conf: conf,
		svc:  svc,
	}

	g.POST("/users/import", api.importUsers, jwt)
}

// importUsers runs one bulk provisioning batch for the authenticated caller.
func (api *importApi) importUsers(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var req importer.Request
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to Request")
	}

	cctx, cancel := context.WithTimeout(ctx.Request().Context(), api.conf.Server.ImportTimeout)
	defer cancel()

	if err := api.svc.Authorize(cctx, claims.Subject); err != nil {
		if errors.Cause(err) == importer.ErrForbidden {
			return errHttpForbidden
		}
		return errors.Wrap(err, "authorizing import")
	}

	report, err := api.svc.Run(cctx, &req)
	if err != nil {
		switch errors.Cause(err) {
		case importer.ErrNoRows:
			return core.NewValidationError(errors.New("No rows provided"))
		case importer.ErrTooManyRows:
			return core.NewValidationError(errors.New("Too many rows"))
		}
		return errors.Wrap(err, "running import")
	}

	return ctx.JSON(http.StatusOK, report)
}
