package handler

import (
	"net/http"
	"strconv"

	"rushivan/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		//500の中身は返さない
		if he.Status >= http.StatusInternalServerError {
			return c.JSON(he.Status, ErrorResponse{Error: he.Message})
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Fields: he.Fields})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// JSONが壊れている場合も422
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewValidationError("invalid body", nil)
	}
	return c.Validate(req)
}

func parseIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewValidationError("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}
