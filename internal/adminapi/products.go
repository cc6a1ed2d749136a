package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/repository"
)

// registerResourceRoutes registers read-only resource endpoints under /crm.
// Lists accept ?sort=name,-price with the same keys as the order_by payload.
func registerResourceRoutes(g *echo.Group, store repository.Store) {
	g.GET("/crm/customers", func(c echo.Context) error {
		rows, err := crm.ListCustomers(c.Request().Context(), store, sortKeys(c))
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, rows)
	})
	g.GET("/crm/customers/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
		}
		customer, err := store.Customers().GetByID(c.Request().Context(), id)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, customer)
	})
	g.GET("/crm/products", func(c echo.Context) error {
		rows, err := crm.ListProducts(c.Request().Context(), store, sortKeys(c))
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, rows)
	})
	g.GET("/crm/products/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
		}
		rows, err := store.Products().FindByIDs(c.Request().Context(), []int64{id})
		if err != nil {
			return failErr(c, err)
		}
		if len(rows) == 0 {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
		}
		return ok(c, rows[0])
	})
	g.GET("/crm/orders", func(c echo.Context) error {
		rows, err := crm.ListOrders(c.Request().Context(), store, sortKeys(c))
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, rows)
	})
	g.GET("/crm/report", func(c echo.Context) error {
		report, err := crm.GenerateReport(c.Request().Context(), store)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, report)
	})
}

func sortKeys(c echo.Context) []string {
	raw := strings.TrimSpace(c.QueryParam("sort"))
	if raw == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
