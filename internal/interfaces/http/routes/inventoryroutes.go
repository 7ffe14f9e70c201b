package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/interfaces/http/handlers"
	"github.com/storedesk/storedesk/internal/interfaces/http/middleware"
)

// InventoryRouteConfig holds dependencies for catalogue and sales routes.
type InventoryRouteConfig struct {
	InventoryHandler  *handlers.InventoryHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// TableCapabilities maps each catalogue table to the capabilities that may
// read and edit it.
var TableCapabilities = map[string][]string{
	inventory.TableProducts:   {"products", "purchase"},
	inventory.TableCategories: {"products", "purchase"},
	inventory.TableMembers:    {"members"},
	inventory.TableCoupons:    {"coupons"},
	inventory.TableSuppliers:  {"suppliers"},
}

var SalesCapabilities = []string{"sales", "reports"}

func SetupInventoryRoutes(api *gin.RouterGroup, cfg *InventoryRouteConfig) {
	h := cfg.InventoryHandler

	for _, table := range inventory.CatalogueTables() {
		records := api.Group("/data/"+table, cfg.SessionMiddleware.RequirePermission(TableCapabilities[table]...))
		{
			records.GET("", h.ListRecords(table))
			records.POST("", h.CreateRecord(table))
			records.GET("/:id", h.GetRecord(table))
			records.PUT("/:id", h.UpdateRecord(table))
			records.DELETE("/:id", h.DeleteRecord(table))
		}
	}

	sales := api.Group("/sales", cfg.SessionMiddleware.RequirePermission(SalesCapabilities...))
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.RecordSale)
		sales.GET("/:receipt", h.GetSale)
		sales.PUT("/:receipt", h.UpdateSale)
		sales.DELETE("/:receipt", h.DeleteSale)
	}
}
