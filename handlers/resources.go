package handlers

import (
	"net/http"

	"mindbloom/services/resources"
	"mindbloom/utils"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	catalog *resources.Catalog
}

func NewResourceHandler(catalog *resources.Catalog) *ResourceHandler {
	return &ResourceHandler{catalog: catalog}
}

// List serves one shelf, optionally filtered by ?symptom=.
func (h *ResourceHandler) List(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		symptom := c.Query("symptom")
		shelf, err := h.catalog.Shelf(kind, symptom)
		if err != nil {
			NotFound(c)
			return
		}
		if utils.WantsJSON(c) {
			c.JSON(http.StatusOK, shelf)
			return
		}
		render(c, http.StatusOK, "resources.html", gin.H{
			"Title":    shelf.Title,
			"Kind":     kind,
			"Shelf":    shelf,
			"Symptom":  symptom,
			"Symptoms": h.catalog.Symptoms(kind),
		})
	}
}
