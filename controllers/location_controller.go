package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manivpc/manivpc-api/services"
)

// ListCities handles GET /api/v1/locations/cities - city name suggestions
func ListCities(c *gin.Context) {
	cities, err := services.GetLocationService().SearchCities(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   gin.H{"code": "LOCATION_UPSTREAM_ERROR", "message": "City lookup is unavailable"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": cities})
}

// ListStreets handles GET /api/v1/locations/streets - street suggestions within a city
func ListStreets(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "city query parameter is required"},
		})
		return
	}

	streets, err := services.GetLocationService().SearchStreets(c.Request.Context(), c.Query("q"), city)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   gin.H{"code": "LOCATION_UPSTREAM_ERROR", "message": "Street lookup is unavailable"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": streets})
}

// GeocodeAddress handles GET /api/v1/locations/geocode - resolve an address to coordinates
func GeocodeAddress(c *gin.Context) {
	address := c.Query("address")
	city := c.Query("city")
	if address == "" || city == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "address and city query parameters are required"},
		})
		return
	}

	coords, err := services.GetLocationService().Geocode(c.Request.Context(), address, city)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ADDRESS_NOT_FOUND", "message": "Address could not be resolved"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": coords})
}
