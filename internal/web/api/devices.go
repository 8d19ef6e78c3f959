package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.Engine, dash Dashboard) {
	devices := r.Group("/api/devices")
	{
		devices.GET("", func(c *gin.Context) {
			respondOK(c, dash.Devices(), "")
		})

		devices.GET("/:id", func(c *gin.Context) {
			id := c.Param("id")
			device, ok := dash.Device(id)
			if !ok {
				respondError(c, http.StatusNotFound, "Device not found", id)
				return
			}
			respondOK(c, device, "")
		})

		// An unknown id is not an error; the collection is returned unchanged.
		devices.POST("/:id/toggle", func(c *gin.Context) {
			snap, found := dash.ToggleDevice(c.Param("id"))
			msg := "Device toggled"
			if !found {
				msg = "No device with that id, nothing changed"
			}
			respondOK(c, snap, msg)
		})
	}
}
