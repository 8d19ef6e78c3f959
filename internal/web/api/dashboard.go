package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energydash/internal/models"
	webModels "energydash/internal/web/models"
)

// Dashboard is the controller surface the API needs
type Dashboard interface {
	Snapshot() models.Snapshot
	Devices() []models.Device
	Device(id string) (models.Device, bool)
	Stats() models.DashboardStats
	ToggleDevice(id string) (models.Snapshot, bool)
	SelectDevice(id string) models.Snapshot
	Subscribe() (<-chan models.Snapshot, func())
}

func RegisterDashboardRoutes(r *gin.Engine, dash Dashboard) {
	api := r.Group("/api")
	{
		api.GET("/dashboard", func(c *gin.Context) {
			respondOK(c, dash.Snapshot(), "")
		})

		api.GET("/stats", func(c *gin.Context) {
			respondOK(c, dash.Stats(), "")
		})

		api.GET("/selection", func(c *gin.Context) {
			respondOK(c, selection(dash.Snapshot()), "")
		})

		api.PUT("/selection", func(c *gin.Context) {
			var req webModels.SelectionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "Invalid request", err.Error())
				return
			}
			id := ""
			if req.DeviceID != nil {
				id = *req.DeviceID
			}
			snap := dash.SelectDevice(id)
			msg := ""
			if id != "" && snap.SelectedDeviceID == nil {
				msg = "No device with that id, selection cleared"
			}
			respondOK(c, selection(snap), msg)
		})
	}
}

func selection(snap models.Snapshot) webModels.SelectionResponse {
	resp := webModels.SelectionResponse{SelectedDeviceID: snap.SelectedDeviceID}
	if d, ok := snap.SelectedDevice(); ok {
		resp.Device = &d
	}
	return resp
}
