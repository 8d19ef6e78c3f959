package view

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"energydash/internal/models"
)

// ChartHeight is the pixel height of a bar at the chart's peak power
const ChartHeight = 200.0

//go:embed templates/*.html
var templateFS embed.FS

// Dashboard is what the HTML view reads and changes
type Dashboard interface {
	Snapshot() models.Snapshot
	ToggleDevice(id string) (models.Snapshot, bool)
	SelectDevice(id string) models.Snapshot
}

// Bar is one column of the 24 h power chart
type Bar struct {
	Height float64
	Power  float64
}

// ChartBars scales readings so the largest power fills ChartHeight. The
// peak is floored at 1 W so an all-zero history draws flat.
func ChartBars(readings []models.EnergyReading) []Bar {
	peak := 1.0
	for _, r := range readings {
		peak = math.Max(peak, r.Power)
	}
	bars := make([]Bar, len(readings))
	for i, r := range readings {
		bars[i] = Bar{Height: r.Power / peak * ChartHeight, Power: r.Power}
	}
	return bars
}

type page struct {
	Snapshot models.Snapshot
	Selected *models.Device
	Bars     []Bar
}

var funcs = template.FuncMap{
	"watts": func(v float64) string { return fmt.Sprintf("%.0f W", v) },
	"kwh":   func(v float64) string { return fmt.Sprintf("%.2f kWh", v) },
	"one":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"icon": func(t models.DeviceType) string {
		switch t {
		case models.DeviceTypeAppliance:
			return "🔌"
		case models.DeviceTypeLight:
			return "💡"
		case models.DeviceTypeHVAC:
			return "❄️"
		}
		return "⚙️"
	},
	"isSelected": func(snap models.Snapshot, id string) bool {
		return snap.SelectedDeviceID != nil && *snap.SelectedDeviceID == id
	},
}

// Templates parses the embedded view templates
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

func RegisterDashboardRoutes(router *gin.Engine, dash Dashboard) {
	router.SetHTMLTemplate(template.Must(Templates()))

	router.GET("/", func(c *gin.Context) {
		var snap models.Snapshot
		if id, ok := c.GetQuery("device"); ok {
			snap = dash.SelectDevice(id)
		} else {
			snap = dash.Snapshot()
		}

		p := page{Snapshot: snap}
		if d, ok := snap.SelectedDevice(); ok {
			p.Selected = &d
			p.Bars = ChartBars(d.Readings)
		}
		c.HTML(http.StatusOK, "dashboard.html", p)
	})

	router.POST("/devices/:id/toggle", func(c *gin.Context) {
		dash.ToggleDevice(c.Param("id"))
		target := "/"
		if snap := dash.Snapshot(); snap.SelectedDeviceID != nil {
			target = "/?device=" + url.QueryEscape(*snap.SelectedDeviceID)
		}
		c.Redirect(http.StatusSeeOther, target)
	})
}
