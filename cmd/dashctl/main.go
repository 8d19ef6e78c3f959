package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"energydash/internal/apiclient"
	"energydash/internal/config"
	"energydash/internal/models"
	webModels "energydash/internal/web/models"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: dashctl [-url URL] <command>

Commands:
  stats          print dashboard totals
  devices        list devices
  toggle <id>    switch a device on or off
  select <id|->  select a device, "-" clears the selection
  watch          print totals every second until interrupted
`)
	flag.PrintDefaults()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	baseURL := flag.String("url", cfg.APIBaseURL, "dashboard API base URL")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	client, err := apiclient.New(*baseURL)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, client, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *apiclient.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}
	switch args[0] {
	case "stats":
		stats, err := apiclient.GetData[models.DashboardStats](ctx, client, "/api/stats")
		if err != nil {
			return err
		}
		printStats(out, stats)

	case "devices":
		devices, err := apiclient.GetData[[]models.Device](ctx, client, "/api/devices")
		if err != nil {
			return err
		}
		printDevices(out, devices)

	case "toggle":
		if len(args) != 2 {
			return fmt.Errorf("toggle needs a device id")
		}
		env, err := client.Post(ctx, "/api/devices/"+url.PathEscape(args[1])+"/toggle", nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, env.Message)

	case "select":
		if len(args) != 2 {
			return fmt.Errorf("select needs a device id or -")
		}
		req := webModels.SelectionRequest{}
		if args[1] != "-" {
			req.DeviceID = &args[1]
		}
		sel, err := apiclient.PutData[webModels.SelectionResponse](ctx, client, "/api/selection", req)
		if err != nil {
			return err
		}
		if sel.Device == nil {
			fmt.Fprintln(out, "selection cleared")
		} else {
			fmt.Fprintf(out, "selected %s (%s)\n", sel.Device.Name, sel.Device.ID)
		}

	case "watch":
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			stats, err := apiclient.GetData[models.DashboardStats](ctx, client, "/api/stats")
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			fmt.Fprintf(out, "%s  power %.1f W  energy %.3f kWh  active %d  avg %.1f W\n",
				time.Now().Format("15:04:05"), stats.TotalPower, stats.TotalEnergy,
				stats.ActiveDevices, stats.AverageConsumption)
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func printStats(out io.Writer, s models.DashboardStats) {
	fmt.Fprintf(out, "Total Power:       %.1f W\n", s.TotalPower)
	fmt.Fprintf(out, "Total Energy:      %.2f kWh\n", s.TotalEnergy)
	fmt.Fprintf(out, "Active Devices:    %d\n", s.ActiveDevices)
	fmt.Fprintf(out, "Avg Consumption:   %.1f W\n", s.AverageConsumption)
}

func printDevices(out io.Writer, devices []models.Device) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tTYPE\tSTATE\tPOWER\tENERGY")
	for _, d := range devices {
		state := "off"
		if d.IsActive {
			state = "on"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.0f W\t%.2f kWh\n",
			d.ID, d.Name, d.Location, d.Type, state, d.CurrentPower, d.TotalEnergy)
	}
	tw.Flush()
}
