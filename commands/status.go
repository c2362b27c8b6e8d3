package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/presencewatch/presencewatch/internal/config"
	"github.com/presencewatch/presencewatch/internal/core/status"
	"github.com/presencewatch/presencewatch/internal/data/logfile"
	"github.com/presencewatch/presencewatch/internal/util"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the newest log file once and print the current status",
	Long:  `Locates the newest log file, runs a full scan, and prints the resolved status without touching the hub.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false,
		"Print the status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	initLogging(cfg)
	defer util.CloseLogger()

	locator := logfile.NewLocator(cfg.Source.LogDir, cfg.Source.FilePrefix)
	active, err := locator.Locate()
	if err != nil {
		return err
	}

	lines, err := logfile.ReadAllLines(active.Path)
	if err != nil {
		return err
	}

	extractor := status.NewExtractor()
	tracker := status.NewTracker()
	snap, _ := tracker.ApplyFullScan(extractor.ExtractAll(lines))

	if statusJSON {
		return printStatusJSON(active, snap, cfg)
	}
	printStatusTable(active, snap, cfg)
	return nil
}

func printStatusJSON(active logfile.LogFile, snap status.Snapshot, cfg *config.Config) error {
	out := struct {
		LogFile           string `json:"log_file"`
		Availability      string `json:"availability"`
		NotificationCount string `json:"notification_count"`
		CallStatus        string `json:"call_status"`
		HubState          string `json:"hub_state"`
	}{
		LogFile:           active.Path,
		Availability:      snap.Availability,
		NotificationCount: snap.NotificationCount,
		CallStatus:        snap.CallStatus,
		HubState:          mappedLabel(snap, cfg),
	}
	data, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func printStatusTable(active logfile.LogFile, snap status.Snapshot, cfg *config.Config) {
	rows := [][2]string{
		{"Log file", active.Path},
		{"Created", active.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Availability", snap.Availability},
		{"Notifications", snap.NotificationCount},
		{"Call status", snap.CallStatus},
		{"Hub state", mappedLabel(snap, cfg)},
	}

	width := 0
	for _, row := range rows {
		if w := util.GetDisplayWidth(row[0]); w > width {
			width = w
		}
	}
	for _, row := range rows {
		fmt.Printf("%s  %s\n", util.Colorize(util.ColorBold, util.PadRight(row[0], width)), row[1])
	}
}

// mappedLabel resolves the hub-facing label the notifier would send.
func mappedLabel(snap status.Snapshot, cfg *config.Config) string {
	if label, ok := cfg.Labels[strings.ToLower(snap.Availability)]; ok {
		return label
	}
	return status.Unknown
}
