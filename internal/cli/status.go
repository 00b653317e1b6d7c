package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubesim/internal/ble"
	"github.com/SeamusWaldron/cubesim/internal/storage"
)

var statusScan bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, recorded sessions and cube information",
	Long: `Display the config and database in use, recording statistics, the last
session and the last connected cube. With --scan, also look for nearby
GoCube devices.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusScan, "scan", false, "Scan for GoCube devices")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("cubesim Status")
	fmt.Println("==============")
	fmt.Println()

	fmt.Printf("Config:   %s\n", configPath)
	fmt.Printf("Turn:     %d frames at %s per tick\n", cfg.FramesPerTurn, cfg.TickInterval)
	fmt.Printf("Record:   %v\n", cfg.Record)

	db, stateFile, err := openDB()
	if err != nil {
		fmt.Printf("Database: unavailable (%v)\n", err)
		return nil
	}
	defer db.Close()

	version, _ := db.CurrentVersion()
	fmt.Printf("Database: %s (schema v%d)\n", db.Path(), version)

	sessions, err := storage.NewSessionRepository(db).List(10000)
	if err == nil {
		fmt.Printf("Sessions: %d\n", len(sessions))
		if len(sessions) > 0 {
			last := sessions[0]
			fmt.Printf("Last:     %s %s, %d moves, solved %s\n",
				last.SessionID[:8], last.StartedAt.Local().Format(time.RFC3339), last.MoveCount, formatSolved(last.Solved))
		}
	}

	fmt.Println()

	if d, ok := stateFile.LastDevice(); ok {
		fmt.Printf("Last device: %s (%s)\n", d.Name, d.ID)
	} else {
		fmt.Println("No device history")
	}

	if !statusScan {
		return nil
	}

	fmt.Println()

	client, err := ble.NewClient()
	if err != nil {
		fmt.Printf("BLE not available: %v\n", err)
		return nil
	}

	results, err := client.Scan(cmd.Context(), cfg.BLE.DeviceName, 5*time.Second)
	if err != nil {
		fmt.Printf("Scan error: %v\n", err)
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No GoCube devices found")
		fmt.Println()
		fmt.Println("Tips:")
		fmt.Println("  - Ensure your GoCube is powered on")
		fmt.Println("  - Move the cube to wake it up")
		fmt.Println("  - Check that Bluetooth is enabled")
	} else {
		fmt.Printf("Found %d device(s):\n", len(results))
		for _, r := range results {
			fmt.Printf("  - %s (ID: %s, RSSI: %d)\n", r.Name, r.ID, r.RSSI)
		}
	}

	return nil
}
