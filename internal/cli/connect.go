package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/ble"
	"github.com/SeamusWaldron/cubesim/internal/recorder"
	"github.com/SeamusWaldron/cubesim/internal/remote"
)

var connectRetries int

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Turn the puzzle with a GoCube smart cube",
	Long: `Scan for a GoCube over Bluetooth LE, connect, and apply every face
rotation of the physical cube to the simulated puzzle.

Rotations arriving while a turn is animating are dropped, like key presses.
A dropped rotation still turned the physical cube, so after the first one
the puzzle no longer mirrors it; connect warns when that happens.
Press Ctrl+C to disconnect.`,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().IntVar(&connectRetries, "retries", 3, "Scan attempts before giving up")
	rootCmd.AddCommand(connectCmd)
}

// turnPrinter prints every completed turn.
type turnPrinter struct {
	cubesim.NopObserver
}

func (turnPrinter) TurnCompleted(m cubesim.Move, src cubesim.Source, table cubesim.Table) {
	status := ""
	if table.IsSolved() {
		status = "  (solved)"
	}
	fmt.Printf("%-3s %s%s\n", m.Notation(), src, status)
}

// scanForCube scans up to attempts times, preferring the device used last.
func scanForCube(ctx context.Context, client *ble.Client, stateFile *recorder.StateFile, attempts int) (ble.Device, error) {
	var preferred string
	if last, ok := stateFile.LastDevice(); ok {
		preferred = last.ID
	}

	fmt.Printf("Scanning for %s devices...\n", cfg.BLE.DeviceName)

	for attempt := 1; attempt <= attempts; attempt++ {
		results, err := client.Scan(ctx, cfg.BLE.DeviceName, cfg.BLE.ScanTimeout)
		if err != nil {
			fmt.Printf("Scan %d failed: %v\n", attempt, err)
			continue
		}

		if chosen, ok := ble.Choose(results, preferred); ok {
			fmt.Printf("Found: %s (RSSI %d)\n", chosen.Name, chosen.RSSI)
			return chosen, nil
		}

		if ctx.Err() != nil {
			return ble.Device{}, ctx.Err()
		}
		if attempt < attempts {
			fmt.Printf("Scan %d: No devices found, retrying...\n", attempt)
		}
	}

	return ble.Device{}, ble.ErrDeviceNotFound
}

func runConnect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateFile, err := recorder.NewDefaultStateFile()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	client, err := ble.NewClient()
	if err != nil {
		return fmt.Errorf("BLE not available: %w", err)
	}

	result, err := scanForCube(ctx, client, stateFile, connectRetries)
	if err != nil {
		return err
	}

	sess, err := openSession("connect", logger, cubesim.WithObserver(turnPrinter{}))
	if err != nil {
		return err
	}
	defer sess.Close()

	bridge := remote.NewBridge(sess.puzzle, logger)
	if err := client.Connect(result, bridge); err != nil {
		return err
	}
	defer client.Disconnect()

	if err := client.DisableOrientation(); err != nil {
		logger.Warn("failed to disable orientation", "error", err)
	}

	if err := stateFile.SetLastDevice(recorder.DeviceRef{ID: result.ID, Name: result.Name}); err != nil {
		logger.Warn("failed to save state file", "error", err)
	}

	fmt.Printf("Connected to %s. Turn the cube; Ctrl+C to stop.\n", result.Name)

	err = sess.puzzle.Run(ctx, cfg.TickInterval)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := bridge.Stats()
	table := sess.puzzle.Table()
	fmt.Println()
	fmt.Printf("Rotations: %d accepted, %d dropped, %d invalid\n", stats.Accepted, stats.Dropped, stats.Invalid)
	if stats.OutOfSync {
		fmt.Println("Warning: dropped rotations were not applied; the puzzle no longer matches the cube.")
	}
	if stats.Battery >= 0 {
		fmt.Printf("Battery: %d%%\n", stats.Battery)
	}
	fmt.Printf("Solved: %v\n", table.IsSolved())
	if id := sess.SessionID(); id != "" {
		fmt.Printf("Session: %s\n", id)
	}
	return nil
}
