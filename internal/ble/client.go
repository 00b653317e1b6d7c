// Package ble connects to GoCube smart cubes over Bluetooth LE.
package ble

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"tinygo.org/x/bluetooth"

	"github.com/SeamusWaldron/cubesim/internal/protocol"
)

// Errors
var (
	ErrNotConnected           = errors.New("ble: not connected to device")
	ErrAlreadyConnected       = errors.New("ble: already connected to a device")
	ErrDeviceNotFound         = errors.New("ble: device not found")
	ErrServiceNotFound        = errors.New("ble: GoCube service not found")
	ErrCharacteristicNotFound = errors.New("ble: GoCube characteristic not found")
)

var (
	serviceUUID = bluetooth.NewUUID(uuid.MustParse(protocol.ServiceUUID))
	txCharUUID  = bluetooth.NewUUID(uuid.MustParse(protocol.TxCharUUID))
	rxCharUUID  = bluetooth.NewUUID(uuid.MustParse(protocol.RxCharUUID))
)

// Handler receives notifications from the cube. *remote.Bridge satisfies it.
type Handler interface {
	HandleMessage(*protocol.Message)
	HandleError(error)
}

// Device is a cube seen during a scan.
type Device struct {
	Name    string
	ID      string // address as text, stable across runs
	RSSI    int16
	Address bluetooth.Address
}

// Choose picks the device to connect to: the one whose ID is preferred if it
// was seen, otherwise the first, which after a scan is the strongest signal.
func Choose(devices []Device, preferred string) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	if preferred != "" {
		for _, d := range devices {
			if d.ID == preferred {
				return d, true
			}
		}
	}
	return devices[0], true
}

// matchName reports whether an advertised name starts with prefix, ignoring
// case. Unnamed advertisements never match.
func matchName(name, prefix string) bool {
	return name != "" && strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix))
}

// byStrength orders devices strongest signal first, then by ID.
func byStrength(seen map[string]Device) []Device {
	out := make([]Device, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RSSI != out[j].RSSI {
			return out[i].RSSI > out[j].RSSI
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// link is an open connection.
type link struct {
	device bluetooth.Device
	rx     bluetooth.DeviceCharacteristic
}

// write sends a frame, falling back to an acknowledged write when the
// characteristic refuses write-without-response.
func (l *link) write(frame []byte) error {
	if _, err := l.rx.WriteWithoutResponse(frame); err == nil {
		return nil
	}
	_, err := l.rx.Write(frame)
	return err
}

// Client scans for and talks to one GoCube at a time.
type Client struct {
	adapter *bluetooth.Adapter

	mu   sync.Mutex
	link *link
}

// NewClient enables the default adapter.
func NewClient() (*Client, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w", err)
	}
	return &Client{adapter: adapter}, nil
}

// Scan listens for advertisements for up to timeout and returns devices
// whose name starts with prefix, strongest first.
func (c *Client) Scan(ctx context.Context, prefix string, timeout time.Duration) ([]Device, error) {
	c.mu.Lock()
	busy := c.link != nil
	c.mu.Unlock()
	if busy {
		return nil, ErrAlreadyConnected
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]Device)

	errc := make(chan error, 1)
	go func() {
		errc <- c.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
			name := r.LocalName()
			if !matchName(name, prefix) {
				return
			}
			d := Device{Name: name, ID: r.Address.String(), RSSI: r.RSSI, Address: r.Address}
			mu.Lock()
			seen[d.ID] = d
			mu.Unlock()
		})
	}()

	var err error
	select {
	case <-ctx.Done():
		c.adapter.StopScan()
		err = <-errc
	case err = <-errc:
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return byStrength(seen), nil
}

// Connect opens d, sends its notifications to h and asks for the battery
// level.
func (c *Client) Connect(d Device, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.link != nil {
		return ErrAlreadyConnected
	}

	device, err := c.adapter.Connect(d.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", d.Name, err)
	}

	l, err := subscribe(device, h)
	if err != nil {
		device.Disconnect()
		return err
	}
	c.link = l

	if err := l.write(protocol.BuildCommand(protocol.CmdRequestBattery)); err != nil {
		return fmt.Errorf("failed to request battery: %w", err)
	}
	return nil
}

func subscribe(device bluetooth.Device, h Handler) (*link, error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		return nil, fmt.Errorf("failed to discover services: %w", err)
	}
	if len(services) == 0 {
		return nil, ErrServiceNotFound
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{txCharUUID, rxCharUUID})
	if err != nil {
		return nil, fmt.Errorf("failed to discover characteristics: %w", err)
	}

	l := &link{device: device}
	var tx *bluetooth.DeviceCharacteristic
	var haveRx bool
	for i := range chars {
		switch chars[i].UUID() {
		case txCharUUID:
			tx = &chars[i]
		case rxCharUUID:
			l.rx = chars[i]
			haveRx = true
		}
	}
	if tx == nil || !haveRx {
		return nil, ErrCharacteristicNotFound
	}

	notify := func(data []byte) { dispatch(h, data) }
	if err := tx.EnableNotifications(notify); err != nil {
		return nil, fmt.Errorf("failed to enable notifications: %w", err)
	}
	return l, nil
}

// Disconnect closes the connection. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.link == nil {
		return nil
	}
	err := c.link.device.Disconnect()
	c.link = nil
	return err
}

// DisableOrientation stops orientation notifications, which the remote
// bridge does not use.
func (c *Client) DisableOrientation() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.link == nil {
		return ErrNotConnected
	}
	return c.link.write(protocol.BuildCommand(protocol.CmdDisableOrientation))
}

// dispatch parses one notification and hands it to h.
func dispatch(h Handler, data []byte) {
	if h == nil {
		return
	}
	msg, err := protocol.Parse(data)
	if err != nil {
		h.HandleError(err)
		return
	}
	h.HandleMessage(msg)
}
