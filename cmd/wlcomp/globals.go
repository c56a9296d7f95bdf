package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/platform"
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
	"github.com/spf13/cobra"
)

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "List the globals, screens and seats of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		display, err := wl.Dial()
		if err != nil {
			return fmt.Errorf("dial display: %w", err)
		}
		defer display.Close()
		display.Error = func(err *wire.ProtocolError) {
			debug.Error("server error", "err", err)
		}

		d, err := platform.New(display, nopWindowSystem{})
		if err != nil {
			return fmt.Errorf("bind globals: %w", err)
		}
		return printGlobals(cmd.OutOrStdout(), d)
	},
}

func printGlobals(w io.Writer, d *platform.Display) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINTERFACE\tVERSION")
	for _, g := range d.Globals() {
		fmt.Fprintf(tw, "%v\t%v\t%v\n", g.Name, g.Interface, g.Version)
	}
	err := tw.Flush()
	if err != nil {
		return err
	}

	for i, screen := range d.Screens() {
		fmt.Fprintf(w, "screen %v: %v %q %q rotation %v\n", i, screen.Geometry(), screen.Make(), screen.Model(), screen.Rotation())
	}
	for i, dev := range d.InputDevices() {
		fmt.Fprintf(w, "seat %v: capabilities %v\n", i, capabilityNames(dev.Capabilities()))
	}
	if ext := d.TouchExtension(); ext != nil {
		fmt.Fprintf(w, "touch extension: flags %#x\n", ext.Flags())
	}

	return nil
}

func capabilityNames(caps uint32) string {
	if caps == 0 {
		return "none"
	}

	var str string
	for _, c := range []struct {
		bit  uint32
		name string
	}{
		{protocol.SeatCapabilityPointer, "pointer"},
		{protocol.SeatCapabilityKeyboard, "keyboard"},
		{protocol.SeatCapabilityTouch, "touch"},
	} {
		if caps&c.bit == 0 {
			continue
		}
		if str != "" {
			str += "+"
		}
		str += c.name
	}
	return str
}

// nopWindowSystem drops input. The globals command has no windows for
// it to arrive at.
type nopWindowSystem struct{}

func (nopWindowSystem) MouseEnter(platform.Window)       {}
func (nopWindowSystem) MouseLeave(platform.Window)       {}
func (nopWindowSystem) Mouse(platform.MouseEvent)        {}
func (nopWindowSystem) Wheel(platform.WheelEvent)        {}
func (nopWindowSystem) Key(platform.KeyEvent)            {}
func (nopWindowSystem) Touch(platform.TouchEvent)        {}
func (nopWindowSystem) TouchCancel(platform.TouchSource) {}
func (nopWindowSystem) WindowActivated(platform.Window)  {}
