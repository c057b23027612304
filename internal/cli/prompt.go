package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"voicekey/internal/record"
)

// printDevices lists devices numbered from 1.
func printDevices(out io.Writer, devices []record.DeviceInfo) {
	for i, d := range devices {
		mark := ""
		if d.IsDefault {
			mark = " (default)"
		}
		fmt.Fprintf(out, "  [%d] %s%s - %d ch, %.0f Hz\n", i+1, d.Name, mark, d.MaxInputChannels, d.DefaultSampleRate)
	}
}

// promptDevice asks for a 1-based device number until a valid one is
// entered and returns its 0-based index.
func promptDevice(in io.Reader, out io.Writer, devices []record.DeviceInfo) (int, error) {
	if len(devices) == 0 {
		return 0, errors.New("no input devices found")
	}
	fmt.Fprintln(out, "\nAvailable microphones:")
	printDevices(out, devices)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "\nSelect microphone (1-%d): ", len(devices))
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err == nil && n >= 1 && n <= len(devices) {
			fmt.Fprintf(out, "Selected: %s\n", devices[n-1].Name)
			return n - 1, nil
		}
		fmt.Fprintln(out, "Invalid selection. Please try again.")
	}
}
