package wifi

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// AccessPoint is a network seen by a scan.
type AccessPoint struct {
	BSSID  string
	SSID   string
	Signal float64 // dBm
}

// Name is the SSID, or the BSSID of a hidden network.
func (ap AccessPoint) Name() string {
	if ap.SSID == "" {
		return ap.BSSID
	}
	return ap.SSID
}

// Scanner lists the access points in range.
type Scanner interface {
	Scan() ([]AccessPoint, error)
}

// IWScanner scans with the iw(8) utility, which needs CAP_NET_ADMIN.
type IWScanner struct {
	Interface string

	// Command defaults to "iw".
	Command string

	// Timeout bounds a single scan, zero means 30 seconds.
	Timeout time.Duration
}

func (s *IWScanner) String() string {
	return "iw scan on " + s.Interface
}

// Scan runs "iw dev <interface> scan" and parses its output.
func (s *IWScanner) Scan() ([]AccessPoint, error) {
	command := s.Command
	if command == "" {
		command = "iw"
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "dev", s.Interface, "scan")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("wifi: %s: %w: %s", s, err, strings.TrimSpace(stderr.String()))
	}
	return ParseIW(bytes.NewReader(out))
}

// ParseIW parses the output of "iw dev <interface> scan".
func ParseIW(r io.Reader) ([]AccessPoint, error) {
	var (
		aps     []AccessPoint
		current *AccessPoint
		scanner = bufio.NewScanner(r)
	)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "BSS ") {
			bssid := strings.TrimPrefix(line, "BSS ")
			if i := strings.IndexAny(bssid, "( "); i >= 0 {
				bssid = bssid[:i]
			}
			aps = append(aps, AccessPoint{BSSID: strings.ToLower(bssid)})
			current = &aps[len(aps)-1]
			continue
		}
		if current == nil {
			continue
		}

		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "SSID":
			current.SSID = value
		case "signal":
			if dbm, err := strconv.ParseFloat(strings.TrimSuffix(value, " dBm"), 64); err == nil {
				current.Signal = dbm
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wifi: parse scan: %w", err)
	}
	return aps, nil
}
