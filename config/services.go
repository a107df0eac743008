package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ServiceMode names a server the process can run.
type ServiceMode string

const (
	// ServiceModeHTTP runs the browser-facing HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeDevAPI runs the in-memory check-in API stand-in.
	ServiceModeDevAPI ServiceMode = "devapi"
)

// ValidServiceModes returns every accepted service mode in start order.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeDevAPI}
}

func validModeList() string {
	names := make([]string, 0, len(ValidServiceModes()))
	for _, m := range ValidServiceModes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// ParseServices turns a comma-separated SERVICES value into the set of
// enabled modes. Names are case-insensitive and duplicates collapse.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	if strings.TrimSpace(servicesStr) == "" {
		return nil, errors.New("at least one service must be specified")
	}

	services := make(map[ServiceMode]bool)
	for part := range strings.SplitSeq(servicesStr, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		if !slices.Contains(ValidServiceModes(), mode) {
			return nil, fmt.Errorf("invalid service name: %q (valid options: %s)", name, validModeList())
		}
		services[mode] = true
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}
