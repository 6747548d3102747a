package main

import (
	"github.com/sweeney/ir-remote/internal/status"
)

// Variables pi-helper writes to /run/pi-helper.env; the systemd unit loads
// that file into our environment.
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// networkInfo returns nil when pi-helper has not reported a status.
func networkInfo(getenv func(string) string) *status.NetworkInfo {
	s := getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       getenv(envNetworkType),
		IP:         getenv(envNetworkIP),
		Status:     s,
		Gateway:    getenv(envNetworkGateway),
		WifiStatus: getenv(envNetworkWifiStatus),
		SSID:       getenv(envNetworkWifiSSID),
	}
}
