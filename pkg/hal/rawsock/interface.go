package rawsock

import (
	"fmt"
	"net"

	pl "github.com/fabiomolinar/powerlink-rs-sub001"
)

type ifaceInfo struct {
	index int
	mac   pl.MacAddress
}

// findInterface resolves a network interface name the same way the
// teacher's socketcanv2.NewBus does (net.InterfaceByName), but also
// captures the hardware address Hal.LocalMacAddress reports.
func findInterface(name string) (ifaceInfo, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return ifaceInfo{}, fmt.Errorf("rawsock: interface %q: %w", name, err)
	}
	if len(iface.HardwareAddr) != 6 {
		return ifaceInfo{}, fmt.Errorf("rawsock: interface %q has no Ethernet hardware address", name)
	}
	var mac pl.MacAddress
	copy(mac[:], iface.HardwareAddr)
	return ifaceInfo{index: iface.Index, mac: mac}, nil
}
