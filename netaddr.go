package powerlink

import "fmt"

// MacAddress is a 6-byte Ethernet hardware address.
type MacAddress [6]byte

// SoC multicast destination per EPSG DS 301 table.
var MulticastSoC = MacAddress{0x01, 0x11, 0x1E, 0x00, 0x00, 0x01}

// PRes multicast destination.
var MulticastPRes = MacAddress{0x01, 0x11, 0x1E, 0x00, 0x00, 0x02}

// SoA multicast destination.
var MulticastSoA = MacAddress{0x01, 0x11, 0x1E, 0x00, 0x00, 0x03}

// BroadcastMac is the Ethernet broadcast address.
var BroadcastMac = MacAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// IsMulticast reports whether m has the multicast bit set in its first octet.
func (m MacAddress) IsMulticast() bool {
	return m[0]&0x01 != 0
}

// IsBroadcast reports whether m equals the all-ones broadcast address.
func (m MacAddress) IsBroadcast() bool {
	return m == BroadcastMac
}

func (m MacAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IpAddress is a 4-byte IPv4 address.
type IpAddress [4]byte

// IsBroadcast reports whether ip is the limited broadcast address 255.255.255.255.
func (ip IpAddress) IsBroadcast() bool {
	return ip == IpAddress{255, 255, 255, 255}
}

// IsMulticast reports whether ip falls in the 224.0.0.0/4 multicast range.
func (ip IpAddress) IsMulticast() bool {
	return ip[0] >= 224 && ip[0] <= 239
}

func (ip IpAddress) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}
