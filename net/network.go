package net

import "strings"

type Network int32

const (
	NetworkUnknown Network = 0
	NetworkTCP     Network = 1
	NetworkUNIX    Network = 3
)

func (n Network) String() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkUNIX:
		return "unix"
	default:
		return "unknown"
	}
}

func ParseNetwork(net string) Network {
	switch strings.ToLower(net) {
	case "tcp":
		return NetworkTCP
	case "unix":
		return NetworkUNIX
	default:
		return NetworkUnknown
	}
}

// Family is the socket address family of an endpoint.
type Family byte

const (
	FamilyIPv4 = Family(0)
	FamilyIPv6 = Family(1)
	FamilyUnix = Family(2)
)

func (f Family) IsIPv4() bool {
	return f == FamilyIPv4
}

func (f Family) IsIPv6() bool {
	return f == FamilyIPv6
}

func (f Family) IsIP() bool {
	return f == FamilyIPv4 || f == FamilyIPv6
}

func (f Family) IsUnix() bool {
	return f == FamilyUnix
}

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "inet"
	case FamilyIPv6:
		return "inet6"
	case FamilyUnix:
		return "unix"
	default:
		return "unknown"
	}
}
