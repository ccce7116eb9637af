package net

import (
	"fmt"
	"strconv"
)

// Port represents a network port in TCP protocol.
type Port uint16

// PortFromInt converts an integer to a Port.
// @error when the integer is negative or larger then 65535
func PortFromInt(val int64) (Port, error) {
	if val < 0 || val > 65535 {
		return Port(0), fmt.Errorf("invalid port range: %d", val)
	}
	return Port(val), nil
}

// PortFromString converts a decimal string to a Port.
// @error when the string is not an integer or the integral value is a not a valid Port.
func PortFromString(s string) (Port, error) {
	val, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return Port(0), fmt.Errorf("invalid port range: %s", s)
	}
	return Port(val), nil
}

// Value return the corresponding uint16 value of a Port.
func (p Port) Value() uint16 {
	return uint16(p)
}

// String returns the string presentation of a Port.
func (p Port) String() string {
	return strconv.Itoa(int(p))
}
