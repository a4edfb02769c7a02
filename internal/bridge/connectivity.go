package bridge

import "net"

// Connectivity answers whether the host has a usable network path before a
// poll is attempted.
type Connectivity interface {
	Online() bool
}

// Always is a Connectivity with a fixed answer, for loopback bridges and tests.
type Always bool

func (a Always) Online() bool { return bool(a) }

// InterfaceChecker reports the host online when at least one non-loopback
// interface is up.
type InterfaceChecker struct {
	interfaces func() ([]net.Interface, error)
}

func NewInterfaceChecker() *InterfaceChecker {
	return &InterfaceChecker{interfaces: net.Interfaces}
}

func (c *InterfaceChecker) Online() bool {
	ifaces, err := c.interfaces()
	if err != nil {
		return false
	}

	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ifi.Flags&net.FlagUp != 0 {
			return true
		}
	}

	return false
}
