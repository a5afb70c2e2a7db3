package conn

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// I2C is a device on an I²C bus.
type I2C struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// OpenI2C opens the numbered I²C bus, use a negative device to open the first
// available bus, and addresses the device at addr.
func OpenI2C(device int, addr uint8) (*I2C, error) {
	name := ""
	if device >= 0 {
		name = strconv.Itoa(device)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}

	return &I2C{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: uint16(addr)},
	}, nil
}

func (c *I2C) String() string {
	return fmt.Sprintf("I²C bus %s address %#02x", c.bus, c.dev.Addr)
}

func (c *I2C) Close() error {
	return c.bus.Close()
}

func (c *I2C) Tx(w, r []byte) error {
	return c.dev.Tx(w, r)
}

func (c *I2C) Duplex() conn.Duplex {
	return conn.Half
}

func (c *I2C) Read(p []byte) (int, error) {
	return len(p), c.dev.Tx(nil, p)
}

func (c *I2C) Write(p []byte) (int, error) {
	return len(p), c.dev.Tx(p, nil)
}

var _ conn.Conn = (*I2C)(nil)
