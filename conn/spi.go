// Package conn opens the SPI and I²C buses displays are attached to.
package conn

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// SPIMode is the SPI clock polarity and phase.
type SPIMode = spi.Mode

const (
	SPIMode0 = spi.Mode0
	SPIMode1 = spi.Mode1
	SPIMode2 = spi.Mode2
	SPIMode3 = spi.Mode3
)

// SPI is a connected SPI port.
type SPI struct {
	port  spi.PortCloser
	conn  spi.Conn
	mode  SPIMode
	speed physic.Frequency
}

// OpenSPI opens the SPI port by name (like "SPI0.0", or "" for the first
// available one) and connects at the requested clock speed and mode with 8 bits
// per word.
//
// The periph.io host drivers must be initialized with host.Init first.
func OpenSPI(name string, speed physic.Frequency, mode SPIMode) (*SPI, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, err
	}

	c, err := port.Connect(speed, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("conn: SPI connect at %s mode %d: %w", speed, mode, err)
	}

	return &SPI{
		port:  port,
		conn:  c,
		mode:  mode,
		speed: speed,
	}, nil
}

func (c *SPI) Close() error {
	return c.port.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("SPI %s mode=%d speed=%s", c.port, c.mode, c.speed)
}

func (c *SPI) Mode() SPIMode {
	return c.mode
}

func (c *SPI) MaxSpeed() physic.Frequency {
	return c.speed
}

// MaxTxSize is the largest transfer the port accepts, 0 if unknown.
func (c *SPI) MaxTxSize() int {
	if l, ok := c.conn.(conn.Limits); ok {
		return l.MaxTxSize()
	}
	return 0
}

func (c *SPI) Tx(w, r []byte) error {
	return c.conn.Tx(w, r)
}

func (c *SPI) Duplex() conn.Duplex {
	return c.conn.Duplex()
}

func (c *SPI) Write(b []byte) (n int, err error) {
	if err = c.conn.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

var _ conn.Conn = (*SPI)(nil)
