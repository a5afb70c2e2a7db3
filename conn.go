package oled

import (
	"errors"
	"fmt"
	"io"
	"log"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	busconn "github.com/BeatGlow/oled/conn"
)

// Conn errors.
var (
	ErrResetPin = errors.New("oled: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("oled: data/command (DC) GPIO pin is invalid")
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

// SPI is a Conn over a 4-wire SPI bus.
type SPI interface {
	Conn

	// SetDataLow changes the data/command direction behaviour.
	SetDataLow(bool)
}

// I2CConfig describes the I²C bus configuration.
type I2CConfig struct {
	// Device is the I²C device, use -1 to use the first available device.
	Device int

	// Addr is the I²C address.
	Addr uint8

	// Reset pin, optional.
	Reset gpio.PinOut
}

var DefaultI2CConfig = I2CConfig{
	Device: -1,
	Addr:   0x3c,
}

type i2cConn struct {
	conn.Conn
	closer io.Closer
	reset  gpio.PinOut
}

// OpenI2C opens an I²C connection.
func OpenI2C(config *I2CConfig) (Conn, error) {
	if config == nil {
		config = new(I2CConfig)
		*config = DefaultI2CConfig
	}

	c, err := busconn.OpenI2C(config.Device, config.Addr)
	if err != nil {
		return nil, err
	}

	return NewI2C(c, c, config.Reset), nil
}

// NewI2C returns a Conn sending display commands over an established I²C
// device connection. The closer and reset pin are optional.
func NewI2C(c conn.Conn, closer io.Closer, reset gpio.PinOut) Conn {
	return &i2cConn{
		Conn:   c,
		closer: closer,
		reset:  reset,
	}
}

func (c *i2cConn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *i2cConn) Command(cmnd byte, args ...byte) error {
	return c.Tx(append([]byte{0x00, cmnd}, args...), nil)
}

func (c *i2cConn) Data(data ...byte) error {
	return c.Tx(append([]byte{0x40}, data...), nil)
}

func (c *i2cConn) Reset(level gpio.Level) error {
	if c.reset == nil {
		return nil
	}
	return c.reset.Out(level)
}

// Default SPI pin names.
const (
	DefaultResetPin = "GPIO25"
	DefaultDCPin    = "GPIO24"
)

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	// Port name, "" opens the first available port.
	Port string

	// Mode is the SPI clock mode.
	Mode busconn.SPIMode

	// Speed is the SPI clock.
	Speed physic.Frequency

	// DataLow inverts the data/command pin.
	DataLow bool

	// BatchSize is the maximum number of bytes sent in one transfer.
	BatchSize uint

	// Reset pin, defaults to DefaultResetPin.
	Reset gpio.PinOut

	// DC is the data/command pin, defaults to DefaultDCPin.
	DC gpio.PinOut
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Mode:      busconn.SPIMode0,
	Speed:     8 * physic.MegaHertz,
	BatchSize: 4096,
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []physic.Frequency{
	500 * physic.KiloHertz,
	1 * physic.MegaHertz,
	2 * physic.MegaHertz,
	4 * physic.MegaHertz,
	8 * physic.MegaHertz,
	16 * physic.MegaHertz,
	20 * physic.MegaHertz,
	24 * physic.MegaHertz,
	28 * physic.MegaHertz,
	32 * physic.MegaHertz,
	36 * physic.MegaHertz,
	40 * physic.MegaHertz,
	48 * physic.MegaHertz,
	50 * physic.MegaHertz,
	52 * physic.MegaHertz,
}

type spiConn struct {
	bus       conn.Conn
	closer    io.Closer
	reset     gpio.PinOut
	dc        gpio.PinOut
	dcLevel   gpio.Level
	dcValid   bool
	dataLow   bool
	batchSize int
}

// OpenSPI opens a SPI connection, nil opens the first port with the default
// configuration. Defaults are filled in on a copy of config.
func OpenSPI(spiConfig *SPIConfig) (SPI, error) {
	config := new(SPIConfig)
	if spiConfig == nil {
		*config = DefaultSPIConfig
	} else {
		*config = *spiConfig
	}

	if config.Speed == 0 {
		config.Speed = DefaultSPIConfig.Speed
	}
	var valid bool
	for _, speed := range ValidSPISpeeds {
		if valid = speed == config.Speed; valid {
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("oled: invalid SPI speed %s", config.Speed)
	}

	if config.Reset == nil {
		config.Reset = gpioreg.ByName(DefaultResetPin)
	}
	if config.DC == nil {
		config.DC = gpioreg.ByName(DefaultDCPin)
	}

	c, err := busconn.OpenSPI(config.Port, config.Speed, config.Mode)
	if err != nil {
		return nil, err
	}
	if max := c.MaxTxSize(); max > 0 && (config.BatchSize == 0 || int(config.BatchSize) > max) {
		config.BatchSize = uint(max)
	}

	s, err := NewSPI(c, c, config)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI returns a Conn sending display commands over an established SPI
// connection, toggling the DC pin between command and data bytes.
func NewSPI(c conn.Conn, closer io.Closer, config *SPIConfig) (SPI, error) {
	if config.Reset == nil || config.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}

	batchSize := int(config.BatchSize)
	if batchSize == 0 {
		batchSize = int(DefaultSPIConfig.BatchSize)
	}

	return &spiConn{
		bus:       c,
		closer:    closer,
		reset:     config.Reset,
		dc:        config.DC,
		dataLow:   config.DataLow,
		batchSize: batchSize,
	}, nil
}

func (c *spiConn) String() string {
	return c.bus.String()
}

func (c *spiConn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if !c.dcValid || c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel = level
		c.dcValid = true
	}
	return nil
}

func (c *spiConn) Command(cmnd byte, data ...byte) (err error) {
	if err = c.updateDC(gpio.Level(c.dataLow)); err != nil {
		return
	}
	if err = c.bus.Tx([]byte{cmnd}, nil); err != nil {
		return
	}
	if len(data) > 0 {
		if err = c.updateDC(gpio.Level(!c.dataLow)); err != nil {
			return
		}
		return c.writeChunked(data)
	}
	return
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.updateDC(gpio.Level(!c.dataLow)); err != nil {
		return
	}
	return c.writeChunked(data)
}

func (c *spiConn) writeChunked(data []byte) (err error) {
	if len(data) <= c.batchSize {
		return c.bus.Tx(data, nil)
	}

	if debug {
		log.Printf("oled: write %d bytes of data in %d chunks", len(data), (len(data)+c.batchSize-1)/c.batchSize)
	}
	for len(data) > 0 {
		n := min(len(data), c.batchSize)
		if err = c.bus.Tx(data[:n], nil); err != nil {
			return
		}
		data = data[n:]
	}
	return
}

func (c *spiConn) SetDataLow(v bool) {
	c.dataLow = v
}
