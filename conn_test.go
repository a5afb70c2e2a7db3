package oled

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

func testSPI(t *testing.T, batchSize uint) (SPI, *conntest.Record, *gpiotest.Pin, *gpiotest.Pin) {
	t.Helper()
	var (
		bus   = new(conntest.Record)
		reset = &gpiotest.Pin{N: "RST", Num: 25}
		dc    = &gpiotest.Pin{N: "DC", Num: 24}
	)
	c, err := NewSPI(bus, nil, &SPIConfig{
		BatchSize: batchSize,
		Reset:     reset,
		DC:        dc,
	})
	require.NoError(t, err)
	return c, bus, reset, dc
}

func TestNewSPI(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO"}

	_, err := NewSPI(new(conntest.Record), nil, &SPIConfig{DC: pin})
	assert.ErrorIs(t, err, ErrResetPin)

	_, err = NewSPI(new(conntest.Record), nil, &SPIConfig{Reset: pin, DC: gpio.INVALID})
	assert.ErrorIs(t, err, ErrDCPin)
}

func TestSPICommand(t *testing.T) {
	c, bus, reset, dc := testSPI(t, 0)

	require.NoError(t, c.Command(0x2A, 0x00, 0x10))
	assert.Equal(t, gpio.High, dc.L, "arguments are data")

	require.NoError(t, c.Command(0x2C))
	assert.Equal(t, gpio.Low, dc.L)

	require.NoError(t, c.Data(0xff, 0xee))
	assert.Equal(t, gpio.High, dc.L)

	require.NoError(t, c.Data())

	want := []conntest.IO{
		{W: []byte{0x2A}},
		{W: []byte{0x00, 0x10}},
		{W: []byte{0x2C}},
		{W: []byte{0xff, 0xee}},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("SPI transfers mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, c.Reset(gpio.High))
	assert.Equal(t, gpio.High, reset.L)
	require.NoError(t, c.Close())
}

func TestSPIDataLow(t *testing.T) {
	c, _, _, dc := testSPI(t, 0)
	c.SetDataLow(true)

	require.NoError(t, c.Command(0x01))
	assert.Equal(t, gpio.High, dc.L)
	require.NoError(t, c.Data(0x01))
	assert.Equal(t, gpio.Low, dc.L)
}

func TestSPIChunked(t *testing.T) {
	c, bus, _, _ := testSPI(t, 4)

	require.NoError(t, c.Data(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	want := []conntest.IO{
		{W: []byte{1, 2, 3, 4}},
		{W: []byte{5, 6, 7, 8}},
		{W: []byte{9, 10}},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("SPI transfers mismatch (-want +got):\n%s", diff)
	}
}

func TestI2C(t *testing.T) {
	bus := new(conntest.Record)
	c := NewI2C(bus, nil, nil)

	require.NoError(t, c.Command(0xAE))
	require.NoError(t, c.Command(0x81, 0x7f))
	require.NoError(t, c.Data(1, 2, 3))
	require.NoError(t, c.Reset(gpio.Low), "reset without a pin is a no-op")
	require.NoError(t, c.Close())

	want := []conntest.IO{
		{W: []byte{0x00, 0xAE}},
		{W: []byte{0x00, 0x81, 0x7f}},
		{W: []byte{0x40, 1, 2, 3}},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("I²C transfers mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSPIConfigUnchanged(t *testing.T) {
	// No SPI port is registered in tests, so opening fails after the
	// defaults are resolved.
	config := SPIConfig{Port: "SPI9.9"}
	_, err := OpenSPI(&config)
	require.Error(t, err)
	assert.Equal(t, SPIConfig{Port: "SPI9.9"}, config)

	config = SPIConfig{Speed: 3 * physic.MegaHertz}
	_, err = OpenSPI(&config)
	assert.ErrorContains(t, err, "invalid SPI speed")
	assert.Equal(t, SPIConfig{Speed: 3 * physic.MegaHertz}, config)
}
