package oled

import (
	"image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/BeatGlow/oled/pixel"
)

func init() {
	sleep = func(time.Duration) {}
}

// i2cCommands returns the I²C transfers for single byte commands.
func i2cCommands(commands ...byte) []conntest.IO {
	ops := make([]conntest.IO, len(commands))
	for i, command := range commands {
		ops[i] = conntest.IO{W: []byte{0x00, command}}
	}
	return ops
}

func i2cData(data ...byte) conntest.IO {
	return conntest.IO{W: append([]byte{0x40}, data...)}
}

func TestSSD1306(t *testing.T) {
	bus := new(conntest.Record)
	reset := &gpiotest.Pin{N: "RST"}
	d, err := SSD1306(NewI2C(bus, nil, reset), &Config{})
	require.NoError(t, err)
	assert.Equal(t, "SSD1306 OLED 128x64", d.(interface{ String() string }).String())
	assert.Equal(t, gpio.High, reset.L)

	// The first refresh during init sends the whole display.
	var sent int
	for _, op := range bus.Ops {
		if op.W[0] == 0x40 {
			sent += len(op.W) - 1
		}
	}
	assert.Equal(t, 128*64/8, sent)

	t.Run("dirty", func(it *testing.T) {
		bus.Ops = nil
		d.Set(10, 9, color.White)
		d.Set(12, 17, color.White)
		require.NoError(it, d.Refresh())

		want := append(i2cCommands(
			ssd1xxxSetColumnAddr, 10, 12,
			ssd1xxxSetPageAddr, 1, 2,
		), i2cData(0x02, 0x00, 0x00, 0x00, 0x00, 0x02))
		if diff := cmp.Diff(want, bus.Ops); diff != "" {
			it.Errorf("refresh mismatch (-want +got):\n%s", diff)
		}

		bus.Ops = nil
		require.NoError(it, d.Refresh())
		assert.Empty(it, bus.Ops, "clean display must not be sent")
	})

	t.Run("close", func(it *testing.T) {
		bus.Ops = nil
		require.NoError(it, d.Close())
		assert.Equal(it, i2cCommands(ssd1xxxSetDisplayOff), bus.Ops)
		assert.ErrorIs(it, d.Refresh(), ErrClosed)
	})
}

func TestSSD1306Size(t *testing.T) {
	_, err := SSD1306(NewI2C(new(conntest.Record), nil, nil), &Config{Width: 100, Height: 10})
	assert.Error(t, err)

	d, err := SSD1306(NewI2C(new(conntest.Record), nil, nil), &Config{Width: 128, Height: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, d.Bounds().Dy())
}

func TestSH1106(t *testing.T) {
	bus := new(conntest.Record)
	d, err := SH1106(NewI2C(bus, nil, nil), &Config{})
	require.NoError(t, err)

	bus.Ops = nil
	d.Set(5, 0, color.White)
	d.Set(6, 8, color.White)
	require.NoError(t, d.Refresh())

	var want []conntest.IO
	want = append(want, i2cCommands(ssd1xxxSetPageStart|0, ssd1xxxSetLowColumn|7, ssd1xxxSetHighColumn)...)
	want = append(want, i2cData(0x01, 0x00))
	want = append(want, i2cCommands(ssd1xxxSetPageStart|1, ssd1xxxSetLowColumn|7, ssd1xxxSetHighColumn)...)
	want = append(want, i2cData(0x00, 0x01))
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}
}

func TestSSD1322(t *testing.T) {
	c, bus, _, _ := testSPI(t, 0)
	d, err := SSD1322(c, &Config{})
	require.NoError(t, err)
	assert.Equal(t, pixel.Gray4Model, d.ColorModel())

	bus.Ops = nil
	d.Set(3, 2, pixel.Gray4{Y: 15})
	require.NoError(t, d.Refresh())

	row := make([]byte, 128)
	row[1] = 0x0f
	want := []conntest.IO{
		{W: []byte{ssd1322SetColumnAddress}}, {W: []byte{28, 91}},
		{W: []byte{ssd1322SetRowAddress}}, {W: []byte{2, 2}},
		{W: []byte{ssd1322WriteRAM}},
		{W: row},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}

	_, err = SSD1322(c, &Config{Width: 200, Height: 64})
	assert.Error(t, err)
}

func TestST7789(t *testing.T) {
	c, bus, _, _ := testSPI(t, 0)
	backlight := &gpiotest.Pin{N: "BL"}
	d, err := ST7789(c, &Config{Width: 8, Height: 4, Backlight: backlight})
	require.NoError(t, err)
	assert.Equal(t, gpio.High, backlight.L)

	bus.Ops = nil
	d.Set(1, 2, color.White)
	require.NoError(t, d.Refresh())

	row := make([]byte, 16)
	row[2], row[3] = 0xff, 0xff
	want := []conntest.IO{
		{W: []byte{st7789CASET}}, {W: []byte{0, 0, 0, 7}},
		{W: []byte{st7789RASET}}, {W: []byte{0, 2, 0, 2}},
		{W: []byte{st7789RAMWR}},
		{W: row},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, d.Show(false))
	assert.Equal(t, gpio.Low, backlight.L)

	_, err = ST7789(c, &Config{Width: 320, Height: 240})
	assert.Error(t, err)
}

func TestSSD1305(t *testing.T) {
	bus := new(conntest.Record)
	d, err := SSD1305(NewI2C(bus, nil, nil), &Config{})
	require.NoError(t, err)
	assert.Equal(t, "SSD1305 128x32", d.(interface{ String() string }).String())

	bus.Ops = nil
	d.Set(5, 0, color.White)
	d.Set(6, 8, color.White)
	require.NoError(t, d.Refresh())

	var want []conntest.IO
	want = append(want, i2cCommands(ssd1xxxSetPageStart|0, ssd1xxxSetLowColumn|5, ssd1xxxSetHighColumn)...)
	want = append(want, i2cData(0x01, 0x00))
	want = append(want, i2cCommands(ssd1xxxSetPageStart|1, ssd1xxxSetLowColumn|5, ssd1xxxSetHighColumn)...)
	want = append(want, i2cData(0x00, 0x01))
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}

	t.Run("offset", func(it *testing.T) {
		bus := new(conntest.Record)
		d, err := SSD1305(NewI2C(bus, nil, nil), &Config{Width: 128, Height: 64})
		require.NoError(it, err)

		bus.Ops = nil
		d.Set(12, 63, color.White)
		require.NoError(it, d.Refresh())

		want := append(i2cCommands(ssd1xxxSetPageStart|7, ssd1xxxSetLowColumn|0, ssd1xxxSetHighColumn|1), i2cData(0x80))
		if diff := cmp.Diff(want, bus.Ops); diff != "" {
			it.Errorf("refresh mismatch (-want +got):\n%s", diff)
		}
	})

	_, err = SSD1305(NewI2C(new(conntest.Record), nil, nil), &Config{Width: 96, Height: 16})
	assert.Error(t, err)
}

func TestSH1122(t *testing.T) {
	c, bus, _, _ := testSPI(t, 0)
	d, err := SH1122(c, &Config{Width: 128, Height: 32})
	require.NoError(t, err)
	assert.Equal(t, pixel.Gray4Model, d.ColorModel())

	bus.Ops = nil
	d.Set(3, 2, pixel.Gray4{Y: 15})
	require.NoError(t, d.Refresh())

	row := make([]byte, 64)
	row[1] = 0x0f
	want := []conntest.IO{
		{W: []byte{sh1122SetRowAddress}}, {W: []byte{2}},
		{W: []byte{ssd1xxxSetLowColumn}},
		{W: []byte{ssd1xxxSetHighColumn}},
		{W: row},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}

	bus.Ops = nil
	require.NoError(t, d.SetContrast(0x20))
	assert.Equal(t, []conntest.IO{{W: []byte{ssd1xxxSetContrast}}, {W: []byte{0x20}}}, bus.Ops,
		"contrast argument is sent as a command byte")

	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Refresh(), ErrClosed)

	_, err = SH1122(c, &Config{Width: 200, Height: 64})
	assert.Error(t, err)
}

func TestST7735(t *testing.T) {
	c, bus, _, _ := testSPI(t, 0)
	backlight := &gpiotest.Pin{N: "BL"}
	d, err := ST7735(c, &Config{Width: 8, Height: 4, Backlight: backlight})
	require.NoError(t, err)
	assert.Equal(t, "ST7735 8x4", d.(interface{ String() string }).String())
	assert.Equal(t, st7735BacklightStep*0xFF, backlight.D)
	assert.Equal(t, st7735BacklightRate, backlight.F)

	bus.Ops = nil
	d.Set(1, 2, color.White)
	require.NoError(t, d.Refresh())

	row := make([]byte, 16)
	row[2], row[3] = 0xff, 0xff
	want := []conntest.IO{
		{W: []byte{st7735CASET}}, {W: []byte{0, 0, 0, 7}},
		{W: []byte{st7735RASET}}, {W: []byte{0, 2, 0, 2}},
		{W: []byte{st7735RAMWR}},
		{W: row},
	}
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("refresh mismatch (-want +got):\n%s", diff)
	}

	bus.Ops = nil
	require.NoError(t, d.SetContrast(0x40))
	assert.Equal(t, st7735BacklightStep*0x40, backlight.D)
	assert.Empty(t, bus.Ops, "contrast only changes the backlight")

	_, err = ST7735(c, &Config{Width: 241, Height: 10})
	assert.Error(t, err)
}

func TestDisplaySink(t *testing.T) {
	bus := new(conntest.Record)
	d, err := SSD1306(NewI2C(bus, nil, nil), &Config{Width: 128, Height: 32})
	require.NoError(t, err)

	size := pixel.MonoCodec.BufferSize(128, 32)
	b, err := NewBuffered(pixel.MonoCodec, make([]byte, size), make([]byte, size), DisplaySink[pixel.Mono](d))
	require.NoError(t, err)

	bus.Ops = nil
	b.SetPixel(0, 0, pixel.On)
	b.SetPixel(1, 0, pixel.On)
	n, err := b.Flush()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, pixel.On, d.At(1, 0))

	want := append(i2cCommands(
		ssd1xxxSetColumnAddr, 0, 1,
		ssd1xxxSetPageAddr, 0, 0,
	), i2cData(0x01, 0x01))
	if diff := cmp.Diff(want, bus.Ops); diff != "" {
		t.Errorf("flush mismatch (-want +got):\n%s", diff)
	}
}
