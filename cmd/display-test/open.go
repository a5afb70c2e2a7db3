package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/gdamore/tcell/v2"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/oled"
	"github.com/BeatGlow/oled/framebuffer"
	"github.com/BeatGlow/oled/pixel"
	"github.com/BeatGlow/oled/terminal"
)

func run(bus, driver string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch bus = strings.ToLower(bus); bus {
	case "term":
		return runTerminal(ctx, strings.ToLower(driver))

	case "fb":
		d, err := framebuffer.Open(driver)
		if err != nil {
			return err
		}
		defer d.Close()
		return runDisplay(ctx, d)

	case "i2c", "spi":
		if _, err := host.Init(); err != nil {
			return err
		}
		driver = strings.ToLower(driver)

		c, err := openConn(bus, driver)
		if err != nil {
			return err
		}
		defer c.Close()
		fmt.Printf("using connection: %s\n", c)

		d, err := openDriver(c, driver)
		if err != nil {
			return err
		}
		defer d.Close()
		if err = d.SetContrast(contrastFlag); err != nil {
			return err
		}
		return runDisplay(ctx, d)

	default:
		return fmt.Errorf("unsupported bus type %q", bus)
	}
}

func openConn(bus, driver string) (oled.Conn, error) {
	if bus == "i2c" {
		return oled.OpenI2C(&oled.I2CConfig{
			Device: i2cDeviceFlag,
			Addr:   i2cAddrFlag,
			Reset:  pinByName(resetPinFlag),
		})
	}

	config := oled.DefaultSPIConfig
	config.Port = spiPortFlag
	config.Reset = pinByName(resetPinFlag)
	config.DC = pinByName(dcPinFlag)
	switch driver {
	case "st7735":
		config.Mode = oled.ST7735SPIMode
		config.Speed = oled.ST7735SPISpeed
	case "st7789":
		config.Mode = oled.ST7789SPIMode
		config.Speed = oled.ST7789SPISpeed
	}
	if spiSpeedFlag != "" {
		if err := config.Speed.Set(spiSpeedFlag); err != nil {
			return nil, fmt.Errorf("invalid SPI speed %q: %w", spiSpeedFlag, err)
		}
	}
	if config.Reset == nil {
		return nil, fmt.Errorf("reset pin %q not found", resetPinFlag)
	}
	if config.DC == nil {
		return nil, fmt.Errorf("data/command pin %q not found", dcPinFlag)
	}

	c, err := oled.OpenSPI(&config)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openDriver(c oled.Conn, driver string) (oled.Display, error) {
	config := &oled.Config{
		Width:     widthFlag,
		Height:    heightFlag,
		Backlight: pinByName(blPinFlag),
	}
	switch driver {
	case "sh1106":
		return oled.SH1106(c, config)
	case "sh1122":
		return oled.SH1122(c, config)
	case "ssd1305":
		return oled.SSD1305(c, config)
	case "ssd1306":
		return oled.SSD1306(c, config)
	case "ssd1322":
		return oled.SSD1322(c, config)
	case "st7735":
		return oled.ST7735(c, config)
	case "st7789":
		return oled.ST7789(c, config)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// pinByName returns nil for unknown and empty pin names.
func pinByName(name string) gpio.PinOut {
	if name == "" {
		return nil
	}
	if p := gpioreg.ByName(name); p != nil {
		return p
	}
	return nil
}

func runDisplay(ctx context.Context, d oled.Display) error {
	fmt.Printf("using display: %s\n", d)
	switch d.ColorModel() {
	case pixel.MonoModel:
		fmt.Println("using color model: monochrome")
		return animate(ctx, pixel.MonoCodec, oled.DisplaySink[pixel.Mono](d))
	case pixel.Gray4Model:
		fmt.Println("using color model: 4-bit gray")
		return animate(ctx, pixel.Gray4Codec, oled.DisplaySink[pixel.Gray4](d))
	default:
		fmt.Println("using color model: 8-bit RGB")
		return animate(ctx, pixel.RGB332Codec, oled.DisplaySink[pixel.RGB332](d))
	}
}

func runTerminal(ctx context.Context, model string) error {
	switch model {
	case "mono":
		return runTerminalWith(ctx, pixel.MonoCodec)
	case "gray2":
		return runTerminalWith(ctx, pixel.Gray2Codec)
	case "gray4":
		return runTerminalWith(ctx, pixel.Gray4Codec)
	case "rgb332":
		return runTerminalWith(ctx, pixel.RGB332Codec)
	default:
		return fmt.Errorf("unsupported color model %q", model)
	}
}

func runTerminalWith[C pixel.Color](ctx context.Context, codec *pixel.Codec[C]) error {
	w, h := widthFlag, heightFlag
	if w == 0 {
		w = 128
	}
	if h == 0 {
		h = 64
	}

	s, err := terminal.Open[C](w, h)
	if err != nil {
		return err
	}
	defer s.Close()

	// The terminal is in raw mode, so interrupts arrive as key events.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			switch ev := s.Screen().PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
					cancel()
					return
				}
			}
		}
	}()

	// Frame counts would scroll the preview away.
	verboseFlag = false
	return animate(ctx, codec, s)
}
