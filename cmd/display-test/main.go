package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BeatGlow/oled"
)

var (
	widthFlag     int
	heightFlag    int
	i2cDeviceFlag int
	i2cAddrFlag   uint8
	spiPortFlag   string
	spiSpeedFlag  string
	resetPinFlag  string
	dcPinFlag     string
	blPinFlag     string
	contrastFlag  uint8
	framesFlag    int
	intervalFlag  time.Duration
	snapshotFlag  string
	fontFlag      string
	fontSizeFlag  float64
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "display-test <bus> <driver>",
	Short: "draw an animated test pattern on a display",
	Long: `draw an animated test pattern on a display

Buses and drivers:
    i2c   ssd1305, ssd1306, sh1106, sh1122
    spi   ssd1305, ssd1306, sh1106, sh1122, ssd1322, st7735, st7789
    term  mono, gray2, gray4, rgb332 (color model previewed in the terminal)
    fb    framebuffer device, e.g. /dev/fb0

Only the pixels that changed since the previous frame are sent to the display.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(args[0], args[1]); err != nil {
			fatal(err)
		}
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&widthFlag, "width", 0, "display width (default: driver default)")
	flags.IntVar(&heightFlag, "height", 0, "display height (default: driver default)")
	flags.IntVar(&i2cDeviceFlag, "i2c-dev", oled.DefaultI2CConfig.Device, "I²C device number (default: use first available)")
	flags.Uint8Var(&i2cAddrFlag, "i2c-addr", oled.DefaultI2CConfig.Addr, "I²C device address")
	flags.StringVar(&spiPortFlag, "spi-port", "", "SPI port name (default: use first available)")
	flags.StringVar(&spiSpeedFlag, "spi-speed", "", "SPI clock, e.g. 8MHz (default: driver default)")
	flags.StringVar(&resetPinFlag, "reset", oled.DefaultResetPin, "reset GPIO pin")
	flags.StringVar(&dcPinFlag, "dc", oled.DefaultDCPin, "data/command GPIO pin (DC)")
	flags.StringVar(&blPinFlag, "bl", "", "backlight GPIO pin")
	flags.Uint8Var(&contrastFlag, "contrast", 0xff, "display contrast level")
	flags.IntVarP(&framesFlag, "frames", "n", 0, "number of frames to draw (default: until interrupted)")
	flags.DurationVar(&intervalFlag, "interval", 50*time.Millisecond, "time between frames")
	flags.StringVar(&snapshotFlag, "snapshot", "", "write the last frame to this BMP file")
	flags.StringVar(&fontFlag, "font", "", `TrueType font file, "gomono" for Go Mono (default: 7x13 bitmap font)`)
	flags.Float64Var(&fontSizeFlag, "font-size", 12, "TrueType font size in points")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "print the number of changed pixels per frame")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
