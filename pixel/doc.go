// Package pixel implements a color and image library suitable for OLED and LCD pixel displays.
//
// This module provides additional color models, compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces.
//
// Colors that fit in a byte are packed by a [Codec] into 1, 2, 4 or 8 bits per pixel, and a
// [Framebuffer] stores them in caller supplied memory, several pixels per byte. The device
// native layouts ([VerticalLSB], [HorizontalNibble], [RGB565Image]) mirror the display RAM of
// common controllers.
package pixel
