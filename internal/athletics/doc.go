// Package athletics reads the featured game from the Denver Pioneers scoreboard carousel.
package athletics
