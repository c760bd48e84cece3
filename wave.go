package main

import (
	"math"
	"strings"
	"time"
)

const (
	waveDot        = '●'
	waveDotSpacing = 2
	waveMinVolume  = 0.01
	waveMaxAmpFrac = 0.4
	waveVolumeGain = 500
)

// renderWave draws one frame of the amplitude waveform into a
// width×height rune canvas. active is true only while recording; below
// the minimum volume, or when inactive, the frame is the static
// baseline. The wobble is the product of two phase-shifted sines over
// column position and wall-clock time, so it never settles into a
// repeating pattern.
func renderWave(width, height int, volume float64, now time.Time, active bool) string {
	if width < 1 || height < 1 {
		return ""
	}
	if !active || volume < waveMinVolume {
		return waveBaseline(width, height)
	}

	maxAmp := waveMaxAmpFrac * float64(height)
	amp := math.Min(maxAmp, volume*waveVolumeGain*maxAmp)
	t := float64(now.UnixNano()) / float64(time.Second)
	mid := (height - 1) / 2

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = blankRow(width)
	}
	for x := 0; x < width; x += waveDotSpacing {
		wobble := math.Sin(float64(x)*0.35+t*8.0) * math.Sin(float64(x)*0.13-t*5.0)
		y := mid - int(math.Round(amp*wobble))
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		grid[y][x] = waveDot
	}

	rows := make([]string, height)
	for y, row := range grid {
		rows[y] = string(row)
	}
	return strings.Join(rows, "\n")
}

func waveBaseline(width, height int) string {
	mid := (height - 1) / 2
	rows := make([]string, height)
	for y := 0; y < height; y++ {
		row := blankRow(width)
		if y == mid {
			for x := 0; x < width; x += waveDotSpacing {
				row[x] = waveDot
			}
		}
		rows[y] = string(row)
	}
	return strings.Join(rows, "\n")
}

func blankRow(width int) []rune {
	row := make([]rune, width)
	for i := range row {
		row[i] = ' '
	}
	return row
}
