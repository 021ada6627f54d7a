package main

import (
	"fmt"

	"github.com/fatih/color"
)

const helpString = `Multi-source fixed-rate video compositor

Usage:
  mosaicd run [OPTION]...          Record sources into one canvas
  mosaicd start|stop|status        Control a running daemon
  mosaicd version

Sources are "channel, x, y, width, height" where channel is one of
  pattern:<color|#rrggbb|bars>[@fps]   synthetic picture
  http://host/stream                   MJPEG over HTTP
  v4l2:/dev/video0[?format=yuyv]       Video4Linux camera
  mqtt:<topic>                         frames published over MQTT
  ws:<name>                            frames pushed to /ingest/<name>
  rtsp://host/stream                   RTSP camera (GStreamer builds)

Run "mosaicd run --help" for all options.`

// The letters of the banner, line by line. Each letter keeps a fixed width.
var bannerLetters = [][]string{
	{"            ", " _ __ ___   ", "| '_ ` _ \\  ", "| | | | | | ", "|_| |_| |_| "},
	{"        ", "  ___   ", " / _ \\  ", "| (_) | ", " \\___/  "},
	{"      ", " ___  ", "/ __| ", "\\__ \\ ", "|___/ "},
	{"        ", "  __ _  ", " / _` | ", "| (_| | ", " \\__,_| "},
	{" _  ", "(_) ", "| | ", "| | ", "|_| "},
	{"      ", "  ___ ", " / __|", "| (__ ", " \\___|"},
}

// banner prints the program name in colour. Colours are dropped automatically
// when stdout is not a terminal.
func banner() {
	palette := []*color.Color{
		color.New(color.FgRed),
		color.New(color.FgYellow),
		color.New(color.FgCyan),
	}

	for line := 0; line < 5; line++ {
		for i, letter := range bannerLetters {
			palette[i%len(palette)].Print(letter[line])
		}
		fmt.Println()
	}
}

// Help information is printed
func help() {
	banner()
	fmt.Println(helpString)
}
