package main

import (
	"flag"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	seed := flag.Int64("seed", 1, "simulation seed")
	weapons := flag.String("weapons", "", "comma-separated weapon keys (default: all)")
	difficulty := flag.Float64("difficulty", 1, "damage difficulty multiplier")
	debug := flag.Bool("debug", false, "enable debug logging")
	watch := flag.Bool("watch", true, "hot-reload weapon files from prefabs/data")
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var keys []string
	if *weapons != "" {
		for _, k := range strings.Split(*weapons, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("hordecore")

	game := NewGame(*seed, keys, *difficulty, *debug, *watch)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
