package main

import (
	"flag"
	"log"

	"github.com/Garsondee/Bolster/internal/cue"
	"github.com/Garsondee/Bolster/internal/game"
	"github.com/Garsondee/Bolster/internal/viewer"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var configPath string
	var seed int64
	var sound bool
	var carpenter float64
	var verbose bool

	flag.StringVar(&configPath, "config", "", "YAML tuning file (defaults apply to missing keys)")
	flag.Int64Var(&seed, "seed", 42, "RNG seed for the level and agents")
	flag.BoolVar(&sound, "sound", true, "play synthesised cues through the speaker")
	flag.Float64Var(&carpenter, "carpenter", 0, "seconds between scripted boards (0 = board by hand)")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick entries in the sim log")
	flag.Parse()

	tuning := game.DefaultTuning()
	if configPath != "" {
		t, err := game.LoadTuning(configPath)
		if err != nil {
			log.Fatal(err)
		}
		tuning = t
	}

	opts := viewer.Options{
		Tuning:    tuning,
		Level:     game.DefaultLevelConfig(),
		Seed:      seed,
		Carpenter: carpenter,
		Verbose:   verbose,
	}

	var emitter *cue.Emitter
	if sound {
		emitter = cue.NewEmitter(nil, seed)
		if err := emitter.Initialize(); err != nil {
			log.Printf("sound disabled: %v", err)
		} else {
			defer emitter.Cleanup()
		}
		opts.Audio = emitter
	}

	g := viewer.New(opts)
	if emitter != nil {
		emitter.SetListener(g.World().Player)
	}

	w, h := g.Size()
	ebiten.SetWindowTitle("Bolster")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
