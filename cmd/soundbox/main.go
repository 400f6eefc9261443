package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milk9111/soundbox/config"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ipc"
	"github.com/milk9111/soundbox/sim"
	"github.com/milk9111/soundbox/telemetry"
	"golang.org/x/sync/errgroup"
)

const receiverStopTimeout = time.Second

type options struct {
	configPath string
	frames     int
	debug      bool
	send       string
	listen     string
	validate   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "sandbox.yaml", "sandbox config file (embedded defaults are used if missing)")
	flag.IntVar(&opts.frames, "headless-frames", 0, "stop after this many frames (0 runs until interrupted)")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.StringVar(&opts.send, "send", "", "audio engine command address, overrides the config")
	flag.StringVar(&opts.listen, "listen", "", "telemetry listen address, overrides the config")
	flag.BoolVar(&opts.validate, "validate", false, "run the consistency check once a second and log warnings")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.send != "" {
		cfg.Audio.Send = opts.send
	}
	if opts.listen != "" {
		cfg.Audio.Listen = opts.listen
	}

	sender := ipc.Dial(cfg.Audio.Send, ipc.WithSendTimeout(cfg.Audio.SendTimeout))
	client, _ := sender.(*ipc.Client)
	if client != nil {
		defer client.Close()
	}

	inbox := ipc.NewInbox(cfg.Audio.InboxCap)
	receiver, err := ipc.Listen(cfg.Audio.Listen, inbox, nil)
	if err != nil {
		log.Printf("soundbox: telemetry disabled: %v", err)
	}

	effects, err := cfg.BuildEffects()
	if err != nil {
		return err
	}
	simCfg := cfg.Sim()
	simCfg.Debug = opts.debug
	coord := sim.NewCoordinator(simCfg, sender, effects...)
	coord.SetListener(cfg.Audio.Listener.X, cfg.Audio.Listener.Y)
	for _, spec := range cfg.BodySpecs() {
		if _, err := coord.Spawn(spec); err != nil {
			log.Printf("soundbox: %v", err)
		}
	}

	var watcher *config.Watcher
	if _, err := os.Stat(opts.configPath); err == nil {
		watcher, err = config.NewWatcher(opts.configPath)
		if err != nil {
			log.Printf("soundbox: config hot reload disabled: %v", err)
		}
	}

	loop := &frameLoop{
		opts:     opts,
		cfg:      cfg,
		coord:    coord,
		inbox:    inbox,
		settings: telemetry.NewSettings(nil),
		watcher:  watcher,
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.run(ctx)
	})
	if watcher != nil {
		g.Go(func() error {
			for {
				select {
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Printf("soundbox: config watcher: %v", err)
				case <-ctx.Done():
					return nil
				}
			}
		})
	}
	err = g.Wait()

	coord.Shutdown()
	if watcher != nil {
		_ = watcher.Close()
	}
	if receiver != nil {
		if stopErr := receiver.Stop(receiverStopTimeout); stopErr != nil {
			log.Printf("soundbox: %v", stopErr)
		}
	}
	if client != nil {
		sent, dropped := client.Stats()
		log.Printf("soundbox: sent %d message(s), dropped %d", sent, dropped)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type frameLoop struct {
	opts     options
	cfg      *config.Config
	coord    *sim.Coordinator
	inbox    *ipc.Inbox
	settings *telemetry.Settings
	watcher  *config.Watcher

	frames      int
	lastDropped uint64
}

func (l *frameLoop) run(ctx context.Context) error {
	step := time.Duration(l.cfg.Physics.FixedStep * float64(time.Second))
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	var reloads <-chan string
	if l.watcher != nil {
		reloads = l.watcher.Events
	}

	last := time.Now()
	lastReport := last
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			l.reload(name)
		case now := <-ticker.C:
			frameDt := now.Sub(last).Seconds()
			last = now

			l.settings.Drain(l.inbox, l.cfg.Audio.DrainPerTick)
			l.coord.Advance(frameDt)
			l.frames++

			if now.Sub(lastReport) >= time.Second {
				lastReport = now
				l.report()
			}
			if l.opts.frames > 0 && l.frames >= l.opts.frames {
				log.Printf("soundbox: finished %d headless frame(s)", l.frames)
				return nil
			}
		}
	}
}

// reload rebuilds the effect list from the edited file. The coordinator only
// sees the new list between ticks.
func (l *frameLoop) reload(name string) {
	cfg, err := config.Load(l.opts.configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Printf("soundbox: reload %s: %v", name, err)
		return
	}
	built, err := cfg.BuildEffects()
	if err != nil {
		log.Printf("soundbox: reload %s: %v", name, err)
		return
	}
	l.coord.ReplaceEffects(built)
	env := l.coord.Environment()
	env.SetBaseGravity(cfg.Physics.Gravity.Vector())
	env.ResetGravity()
	env.SetWind(cfg.Physics.Wind.Direction, cfg.Physics.Wind.Strength)
	l.coord.ConfigureListener(cfg.Audio.Listener.Radius, cfg.Audio.Listener.NearRatio)
	l.coord.SetListener(cfg.Audio.Listener.X, cfg.Audio.Listener.Y)
	log.Printf("soundbox: reloaded %s, %d effect(s)", name, len(built))
}

func (l *frameLoop) report() {
	if dropped := l.inbox.Dropped(); dropped > l.lastDropped {
		log.Printf("soundbox: telemetry inbox full, dropped %d message(s) (%d total)", dropped-l.lastDropped, dropped)
		l.lastDropped = dropped
	}
	if l.opts.validate {
		for _, w := range l.coord.Validate() {
			log.Printf("soundbox: validate: %s", w)
		}
	}
	if !l.opts.debug {
		return
	}
	stats := l.coord.LastEffectStats()
	log.Printf("soundbox: t=%.2fs ticks=%d entities=%d bodies=%d voices=%d forced=%d teleported=%d launched=%d %s",
		l.coord.Now(), l.coord.Ticks(), ecs.Count(l.coord.World()), len(l.coord.Bodies()), l.coord.Tracker().Len(),
		stats.Forced, stats.Teleported, stats.Launched, l.settings)
}
