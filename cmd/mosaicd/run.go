package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lanikai/mosaic"
	"github.com/lanikai/mosaic/internal/broker"
	"github.com/lanikai/mosaic/internal/composite"
	"github.com/lanikai/mosaic/internal/config"
	"github.com/lanikai/mosaic/internal/control"
	"github.com/lanikai/mosaic/internal/logging"
	"github.com/lanikai/mosaic/internal/media"
	"github.com/lanikai/mosaic/internal/sink"

	// Source types registered at init.
	_ "github.com/lanikai/mosaic/internal/gstreamer"
	_ "github.com/lanikai/mosaic/internal/v4l2"
)

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Record sources into one canvas",
		Args:  cobra.NoArgs,
	}
	flags := config.BindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Load()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}
	return cmd
}

// daemon holds everything run opens, so it can be released in one place.
type daemon struct {
	cfg     *config.Config
	mq      mqtt.Client
	ingest  *control.Ingest
	sources []media.Source
	hub     *sink.Hub
	rec     *mosaic.Recorder
}

func run(ctx context.Context, cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.SetDefaultLevel(level)

	d := &daemon{cfg: cfg}
	defer d.close()

	if err := d.setup(); err != nil {
		return err
	}
	return d.serve(ctx)
}

func (d *daemon) setup() error {
	cfg := d.cfg

	if cfg.MQTT.Broker != "" {
		mq, err := broker.Connect(broker.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			return err
		}
		d.mq = mq
		broker.Register(mq)
	}

	d.ingest = control.NewIngest()
	d.ingest.Register()

	var bindings []composite.Binding
	for _, sc := range cfg.Sources {
		buf := media.NewBuffer(cfg.Buffer.Capacity)
		src, err := media.OpenSource(sc.Channel)
		if err != nil {
			return err
		}
		d.sources = append(d.sources, src)
		if err := src.Start(buf); err != nil {
			return errors.Wrapf(err, "start source %s", sc.Channel)
		}
		log.Info("Source %s -> %v", sc.Channel, sc.Region().Rect())
		bindings = append(bindings, composite.Binding{
			Name:   sc.Channel,
			Buffer: buf,
			Region: sc.Region(),
		})
	}

	scaler, err := composite.ParseInterpolation(cfg.Output.Interpolation)
	if err != nil {
		return err
	}

	d.rec, err = mosaic.NewRecorder(mosaic.Config{
		Width:        cfg.Output.Width,
		Height:       cfg.Output.Height,
		FPS:          cfg.Output.FPS,
		Format:       cfg.Output.Format,
		Quality:      cfg.Output.Quality,
		OutputPath:   cfg.Output.Path,
		InitialStart: cfg.InitialStart,
		Bindings:     bindings,
		CompositorOptions: []composite.Option{
			composite.WithScaler(scaler),
			composite.WithOverlay(cfg.Output.Overlay),
		},
	})
	if err != nil {
		return err
	}

	for _, b := range cfg.Output.Broadcast {
		tag, name, _ := strings.Cut(b, ":")
		switch tag {
		case "ws":
			if d.hub == nil {
				d.hub = sink.NewHub(cfg.Output.Quality)
				d.rec.AddPublisher(d.hub)
			}
			log.Info("Broadcasting %s on /live", name)
		case "mqtt":
			d.rec.AddPublisher(broker.NewPublisher(d.mq, name, cfg.Output.Quality))
			log.Info("Broadcasting on MQTT topic %s", name)
		}
	}
	return nil
}

// serve runs the control surfaces and the tick loop until ctx ends. A finished
// recording keeps the daemon up so its status stays available.
func (d *daemon) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []control.Option{control.WithIngest(d.ingest)}
	if d.hub != nil {
		opts = append(opts, control.WithLive(d.hub))
	}
	srv := control.NewServer(d.rec, opts...)

	if d.mq != nil {
		if err := control.SubscribeMQTT(d.mq, d.cfg.MQTT.ControlPrefix, d.rec); err != nil {
			return err
		}
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx, d.cfg.API.Listen, d.cfg.API.MaxConnections)
	}()
	recErr := make(chan error, 1)
	go func() {
		recErr <- d.rec.Run(ctx)
	}()

	var err error
	for srvErr != nil || recErr != nil {
		select {
		case e := <-srvErr:
			srvErr = nil
			if e != nil && err == nil {
				err = e
			}
			cancel()
		case e := <-recErr:
			recErr = nil
			if e != nil {
				if err == nil {
					err = e
				}
				cancel()
			} else if ctx.Err() == nil {
				log.Info("Recording finished, waiting for shutdown")
			}
		}
	}
	return err
}

func (d *daemon) close() {
	if d.rec != nil {
		if err := d.rec.Close(); err != nil {
			log.Error("%v", err)
		}
	}
	for _, src := range d.sources {
		if err := src.Close(); err != nil {
			log.Warn("Close source: %v", err)
		}
	}
	if d.mq != nil {
		d.mq.Disconnect(250)
	}
}
