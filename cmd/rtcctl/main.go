// Command rtcctl reads and sets a DS1307 attached to a Linux I2C bus.
//
//	rtcctl [-config rtcctl.toml] [-bus /dev/i2c-1] now
//	rtcctl set 2024-03-03 21:45:07
//	rtcctl -mode console
//	rtcctl -mode ntp
//	rtcctl -mode publish
//
// In exec mode, the default, the arguments are one console command; run
// "rtcctl help" for the list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/ajanata/softrtc/clockpub"
	"github.com/ajanata/softrtc/console"
	"github.com/ajanata/softrtc/ds1307"
	"github.com/ajanata/softrtc/i2cmaster"
	"github.com/ajanata/softrtc/ntpsync"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "TOML config file")
	busName := flag.String("bus", "", "I2C bus, overrides the config file")
	mode := flag.String("mode", "exec", "exec, console, ntp or publish")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *busName != "" {
		cfg.Bus = *busName
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host drivers: %w", err)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus %q: %w", cfg.Bus, err)
	}
	defer bus.Close()

	rtc := ds1307.New(i2cmaster.NewPort(bus))
	rtc.Configure(ds1307.Config{
		Address:     cfg.Address,
		NoDayOfWeek: cfg.NoDayOfWeek,
	})
	logger.Debug("rtc:opened", slog.String("bus", bus.String()), slog.Int("address", int(rtc.Address)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "exec":
		args := flag.Args()
		if len(args) == 0 {
			args = []string{"now"}
		}
		return console.New(&rtc, os.Stdout, console.Config{Logger: logger}).ExecArgs(args)
	case "console":
		return console.New(&rtc, os.Stdout, console.Config{Logger: logger}).Run(os.Stdin)
	case "ntp":
		return syncNTP(&rtc, cfg, logger)
	case "publish":
		return publish(ctx, &rtc, cfg, logger)
	}
	return fmt.Errorf("unknown mode %q", *mode)
}

func syncNTP(rtc *ds1307.Device, cfg Config, logger *slog.Logger) error {
	addr := net.JoinHostPort(cfg.NTP.Server, fmt.Sprint(ntpsync.Port))
	conn, err := net.DialTimeout("udp", addr, cfg.NTPTimeout())
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(cfg.NTPTimeout())); err != nil {
		return err
	}

	dt, err := ntpsync.Query(conn)
	if err != nil {
		return err
	}
	if err := rtc.SetTime(dt); err != nil {
		return fmt.Errorf("failed to set clock: %w", err)
	}
	logger.Info("ntp:clock-set", slog.String("server", cfg.NTP.Server), slog.String("time", dt.String()))
	return nil
}

func publish(ctx context.Context, rtc *ds1307.Device, cfg Config, logger *slog.Logger) error {
	opts := paho.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID).
		SetAutoReconnect(true)
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timed out connecting to %s", cfg.MQTT.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.MQTT.Broker, err)
	}
	defer client.Disconnect(250)
	logger.Info("mqtt:connected", slog.String("broker", cfg.MQTT.Broker))

	p := clockpub.New(rtc, clockpub.NewPahoSink(client), clockpub.Config{
		Topic:    cfg.MQTT.Topic,
		Interval: cfg.PublishInterval(),
		Logger:   logger,
	})
	err := p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
