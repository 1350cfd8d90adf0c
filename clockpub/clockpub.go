// Package clockpub periodically reads an RTC and publishes the time to a
// message broker topic.
//
// Each message is the ISO 8601 date and time followed by the Unix seconds:
//
//	2024-03-03T21:45:07 1709502307
package clockpub

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ajanata/softrtc/datetime"
)

const (
	DefaultTopic    = "rtc/time"
	DefaultInterval = time.Second
)

// Clock is the time source, typically a *ds1307.Device.
type Clock interface {
	Now() (datetime.DateTime, error)
}

// Sink delivers a payload to a topic.
type Sink interface {
	Publish(topic string, payload []byte) error
}

type Config struct {
	Topic    string        // DefaultTopic when empty
	Interval time.Duration // DefaultInterval when zero
	Logger   *slog.Logger  // slog.Default() when nil
	// Ticker drives Run. A real clock when nil.
	Ticker   clockwork.Clock
}

type Publisher struct {
	rtc      Clock
	sink     Sink
	topic    string
	interval time.Duration
	logger   *slog.Logger
	ticker   clockwork.Clock
	buf      []byte
}

func New(rtc Clock, sink Sink, cfg Config) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Ticker == nil {
		cfg.Ticker = clockwork.NewRealClock()
	}
	return &Publisher{
		rtc:      rtc,
		sink:     sink,
		topic:    cfg.Topic,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		ticker:   cfg.Ticker,
		buf:      make([]byte, 0, 32),
	}
}

// AppendPayload appends the message for dt to b.
func AppendPayload(b []byte, dt datetime.DateTime) []byte {
	b = dt.AppendFormat(b, datetime.LayoutISODate)
	b = append(b, 'T')
	b = dt.AppendFormat(b, datetime.LayoutISOTime)
	b = append(b, ' ')
	return strconv.AppendInt(b, int64(dt.Unix()), 10)
}

// PublishOnce reads the clock and publishes one message.
func (p *Publisher) PublishOnce() error {
	dt, err := p.rtc.Now()
	if err != nil {
		return fmt.Errorf("reading clock: %w", err)
	}
	p.buf = AppendPayload(p.buf[:0], dt)
	if err := p.sink.Publish(p.topic, p.buf); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}
	p.logger.Debug("clockpub:published", slog.String("topic", p.topic), slog.String("time", dt.String()))
	return nil
}

// Run publishes once per interval until ctx is done, and returns ctx.Err().
// Failed publishes are logged and retried on the next tick.
func (p *Publisher) Run(ctx context.Context) error {
	t := p.ticker.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.Chan():
			if err := p.PublishOnce(); err != nil {
				p.logger.Error("clockpub:publish-failed", slog.Any("err", err))
			}
		}
	}
}
