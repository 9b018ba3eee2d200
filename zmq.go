package main

import (
	"context"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"
)

// ZMQWatcher subscribes to hashblock and rawblock on the node and signals
// notify whenever either fires, so TemplateSource can refresh immediately
// instead of waiting for the next safety tick. Reconnects with exponential
// backoff capped at zmqReconnectMaxBackoff.
type ZMQWatcher struct {
	endpoint string
	notify   chan<- struct{}
	metrics  *Metrics
}

func NewZMQWatcher(endpoint string, notify chan<- struct{}, metrics *Metrics) *ZMQWatcher {
	return &ZMQWatcher{endpoint: endpoint, notify: notify, metrics: metrics}
}

func (w *ZMQWatcher) Run(ctx context.Context) {
	if w.endpoint == "" {
		return
	}
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := w.runOnce(ctx); err != nil {
			logger.Warn("zmq connection error, reconnecting", "error", err, "backoff", backoff)
			if w.metrics != nil {
				w.metrics.RecordZMQReconnect()
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > zmqReconnectMaxBackoff {
				backoff = zmqReconnectMaxBackoff
			}
			continue
		}
		backoff = time.Second
	}
}

func (w *ZMQWatcher) runOnce(ctx context.Context) error {
	sock, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return err
	}
	defer sock.Close()

	if err := sock.Connect(w.endpoint); err != nil {
		return err
	}
	if err := sock.SetSubscribe("hashblock"); err != nil {
		return err
	}
	if err := sock.SetSubscribe("rawblock"); err != nil {
		return err
	}
	_ = sock.SetRcvtimeo(time.Second)

	for {
		if ctx.Err() != nil {
			return nil
		}
		parts, err := sock.RecvMessageBytes(0)
		if err != nil {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
				continue
			}
			return err
		}
		if len(parts) == 0 {
			continue
		}
		topic := string(parts[0])
		switch topic {
		case "hashblock", "rawblock":
			select {
			case w.notify <- struct{}{}:
			default:
			}
		}
	}
}
