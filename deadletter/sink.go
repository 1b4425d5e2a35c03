// Package deadletter keeps rejected inbound messages out of the hot
// ingestion path. The gateway hands letters to a buffered channel and moves
// on; a single writer goroutine drains the channel into the dead_letters
// table. Delivery stays at-most-once: when the buffer is full the letter is
// dropped with a log line, never blocking the MQTT delivery thread.
package deadletter

import (
	"log/slog"
	"sync"

	"orchard-bridge/models"
	"orchard-bridge/repositories/interfaces"
)

const defaultBufferSize = 256

// Sink accepts rejected messages for persistence.
type Sink interface {
	Publish(letter *models.DeadLetter)
	Close()
}

// writerSink implements Sink with a channel-fed background writer.
type writerSink struct {
	repo   interfaces.DeadLetterRepositoryInterface
	logger *slog.Logger
	ch     chan *models.DeadLetter
	wg     sync.WaitGroup
}

// NewSink starts the writer goroutine and returns the sink.
func NewSink(repo interfaces.DeadLetterRepositoryInterface, logger *slog.Logger) Sink {
	s := &writerSink{
		repo:   repo,
		logger: logger.With("component", "dead_letter"),
		ch:     make(chan *models.DeadLetter, defaultBufferSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Publish enqueues a letter without blocking.
func (s *writerSink) Publish(letter *models.DeadLetter) {
	select {
	case s.ch <- letter:
	default:
		s.logger.Warn("Dead-letter buffer full, dropping message",
			"reason", letter.Reason, "devEui", letter.DevEUI)
	}
}

// Close stops accepting letters and waits for the writer to drain the
// channel.
func (s *writerSink) Close() {
	close(s.ch)
	s.wg.Wait()
}

func (s *writerSink) run() {
	defer s.wg.Done()
	for letter := range s.ch {
		if err := s.repo.Insert(letter); err != nil {
			s.logger.Error("Failed to persist dead letter",
				"reason", letter.Reason, slog.Any("error", err))
		}
	}
}
