package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler manages graceful shutdown with friendly messages.
type InterruptHandler struct {
	writer       io.Writer
	cancelFunc   context.CancelFunc
	done         chan struct{}
	operation    string
	stopOnce     sync.Once
	interrupted  bool
	showProgress bool
	mu           sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler for the named operation,
// for example "Import".
func NewInterruptHandler(writer io.Writer, operation string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	if operation == "" {
		operation = "Operation"
	}
	return &InterruptHandler{
		writer:    writer,
		operation: operation,
		done:      make(chan struct{}),
	}
}

// HandleInterrupts returns a context that is canceled on SIGINT/SIGTERM or
// when ctx ends. showProgress adds a note that completed work was kept.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, showProgress bool) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel
	h.showProgress = showProgress

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
		case <-ctx.Done():
			select {
			case <-h.done:
				return
			default:
			}
		case <-h.done:
			return
		}

		h.mu.Lock()
		if !h.interrupted {
			h.interrupted = true
			h.showInterruptMessage()
		}
		h.mu.Unlock()
		cancel()
	}()

	return ctx
}

// Stop releases the signal handler without reporting an interrupt.
func (h *InterruptHandler) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		if h.cancelFunc != nil {
			h.cancelFunc()
		}
	})
}

// showInterruptMessage displays a friendly interrupt message.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")

	if h.showProgress {
		msg += "\n" + FormatInfo("Records saved before the interrupt were kept.")
	} else {
		msg += "\n" + FormatInfo("Nothing was saved.")
	}

	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
