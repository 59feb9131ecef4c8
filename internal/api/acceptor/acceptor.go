package acceptor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/micromax/isara-emulator/internal/logger"
)

// Handler serves one accepted connection. The connection is closed after it returns.
type Handler func(ctx context.Context, conn net.Conn)

// Listen binds a TCP listener on address.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return lis, nil
}

// Serve accepts connections on lis until ctx is done, running handler for each
// in its own goroutine. On shutdown it closes the listener and every open
// connection, then waits for the handlers to return.
func Serve(ctx context.Context, lis net.Listener, name string, handler Handler) error {
	ctx = logger.WithName(ctx, name)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		conns = make(map[net.Conn]struct{})
	)

	stop := context.AfterFunc(ctx, func() {
		_ = lis.Close()

		mu.Lock()
		defer mu.Unlock()

		for conn := range conns {
			_ = conn.Close()
		}
	})
	defer stop()

	logger.InfoKV(ctx, "Accepting connections", "address", lis.Addr().String())

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}

			logger.ErrorKV(ctx, "Accept failed", "error", err)

			continue
		}

		mu.Lock()
		if ctx.Err() != nil {
			mu.Unlock()

			_ = conn.Close()

			break
		}

		conns[conn] = struct{}{}
		mu.Unlock()

		wg.Go(func() {
			defer func() {
				mu.Lock()
				delete(conns, conn)
				mu.Unlock()

				_ = conn.Close()
			}()

			connCtx := logger.WithKV(ctx, "remote", conn.RemoteAddr().String())
			handler(connCtx, conn)
		})
	}

	wg.Wait()
	logger.InfoKV(ctx, "Stopped accepting connections", "address", lis.Addr().String())

	return nil
}
