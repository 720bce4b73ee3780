package control

import (
	"context"
	"fmt"

	"go.klb.dev/clipkeep/internal/ipc"
	"go.klb.dev/clipkeep/internal/message"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/wire"
)

// Call sends req to the daemon listening on path and returns its response.
// An error response is returned as an error.
func Call(ctx context.Context, path string, req *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial(ctx, path)
	if err != nil {
		return nil, err
	}
	wc := wire.New(conn)
	defer wc.Close()

	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()

	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Type, err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.Type, err)
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}
	return resp, nil
}

// Watch subscribes to daemon notifications and calls fn for each until ctx
// is cancelled or the daemon closes the connection.
func Watch(ctx context.Context, path string, fn func(notify.Event)) error {
	conn, err := ipc.Dial(ctx, path)
	if err != nil {
		return err
	}
	wc := wire.New(conn)
	defer wc.Close()

	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("send watch: %w", err)
	}
	ack, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("read watch ack: %w", err)
	}
	if err := ack.Err(); err != nil {
		return err
	}

	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
		if msg.Type == message.TypeEvent && msg.Event != nil {
			fn(*msg.Event)
		}
	}
}
