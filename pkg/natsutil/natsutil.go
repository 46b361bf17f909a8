// Package natsutil provides typed JSON publish, request and reply helpers
// over NATS with OpenTelemetry trace propagation in message headers.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

func newMsg[T any](ctx context.Context, subject string, v T) (*nats.Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", subject, err)
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return msg, nil
}

// Publish serializes v as JSON and publishes it to subject.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	msg, err := newMsg(ctx, subject, v)
	if err != nil {
		return err
	}
	return nc.PublishMsg(msg)
}

// errorReply is sent back when a Reply handler fails.
type errorReply struct {
	Error string `json:"error"`
}

// ErrRemote wraps an error reported by the responder.
var ErrRemote = errors.New("remote error")

// Request sends req and decodes the reply. The deadline comes from ctx; a
// context without one falls back to nats.DefaultTimeout.
func Request[Req, Resp any](ctx context.Context, nc *nats.Conn, subject string, req Req) (Resp, error) {
	var zero Resp
	msg, err := newMsg(ctx, subject, req)
	if err != nil {
		return zero, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, nats.DefaultTimeout)
		defer cancel()
	}
	reply, err := nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return zero, err
	}

	var er errorReply
	if json.Unmarshal(reply.Data, &er) == nil && er.Error != "" {
		return zero, fmt.Errorf("%w: %s", ErrRemote, er.Error)
	}
	var out Resp
	if err := json.Unmarshal(reply.Data, &out); err != nil {
		return zero, fmt.Errorf("decode %s reply: %w", subject, err)
	}
	return out, nil
}

// Reply serves request-reply on subject. Malformed requests, handler errors
// and handler panics are answered with {"error": "..."}.
func Reply[Req, Resp any](nc *nats.Conn, subject string, handler func(context.Context, Req) (Resp, error)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		defer func() {
			if r := recover(); r != nil {
				respond(msg, errorReply{Error: fmt.Sprintf("handler panic: %v", r)})
			}
		}()
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))

		var req Req
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			respond(msg, errorReply{Error: "malformed request: " + err.Error()})
			return
		}
		resp, err := handler(ctx, req)
		if err != nil {
			respond(msg, errorReply{Error: err.Error()})
			return
		}
		respond(msg, resp)
	})
}

func respond(msg *nats.Msg, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorReply{Error: err.Error()})
	}
	msg.Respond(data)
}
