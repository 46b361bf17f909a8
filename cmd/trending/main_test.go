package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/ajcontent/content-engine/engine/domain"
)

type stubTrending struct{ perPage int }

func (s *stubTrending) FetchAll(_ context.Context, page, perPage int) domain.TrendingPage {
	s.perPage = perPage
	return domain.TrendingPage{Topics: []domain.Topic{{Title: "A"}, {Title: "B"}}, Total: 2, Page: page}
}

type stubShorts struct{}

func (stubShorts) Rewrite(_ context.Context, topics []domain.Topic, _ int) []domain.ShortsIdea {
	return []domain.ShortsIdea{{Title: topics[0].Title + "!!"}}
}

type failingSink struct{}

func (failingSink) Emit(context.Context, string, any) error { return errors.New("closed") }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPublisher_Stdout(t *testing.T) {
	var buf bytes.Buffer
	tr := &stubTrending{}
	p := publisher{trending: tr, shorts: stubShorts{}, out: newStdoutSink(&buf), perPage: 25, log: discard()}
	if err := p.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if tr.perPage != 25 {
		t.Errorf("perPage = %d", tr.perPage)
	}

	dec := json.NewDecoder(&buf)
	var first, second struct {
		Subject string          `json:"subject"`
		Data    json.RawMessage `json:"data"`
	}
	if err := dec.Decode(&first); err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatal(err)
	}
	if first.Subject != domain.SubjectTrendingPage || second.Subject != domain.SubjectShortsIdeas {
		t.Errorf("subjects = %q, %q", first.Subject, second.Subject)
	}
	var resp domain.ShortsResponse
	json.Unmarshal(second.Data, &resp)
	if resp.Count != 1 || resp.Shorts[0].Title != "A!!" {
		t.Errorf("unexpected %+v", resp)
	}
}

func TestPublisher_NoShorts(t *testing.T) {
	var buf bytes.Buffer
	p := publisher{trending: &stubTrending{}, out: newStdoutSink(&buf), perPage: 10, log: discard()}
	if err := p.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(buf.Bytes(), []byte(`"subject"`)); n != 1 {
		t.Errorf("expected one record, got %d", n)
	}
}

func TestPublisher_SinkError(t *testing.T) {
	p := publisher{trending: &stubTrending{}, out: failingSink{}, perPage: 10, log: discard()}
	if err := p.run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPublisher_NATS(t *testing.T) {
	ns, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	ns.Start()
	defer ns.Shutdown()
	if !ns.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync(domain.SubjectTrendingPage)
	if err != nil {
		t.Fatal(err)
	}
	nc.Flush()

	p := publisher{trending: &stubTrending{}, out: natsSink{nc: nc}, perPage: 10, log: discard()}
	if err := p.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	msg, err := sub.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	var page domain.TrendingPage
	if err := json.Unmarshal(msg.Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Errorf("unexpected %+v", page)
	}
}
