package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/premiumize-addon/models"
)

// StreamsID is the SSE stream resolved streams are broadcast on, ie; /events?stream=streams
const StreamsID = "streams"

func NewServer() *sse.Server {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(StreamsID)
	return server
}

// Publisher pushes every resolved stream out to anyone listening on StreamsID.
type Publisher struct {
	Server *sse.Server
}

func NewPublisher(server *sse.Server) *Publisher {
	return &Publisher{Server: server}
}

func (p *Publisher) StreamResolved(_ context.Context, stream models.ResolvedStream) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to encode stream event: %w", err)
	}
	p.Server.Publish(StreamsID, &sse.Event{Data: data})
	return nil
}
