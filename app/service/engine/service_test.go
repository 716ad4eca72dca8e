package engine

import (
	"context"
	"testing"
	"time"

	"luna/app/service/guard"
	"luna/app/service/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	messages []queue.Message
}

func (s *stubSource) Updates(context.Context) <-chan queue.Message {
	out := make(chan queue.Message, len(s.messages))
	for _, msg := range s.messages {
		out <- msg
	}
	close(out)

	return out
}

func TestPollDropsDisallowedSenders(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Vienna")
	require.NoError(t, err)

	msgQueue, err := queue.New(nil)
	require.NoError(t, err)

	source := &stubSource{messages: []queue.Message{
		{ChatID: 1, UserID: 100, Text: "erlaubt"},
		{ChatID: 2, UserID: 666, Text: "fremd"},
		{ChatID: 1, UserID: 100, Text: "nochmal"},
	}}

	svc := NewService(source, msgQueue, guard.NewService([]int64{100}), nil, nil, nil, nil, nil, nil, nil, loc)
	svc.poll(context.Background())

	var queued []queue.Message
	for len(msgQueue.Channel()) > 0 {
		queued = append(queued, <-msgQueue.Channel())
	}

	require.Len(t, queued, 2)
	assert.Equal(t, "erlaubt", queued[0].Text)
	assert.Equal(t, "nochmal", queued[1].Text)
	for _, msg := range queued {
		assert.EqualValues(t, 100, msg.UserID)
	}
}
