package guard

import (
	"luna/app/config"

	"github.com/samber/do"
)

// Service filters inbound messages by sender identity. Disallowed senders
// are dropped before any state is touched, without a reply.
type Service struct {
	allowed map[int64]struct{}
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(cfg.Telegram.AllowedUserIDs), nil
}

func NewService(allowedUserIDs []int64) *Service {
	allowed := make(map[int64]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}

	return &Service{allowed: allowed}
}

func (s *Service) IsAllowed(senderID int64) bool {
	_, ok := s.allowed[senderID]
	return ok
}
