package app

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/config"
	errprocess "realtime_chat_service/pkg/err"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// AggregateConversations newest message per counterpart of userID, newest conversation first.
// Messages that do not involve userID are ignored.
func AggregateConversations(userID string, messages []domain.Message) []domain.ConversationSummary {
	own := lo.Filter(messages, func(m domain.Message, _ int) bool {
		return m.SenderID != m.ReceiverID && (m.SenderID == userID || m.ReceiverID == userID)
	})

	sorted := slices.Clone(own)
	slices.SortStableFunc(sorted, func(a, b domain.Message) int {
		return cmp.Or(
			strings.Compare(a.PairKey(), b.PairKey()),
			b.CreatedAt.Compare(a.CreatedAt),
			cmp.Compare(b.Seq, a.Seq),
		)
	})

	latest := lo.UniqBy(sorted, func(m domain.Message) string { return m.PairKey() })
	summaries := lo.Map(latest, func(m domain.Message, _ int) domain.ConversationSummary {
		return domain.NewConversationSummary(userID, m)
	})

	slices.SortStableFunc(summaries, func(a, b domain.ConversationSummary) int {
		return cmp.Or(
			b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt),
			cmp.Compare(b.Seq(), a.Seq()),
		)
	})
	return summaries
}

// ConversationUseCase read side: conversations, peers, history
type ConversationUseCase struct {
	msgRepo  repository.MessageRepository
	profiles repository.ProfileRepository
	registry *PresenceRegistry
	paging   config.PagingConfig
}

// NewConversationUseCase create a ConversationUseCase
func NewConversationUseCase(
	msgRepo repository.MessageRepository,
	profiles repository.ProfileRepository,
	registry *PresenceRegistry,
	paging config.PagingConfig,
) *ConversationUseCase {
	if paging.DefaultLimit <= 0 {
		paging.DefaultLimit = 50
	}
	if paging.MaxLimit <= 0 {
		paging.MaxLimit = 200
	}
	return &ConversationUseCase{
		msgRepo:  msgRepo,
		profiles: profiles,
		registry: registry,
		paging:   paging,
	}
}

func (uc *ConversationUseCase) limit(requested int) int {
	if requested <= 0 {
		return uc.paging.DefaultLimit
	}
	return min(requested, uc.paging.MaxLimit)
}

func paginate[T any](items []T, offset, limit int) []T {
	start, end := domain.Page{Offset: offset, Limit: limit}.Window(len(items))
	return items[start:end]
}

// ListConversations conversation list of userID joined with counterpart profiles
func (uc *ConversationUseCase) ListConversations(ctx context.Context, userID string, page domain.Page) ([]domain.ConversationSummary, error) {
	messages, err := uc.msgRepo.FindLatestPerCounterpart(ctx, userID)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "load conversations", err, zap.String("userID", userID))
	}

	summaries := AggregateConversations(userID, messages)
	ids := lo.Map(summaries, func(s domain.ConversationSummary, _ int) string { return s.CounterpartID })

	profiles, err := uc.profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "load profiles", err, zap.String("userID", userID))
	}
	byID := lo.KeyBy(profiles, func(p domain.UserProfile) string { return p.ID })
	online := lo.Keyify(uc.registry.OnlineSnapshot())

	joined := lo.FilterMap(summaries, func(s domain.ConversationSummary, _ int) (domain.ConversationSummary, bool) {
		p, ok := byID[s.CounterpartID]
		if !ok {
			return s, false
		}
		s.Username = p.Username
		s.FullName = p.FullName
		s.Avatar = p.Avatar
		s.LastSeen = p.LastSeen
		_, s.IsOnline = online[s.CounterpartID]
		return s, true
	})

	return paginate(joined, page.Offset, uc.limit(page.Limit)), nil
}

// ListPeers every member except userID, online first, then most recently seen
func (uc *ConversationUseCase) ListPeers(ctx context.Context, userID string, page domain.Page) ([]domain.UserProfile, error) {
	profiles, err := uc.profiles.ListExcept(ctx, userID)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "load peers", err, zap.String("userID", userID))
	}

	online := lo.Keyify(uc.registry.OnlineSnapshot())
	peers := lo.Map(profiles, func(p domain.UserProfile, _ int) domain.UserProfile {
		_, p.IsOnline = online[p.ID]
		return p
	})

	slices.SortStableFunc(peers, func(a, b domain.UserProfile) int {
		if a.IsOnline != b.IsOnline {
			if a.IsOnline {
				return -1
			}
			return 1
		}
		switch {
		case a.LastSeen == nil && b.LastSeen != nil:
			return 1
		case a.LastSeen != nil && b.LastSeen == nil:
			return -1
		case a.LastSeen != nil && b.LastSeen != nil:
			if c := b.LastSeen.Compare(*a.LastSeen); c != 0 {
				return c
			}
		}
		return strings.Compare(a.Username, b.Username)
	})

	return paginate(peers, page.Offset, uc.limit(page.Limit)), nil
}

// ListMessages history between userID and counterpartID, oldest first
func (uc *ConversationUseCase) ListMessages(ctx context.Context, userID, counterpartID string, q domain.HistoryQuery) ([]domain.MessageView, error) {
	profiles, err := uc.profiles.FindByIDs(ctx, []string{userID, counterpartID})
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "load profiles", err, zap.String("userID", userID))
	}
	byID := lo.KeyBy(profiles, func(p domain.UserProfile) string { return p.ID })
	if _, ok := byID[counterpartID]; !ok {
		return nil, errprocess.Wrap(domain.ErrNotFound, "user not found", nil, zap.String("counterpartID", counterpartID))
	}
	if _, ok := byID[userID]; !ok {
		byID[userID] = domain.UserProfile{ID: userID}
	}

	q.Limit = uc.limit(q.Limit)
	messages, err := uc.msgRepo.FindBetween(ctx, userID, counterpartID, q)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrPersistence, "load messages", err, zap.String("userID", userID))
	}

	return lo.Map(messages, func(m domain.Message, _ int) domain.MessageView {
		return domain.MessageView{Message: m, Sender: byID[m.SenderID], Receiver: byID[m.ReceiverID]}
	}), nil
}
