package repository

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileRepository member profiles from the profile store
type ProfileRepository interface {
	FindByIDs(ctx context.Context, memberIDs []string) ([]domain.UserProfile, error)
	ListExcept(ctx context.Context, memberID string) ([]domain.UserProfile, error)
	UpdatePresence(ctx context.Context, memberID string, online bool, lastSeen time.Time) error
}

type profileRepository struct {
	db      *pgxpool.Pool
	avatars AvatarResolver
}

// NewProfileRepository create a ProfileRepository
func NewProfileRepository(db *pgxpool.Pool, avatars AvatarResolver) ProfileRepository {
	if avatars == nil {
		avatars = PassthroughAvatars{}
	}
	return &profileRepository{db: db, avatars: avatars}
}

const profileColumns = "member_id, username, COALESCE(full_name, ''), COALESCE(avatar, ''), is_online, last_seen"

func (r *profileRepository) FindByIDs(ctx context.Context, memberIDs []string) ([]domain.UserProfile, error) {
	if len(memberIDs) == 0 {
		return []domain.UserProfile{}, nil
	}
	rows, err := r.db.Query(ctx, "SELECT "+profileColumns+" FROM member WHERE member_id = ANY($1)", memberIDs)
	if err != nil {
		return nil, err
	}
	return r.scanProfiles(ctx, rows)
}

func (r *profileRepository) ListExcept(ctx context.Context, memberID string) ([]domain.UserProfile, error) {
	rows, err := r.db.Query(ctx, "SELECT "+profileColumns+" FROM member WHERE member_id <> $1", memberID)
	if err != nil {
		return nil, err
	}
	return r.scanProfiles(ctx, rows)
}

func (r *profileRepository) UpdatePresence(ctx context.Context, memberID string, online bool, lastSeen time.Time) error {
	_, err := r.db.Exec(ctx, "UPDATE member SET is_online = $1, last_seen = $2 WHERE member_id = $3", online, lastSeen, memberID)
	return err
}

func (r *profileRepository) scanProfiles(ctx context.Context, rows pgx.Rows) ([]domain.UserProfile, error) {
	defer rows.Close()

	profiles := []domain.UserProfile{}
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.Avatar, &p.IsOnline, &p.LastSeen); err != nil {
			return nil, err
		}
		p.Avatar = r.avatars.Resolve(ctx, p.Avatar)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
