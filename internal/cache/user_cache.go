package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const profileTTL = 10 * time.Minute

// cachedProfile is the msgpack shape stored per user. It carries only what
// notification composition needs, never the full account record.
type cachedProfile struct {
	DisplayName string `msgpack:"display_name"`
}

// UserCache caches user display names for notification composition. All
// methods are nil-safe so callers never have to branch on cache availability.
type UserCache struct {
	redis *RedisCache
}

func NewUserCache(redis *RedisCache) *UserCache {
	return &UserCache{redis: redis}
}

func profileKey(userID uint) string {
	return fmt.Sprintf("profile:%d", userID)
}

// DisplayName returns the cached display name. The second return reports
// whether the cache had an entry at all (an empty name is a valid entry).
func (uc *UserCache) DisplayName(userID uint) (string, bool) {
	if uc == nil || uc.redis == nil {
		return "", false
	}
	raw, err := uc.redis.Get(profileKey(userID))
	if err != nil || raw == nil {
		return "", false
	}
	var p cachedProfile
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return "", false
	}
	return p.DisplayName, true
}

func (uc *UserCache) SetDisplayName(userID uint, name string) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	raw, err := msgpack.Marshal(cachedProfile{DisplayName: name})
	if err != nil {
		return err
	}
	return uc.redis.Set(profileKey(userID), raw, profileTTL)
}

func (uc *UserCache) Invalidate(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.Delete(profileKey(userID))
}
