package storage

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Onboarded reports whether the onboarding screen was already dismissed.
// A missing flag means it was not.
func Onboarded(ctx context.Context, s SettingsStore) (bool, error) {
	setting, err := s.GetSetting(ctx, SettingOnboarded)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	seen, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return false, nil
	}
	return seen, nil
}

func SetOnboarded(ctx context.Context, s SettingsStore, seen bool, now time.Time) error {
	return s.PutSetting(ctx, Setting{Key: SettingOnboarded, Value: strconv.FormatBool(seen), UpdatedAt: now})
}
