package app

import "didactax/pkg/domain"

// SettingsForUser returns the user's editor preferences, or the
// defaults when none were saved yet.
func (a *App) SettingsForUser(userID uint) (domain.Settings, error) {
	settings, ok, err := a.store.GetSettingsByUser(userID)
	if err != nil {
		return domain.Settings{}, err
	}
	if !ok {
		return domain.Settings{
			UserID:      userID,
			Theme:       "dark",
			FontSize:    16,
			AutoSave:    true,
			AutoCorrect: true,
		}, nil
	}
	return settings, nil
}

// UpdateSettings saves the user's editor preferences.
func (a *App) UpdateSettings(userID uint, settings domain.Settings) (domain.Settings, error) {
	settings.UserID = userID
	id, err := a.store.SaveSettings(settings)
	if err != nil {
		return domain.Settings{}, err
	}
	settings.ID = id
	return settings, nil
}
