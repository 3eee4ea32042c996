package auth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/google/uuid"
)

const (
	maxUsernameBase     = 20
	maxUsernameAttempts = 500
)

var nonUsernameChars = regexp.MustCompile(`[^a-z0-9]`)

// UsernameBase derives the lowercase ASCII stem for a generated username.
func UsernameBase(firstName, lastName string) string {
	base := nonUsernameChars.ReplaceAllString(strings.ToLower(firstName+lastName), "")
	if len(base) > maxUsernameBase {
		base = base[:maxUsernameBase]
	}
	if base == "" {
		base = "user"
	}
	return base
}

// UsernameAvailable reports whether no account uses name (case-insensitive).
func (a *BasicAuthenticator) UsernameAvailable(ctx context.Context, name string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count == 0, nil
}

// RegisterProfile stores the user's display name and assigns a unique
// username: the base, then base1..base99, then base plus a random three digit
// suffix.
func (a *BasicAuthenticator) RegisterProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string) (*models.User, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	fullName := strings.TrimSpace(firstName + " " + lastName)
	base := UsernameBase(firstName, lastName)

	candidate := base
	for attempt := 1; ; attempt++ {
		ok, err := a.UsernameAvailable(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if attempt > maxUsernameAttempts {
			return nil, fmt.Errorf("no free username for base %q", base)
		}
		if attempt < 100 {
			candidate = fmt.Sprintf("%s%d", base, attempt)
		} else {
			candidate = fmt.Sprintf("%s%d", base, 100+rand.IntN(900))
		}
	}

	res := a.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"username": candidate, "name": fullName})
	if res.Error != nil {
		return nil, fmt.Errorf("save profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUnauthorized
	}

	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return &user, nil
}
