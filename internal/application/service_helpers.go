package application

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

const serviceName = "asof-site"

// normalizeEmail canonicalizes and validates email format before persistence/comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// uniqueSlug returns base, or base-2, base-3, ... until exists reports false.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	if base == "" {
		return "", fmt.Errorf("%w: cannot derive slug", domain.ErrInvalidInput)
	}
	candidate := base
	for n := 2; n < 1000; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := "-" + strconv.Itoa(n)
		trimmed := base
		if len(trimmed)+len(suffix) > 96 {
			trimmed = strings.TrimRight(trimmed[:96-len(suffix)], "-")
		}
		candidate = trimmed + suffix
	}
	return "", fmt.Errorf("%w: slug %q exhausted", domain.ErrConflict, base)
}

func requireActor(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return domain.ErrUnauthorized
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func normalizePaging(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// truncateRunes cuts s at n runes on a word boundary when possible.
func truncateRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}
