package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/royale/pos/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain sentinels. Errors that are
// already domain errors pass through.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if shared.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, shared.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w: %v", op, shared.ErrStorageUnavailable, err)
}

// escapeLike escapes LIKE wildcards so a search term matches literally
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
