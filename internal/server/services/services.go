// Package services contains the minibi business logic: accounts and
// tokens, notes, files, sharing, the access gateway and exports. Every
// operation takes the acting account id explicitly.
package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minibi/internal/common"
)

// domainKinds are the errors services return unchanged. Anything else
// coming out of a repository is a storage failure.
var domainKinds = []error{
	common.ErrorNotFound,
	common.ErrorUnauthorized,
	common.ErrValidation,
	common.ErrAlreadyExists,
	common.ErrNotOwner,
	common.ErrInvalidName,
	common.ErrNameCollision,
	common.ErrAlreadyShared,
	common.ErrUserNotFound,
	common.ErrSelfShare,
	common.ErrParse,
	common.ErrUnknownColumn,
	common.ErrStorage,
	common.ErrInvalidToken,
	common.ErrTokenExpired,
	common.ErrTokenRevoked,
	common.ErrRefreshTokenExpired,
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorage, err)
}
