package transport

import (
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/AccountStore/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrStoreDown),
		errors.Is(err, model.ErrRelational),
		errors.Is(err, model.ErrBatchFailed),
		errors.Is(err, model.ErrBlobsRemaining):
		return 500
	case errors.Is(err, model.ErrListingNotFound):
		return 404
	case errors.Is(err, model.ErrNotPrivileged):
		return 403
	case errors.Is(err, model.ErrWriteConflict):
		return 409
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrNoFile),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrBadPrice),
		errors.Is(err, model.ErrNotResolvable):
		return 400
	default:
		return 500
	}
}

// deleteCodeDefiner maps a failed delete sequence to a status code by the
// stage it stopped at.
func deleteCodeDefiner(res *model.DeleteResult) int {
	if res.Stage == model.DeleteStageCollect {
		switch res.Err {
		case model.ErrIncorrectID.Error():
			return 400
		case model.ErrListingNotFound.Error():
			return 404
		}
	}
	return 500
}

func closeFileFlow(res io.Closer) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
