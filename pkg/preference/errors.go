package preference

import "errors"

var (
	ErrNotFound           = errors.New("preference.not_found")
	ErrStorageUnavailable = errors.New("preference.storage_unavailable")
)
