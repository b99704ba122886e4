package draft

import "errors"

var (
	// ErrDraftNotFound возвращается, когда черновик разговора не найден
	ErrDraftNotFound = errors.New("draft.store: draft not found")

	// ErrEncode возвращается при ошибке сериализации черновика
	ErrEncode = errors.New("draft.store: failed to encode draft")

	// ErrDecode возвращается при ошибке десериализации черновика
	ErrDecode = errors.New("draft.store: failed to decode draft")

	// ErrStore возвращается при ошибках обращения к Redis
	ErrStore = errors.New("draft.store: storage error")
)
