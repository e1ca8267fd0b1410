package detector

import "errors"

var ErrHistoryDisabled = errors.New("analysis history is not configured")
