//////////////////////////////////////////////////////////////////////////////
//
// Media errors
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

import "errors"

var (
	errAlreadyRunning = errors.New("loop already running")
	errEmptyPayload   = errors.New("empty payload")
	errNoBoundary     = errors.New("multipart stream without boundary")
)
