package host

import "errors"

// ErrQuit is returned by Run when the user closes the host.
var ErrQuit = errors.New("host closed by user")
