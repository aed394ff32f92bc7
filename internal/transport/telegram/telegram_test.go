package telegram

import "github.com/ragcat-dev/ragcat/internal/transport"

var _ transport.Sink = (*Sink)(nil)
