// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/registry"
)

// NewRegistry creates a registry holding the built-in node types. Instances
// it builds send their return messages to messenger.
func NewRegistry(log *slog.Logger, messenger node.Messenger, opts ...registry.Option) (*registry.Registry, error) {
	reg := registry.NewRegistry(log, append(opts, registry.WithMessenger(messenger))...)

	if err := reg.RegisterDefaultNodes(); err != nil {
		return nil, err
	}

	return reg, nil
}
