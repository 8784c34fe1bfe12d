package main

import (
	"context"
	"fmt"
	"os"

	"github.com/audionodes/native/pkg/cmd"
	"github.com/audionodes/native/pkg/log"
	"github.com/audionodes/native/pkg/messages"
	cli "github.com/urfave/cli/v3"
)

func NewTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the registered node types and their sockets",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.SetupWriter(os.Stderr, command.String("log-level"), command.Bool("log-json"))
			logger := log.WithModule("audionodes-types")

			discard := messages.NewChannel(messages.SinkFunc(func(context.Context, messages.ReturnMessage, bool) error {
				return nil
			}))

			reg, err := cmd.NewRegistry(logger, discard)
			if err != nil {
				return err
			}

			for _, id := range reg.Types() {
				factory, _ := reg.Factory(id)

				n, err := reg.Construct(ctx, id)
				if err != nil {
					return err
				}

				core := n.Core()

				fmt.Fprintf(command.Root().Writer, "%s\t%s\n", id, factory.Name())
				fmt.Fprintf(command.Root().Writer, "\tinputs: %v\n", core.InputSocketTypes())
				fmt.Fprintf(command.Root().Writer, "\toutputs: %v\n", core.OutputSocketTypes())
				fmt.Fprintf(command.Root().Writer, "\tproperties: %v\n", core.PropertyTypes())
				fmt.Fprintf(command.Root().Writer, "\tsink: %t\n", core.IsSink())

				for _, opt := range n.ConfigurationOptions() {
					fmt.Fprintf(command.Root().Writer, "\toption %s=%s %v\n", opt.Name, opt.CurrentValue, opt.AvailableValues)
				}
			}

			return nil
		},
	}
}
