package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/workopilot/copilot/pkg/backend"
	"github.com/workopilot/copilot/pkg/config"
	"github.com/workopilot/copilot/pkg/conversation"
	"github.com/workopilot/copilot/pkg/events"
	"github.com/workopilot/copilot/pkg/ui"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			router, err := events.NewEventRouter()
			if err != nil {
				return err
			}
			defer func() {
				_ = router.Close()
			}()

			pm := events.NewPublisherManager()
			pm.SubscribePublisher(events.TopicStream, router.Publisher)
			pm.SubscribePublisher(events.TopicSnapshot, router.Publisher)

			var client conversation.Client
			managerOptions := []conversation.ManagerOption{
				conversation.WithNotifier(events.NewSnapshotNotifier(pm)),
			}
			modelOptions := []ui.ModelOption{
				ui.WithTheme(settings.Theme, func(theme string) error {
					return config.SaveTheme(configV, theme)
				}),
			}

			if settings.Local {
				client = backend.NewLocal(pm)
			} else {
				apiClient, err := newAPIClient()
				if err != nil {
					return err
				}
				remote := backend.NewRemote(apiClient)
				client = remote
				managerOptions = append(managerOptions, conversation.WithIngester(remote))
				modelOptions = append(modelOptions, ui.WithExporter(apiClient))
			}

			manager := conversation.NewManager(client, managerOptions...)
			model := ui.NewModel(manager, modelOptions...)
			program := tea.NewProgram(model, tea.WithAltScreen())

			router.AddHandler("ui-stream", events.TopicStream, ui.StreamForwardFunc(program))
			router.AddHandler("ui-snapshot", events.TopicSnapshot, ui.SnapshotForwardFunc(program))

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				return router.Run(ctx)
			})
			eg.Go(func() error {
				defer cancel()
				<-router.Running()
				_, err := program.Run()
				return err
			})

			return eg.Wait()
		},
	}
}
