package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/schemagraph/internal/events"
)

func newValidateCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the site, settings and custom type files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.close()

			settings, err := a.store.Load(cmd.Context())
			if err != nil {
				events.Emit("error", "settings.error", "invalid settings", map[string]interface{}{"error": err.Error()})
				return err
			}
			events.Emit("info", "settings.loaded", "settings are valid", nil)

			out := cmd.OutOrStdout()
			site := a.repo.Load().Site()
			fmt.Fprintf(out, "site: %s (%s)\n", site.Name, site.URL)
			fmt.Fprintf(out, "publisher: %s\n", publisherKind(settings.Schema.PublisherIsPerson()))
			fmt.Fprintf(out, "custom types: %d\n", len(a.customTypes()))
			for _, def := range a.customTypes() {
				state := "inactive"
				if def.Active {
					state = "active"
				}
				fmt.Fprintf(out, "  %s: %s (%s)\n", def.ID, def.Type, state)
			}
			return nil
		},
	}
}

func publisherKind(person bool) string {
	if person {
		return "person"
	}
	return "organization"
}
