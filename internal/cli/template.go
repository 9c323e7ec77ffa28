package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgeforge/pkg/pipeline"
	"github.com/matzehuels/badgeforge/pkg/store"
)

// templateCommand creates the template management command.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates", "tpl"},
		Short:   "Manage saved and builtin badge templates",
	}

	cmd.AddCommand(c.templateListCommand())
	cmd.AddCommand(c.templateShowCommand())
	cmd.AddCommand(c.templateSaveCommand())
	cmd.AddCommand(c.templateDeleteCommand())
	cmd.AddCommand(c.templatePickCommand())

	return cmd
}

func (c *CLI) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := c.templateStore(ctx)
			defer s.Close()

			list, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No templates")
				return nil
			}
			for _, t := range list {
				printKeyValue(t.Name, templateSource(t)+"  "+StyleDim.Render(t.Description))
			}
			printNewline()
			printNextStep("Render one", "badgeforge render --template "+list[0].Name)
			return nil
		},
	}
}

func (c *CLI) templateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a template's badge document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := c.templateStore(ctx)
			defer s.Close()

			t, err := s.Get(ctx, args[0])
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, t.Document, "", "  "); err != nil {
				return fmt.Errorf("format template %s: %w", t.Name, err)
			}
			fmt.Println(out.String())
			return nil
		},
	}
}

func (c *CLI) templateSaveCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "save <name> <spec.json>",
		Short: "Save a badge document as a named template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			s := c.templateStore(ctx)
			defer s.Close()
			t := &store.Template{Name: args[0], Description: description, Document: data}
			if err := s.Put(ctx, t); err != nil {
				return err
			}
			printSuccess("Saved template %s", StyleHighlight.Render(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "short description")
	return cmd
}

func (c *CLI) templateDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := c.templateStore(ctx)
			defer s.Close()

			if err := s.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted template %s", args[0])
			return nil
		},
	}
}

func (c *CLI) templatePickCommand() *cobra.Command {
	opts := renderOpts{
		assets:   defaultAssetsDir,
		maxScale: pipeline.DefaultMaxScale,
		remote:   true,
		sysFonts: true,
	}

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a template interactively and render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := c.templateStore(ctx)
			list, err := s.List(ctx)
			s.Close()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No templates")
				return nil
			}

			final, err := tea.NewProgram(NewTemplateListModel(list), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("template picker: %w", err)
			}
			m, ok := final.(TemplateListModel)
			if !ok || m.Selected == nil {
				printWarning("No template selected")
				return nil
			}

			opts.template = m.Selected.Name
			return c.runRender(ctx, "", opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <name>.png)")
	cmd.Flags().StringVar(&opts.assets, "assets", opts.assets, "directory for relative image and font paths")
	return cmd
}

func templateSource(t store.Template) string {
	if t.Builtin {
		return StyleDim.Render("builtin")
	}
	return StyleSuccess.Render("saved")
}
