package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qbic/datamanager/internal/infrastructure/signposting"
)

type linkOutput struct {
	Reference  string            `yaml:"reference"`
	Rel        []string          `yaml:"rel,omitempty"`
	Rev        []string          `yaml:"rev,omitempty"`
	Anchor     string            `yaml:"anchor,omitempty"`
	Type       string            `yaml:"type,omitempty"`
	Title      string            `yaml:"title,omitempty"`
	Extensions map[string]string `yaml:"extensions,omitempty"`
}

func linksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Work with FAIR signposting Link headers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "parse <header>",
		Short:   "Parse a Link header value and print the links as YAML",
		Example: `  dmctl links parse '<https://doi.org/10.1234/x>; rel="cite-as"'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := signposting.Parse(args[0])
			if err != nil {
				return err
			}
			out := make([]linkOutput, 0, len(links))
			for _, l := range links {
				out = append(out, toLinkOutput(l))
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}

func toLinkOutput(l signposting.WebLink) linkOutput {
	o := linkOutput{Reference: l.Reference, Rel: l.Rel(), Rev: l.Rev()}
	o.Anchor, _ = l.Anchor()
	o.Type, _ = l.Type()
	o.Title, _ = l.Title()
	if ext := l.ExtensionAttributes(); len(ext) > 0 {
		o.Extensions = make(map[string]string, len(ext))
		for _, p := range ext {
			o.Extensions[p.Name] = p.Value
		}
	}
	return o
}
